package department

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/alecgard/enclave/internal/apiclient"
	"github.com/alecgard/enclave/internal/listing"
	"github.com/alecgard/enclave/internal/transition"
)

func TestValidateUpdate(t *testing.T) {
	tests := []struct {
		name string
		in   UpdateInput
		want string
	}{
		{"reassign without password", UpdateInput{DepartmentName: "Security", UserID: 9}, MsgPasswordOnReassign},
		{"reassign with short password", UpdateInput{DepartmentName: "Security", UserID: 9, Password: "short"}, transition.MsgPasswordLength},
		{"reassign with password", UpdateInput{DepartmentName: "Security", UserID: 9, Password: "longenough"}, ""},
		{"same user no password", UpdateInput{DepartmentName: "Security", UserID: 7}, ""},
		{"same user short password", UpdateInput{DepartmentName: "Security", UserID: 7, Password: "abc"}, transition.MsgPasswordLength},
		{"missing name", UpdateInput{UserID: 7}, transition.MsgRequiredFields},
		{"missing user", UpdateInput{DepartmentName: "Security"}, transition.MsgRequiredFields},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpdate(3, 7, tt.in)
			if got := apiclient.Message(err); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
	if err := ValidateUpdate(0, 7, UpdateInput{DepartmentName: "x", UserID: 7}); apiclient.Message(err) != MsgIDMissing {
		t.Errorf("missing id: %v", err)
	}
}

func TestValidateCreate(t *testing.T) {
	tests := []struct {
		in   CreateInput
		want string
	}{
		{CreateInput{DepartmentName: "Water", UserID: 4, Password: "secret123"}, ""},
		{CreateInput{DepartmentName: "Water", UserID: 4}, transition.MsgRequiredFields},
		{CreateInput{DepartmentName: "Water", Password: "secret123"}, transition.MsgRequiredFields},
		{CreateInput{DepartmentName: "Water", UserID: 4, Password: "1234567"}, transition.MsgPasswordLength},
	}
	for _, tt := range tests {
		if got := apiclient.Message(ValidateCreate(tt.in)); got != tt.want {
			t.Errorf("ValidateCreate(%+v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

type fake struct {
	patches  []map[string]any
	posts    []map[string]any
	dropdown string
}

func setup(t *testing.T) (*Service, *fake) {
	t.Helper()
	f := &fake{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/departments/3/" && r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`{"id":3,"department_name":"Security","user_id":7}`))
		case r.URL.Path == "/departments/3/" && r.Method == http.MethodPatch:
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.patches = append(f.patches, body)
			_, _ = w.Write([]byte(`{"id":3}`))
		case r.URL.Path == "/departments/" && r.Method == http.MethodPost:
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.posts = append(f.posts, body)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":4,"department_name":"Water"}`))
		case r.URL.Path == "/departments/":
			_, _ = w.Write([]byte(`{"count":1,"results":[{"id":3,"department_name":"Security","user_full_name":"Imran","user_email":"i@x.pk"}]}`))
		case r.URL.Path == "/department-users/dropdown/":
			f.dropdown = r.URL.RawQuery
			_, _ = w.Write([]byte(`[{"id":7,"email":"i@x.pk","full_name":"Imran"},{"id":9,"email":"n@x.pk","full_name":"Nadia"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	client := apiclient.New(srv.URL, 5*time.Second, nil, apiclient.WithHTTPClient(srv.Client()))
	return NewService(NewStore(client), listing.Settings{PageSize: 10}, nil, nil), f
}

func TestUpdateKeepsUserOmitsPassword(t *testing.T) {
	svc, f := setup(t)
	if _, err := svc.Update(context.Background(), 3, UpdateInput{DepartmentName: "Security & Patrol", UserID: 7, Password: "ignored123"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	want := map[string]any{"department_name": "Security & Patrol", "user_id": float64(7)}
	if len(f.patches) != 1 || !reflect.DeepEqual(f.patches[0], want) {
		t.Errorf("patches = %v", f.patches)
	}
}

func TestUpdateReassignSendsPassword(t *testing.T) {
	svc, f := setup(t)
	if _, err := svc.Update(context.Background(), 3, UpdateInput{DepartmentName: "Security", UserID: 9, Password: "newpass99"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if f.patches[0]["password"] != "newpass99" || f.patches[0]["user_id"] != float64(9) {
		t.Errorf("patch = %v", f.patches[0])
	}
}

func TestUpdateReassignWithoutPasswordRejected(t *testing.T) {
	svc, f := setup(t)
	_, err := svc.Update(context.Background(), 3, UpdateInput{DepartmentName: "Security", UserID: 9})
	if apiclient.Message(err) != MsgPasswordOnReassign {
		t.Fatalf("got %v", err)
	}
	if len(f.patches) != 0 {
		t.Error("no request expected")
	}
}

func TestCreate(t *testing.T) {
	svc, f := setup(t)
	d, err := svc.Create(context.Background(), CreateInput{DepartmentName: "Water", UserID: 9, Password: "secret123"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.ID != 4 || f.posts[0]["password"] != "secret123" {
		t.Errorf("created %+v, posted %v", d, f.posts)
	}
}

func TestEditLoadsDropdownForAssignedUser(t *testing.T) {
	svc, f := setup(t)
	d, users, err := svc.Edit(context.Background(), 3)
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if d.UserID != 7 || len(users) != 2 {
		t.Errorf("got %+v, %v", d, users)
	}
	if f.dropdown != "user_id=7" {
		t.Errorf("dropdown query = %q", f.dropdown)
	}
	if _, err := svc.Users(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	if f.dropdown != "" {
		t.Errorf("dropdown without user should send no query, got %q", f.dropdown)
	}
}
