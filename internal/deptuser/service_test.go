package deptuser

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/alecgard/enclave/internal/apiclient"
	"github.com/alecgard/enclave/internal/confirm"
	"github.com/alecgard/enclave/internal/listing"
	"github.com/alecgard/enclave/internal/transition"
)

func valid() Input {
	return Input{Email: "nadia@example.pk", FirstName: "Nadia", LastName: "Hussain", Gender: GenderFemale}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Input)
		want   string
	}{
		{"valid", func(in *Input) {}, ""},
		{"formatted phone", func(in *Input) { in.PhoneNumber = "+92 (300) 123-4567" }, ""},
		{"formatted cnic", func(in *Input) { in.Cnic = "35202-1234567-1" }, ""},
		{"letters in cnic", func(in *Input) { in.Cnic = "35202-ABC" }, MsgCNICDigits},
		{"letters in phone", func(in *Input) { in.PhoneNumber = "0300-CALLME" }, MsgPhoneDigits},
		{"missing last name", func(in *Input) { in.LastName = "" }, transition.MsgRequiredFields},
		{"bad email", func(in *Input) { in.Email = "nadia" }, "Please enter a valid email address."},
		{"bad gender", func(in *Input) { in.Gender = "other" }, "Please select a valid gender."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.modify(&in)
			if got := apiclient.Message(Validate(in)); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

type fake struct {
	writes []string
	bodies []map[string]any
}

func setup(t *testing.T, answer bool) (*Service, *fake) {
	t.Helper()
	f := &fake{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			f.writes = append(f.writes, r.Method+" "+r.URL.Path)
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.bodies = append(f.bodies, body)
			if r.Method == http.MethodDelete {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			_, _ = w.Write([]byte(`{"id":11}`))
			return
		}
		if r.URL.Path == "/department-users/11/" {
			_, _ = w.Write([]byte(`{"id":11,"email":"nadia@example.pk","first_name":"Nadia","last_name":"Hussain","gender":"female","cnic":"3520212345671"}`))
			return
		}
		_, _ = w.Write([]byte(`{"count":1,"results":[{"id":11,"email":"nadia@example.pk","full_name":"Nadia Hussain","gender":"female"}]}`))
	}))
	t.Cleanup(srv.Close)
	client := apiclient.New(srv.URL, 5*time.Second, nil, apiclient.WithHTTPClient(srv.Client()))
	svc := NewService(NewStore(client), confirm.NewGate(confirm.Static(answer), nil), listing.Settings{PageSize: 10}, nil, nil)
	if err := svc.List().Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	return svc, f
}

func TestCreateOmitsBlankOptionals(t *testing.T) {
	svc, f := setup(t, true)
	in := valid()
	in.PhoneNumber = "03001234567"
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("Create: %v", err)
	}
	want := map[string]any{
		"email": "nadia@example.pk", "first_name": "Nadia", "last_name": "Hussain",
		"gender": "female", "phone_number": "03001234567",
	}
	if !reflect.DeepEqual(f.bodies[0], want) {
		t.Errorf("body = %v", f.bodies[0])
	}
}

func TestUpdateUnchangedSendsNothing(t *testing.T) {
	svc, f := setup(t, true)
	d, err := svc.Edit(context.Background(), 11)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Save(context.Background(), 11, d); !errors.Is(err, ErrNoChanges) {
		t.Fatalf("expected ErrNoChanges, got %v", err)
	}
	if len(f.writes) != 0 {
		t.Errorf("writes = %v", f.writes)
	}
}

func TestUpdateChanged(t *testing.T) {
	svc, f := setup(t, true)
	in := valid()
	in.Cnic = "3520212345671"
	in.LastName = "Hussain-Shah"
	if _, err := svc.Update(context.Background(), 11, in); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(f.writes) != 1 || f.writes[0] != "PATCH /department-users/11/" {
		t.Errorf("writes = %v", f.writes)
	}
}

func TestDelete(t *testing.T) {
	svc, f := setup(t, false)
	if err := svc.Delete(context.Background(), 11); !errors.Is(err, confirm.ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
	if len(f.writes) != 0 {
		t.Error("declined delete sent a request")
	}

	svc, f = setup(t, true)
	if err := svc.Delete(context.Background(), 11); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(f.writes) != 1 || f.writes[0] != "DELETE /department-users/11/" {
		t.Errorf("writes = %v", f.writes)
	}
}
