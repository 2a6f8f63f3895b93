package pet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alecgard/enclave/internal/apiclient"
	"github.com/alecgard/enclave/internal/listing"
)

func TestSearchResetsToFirstPage(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"count":1,"results":[{"id":3,"name":"Moti","pet_type":"dog","pet_type_display":"Dog","age":2,"member_name":"Ali","membership_number":"E-1"}]}`))
	}))
	defer srv.Close()

	client := apiclient.New(srv.URL, 5*time.Second, nil, apiclient.WithHTTPClient(srv.Client()))
	svc := NewService(NewStore(client), listing.Settings{PageSize: 10}, nil)

	if err := svc.List().SetSearch(context.Background(), "  moti "); err != nil {
		t.Fatalf("SetSearch: %v", err)
	}
	if query != "page=1&page_size=10&search=moti" {
		t.Errorf("query = %q", query)
	}
	rows := svc.List().Snapshot().Rows
	if len(rows) != 1 || rows[0][2] != "Dog" || rows[0][5] != "2" {
		t.Errorf("rows = %v", rows)
	}
}
