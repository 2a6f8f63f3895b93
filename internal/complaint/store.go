package complaint

import (
	"context"
	"net/http"

	"github.com/alecgard/enclave/internal/apiclient"
)

const basePath = "/complaints/"

type Store struct {
	client *apiclient.Client
}

func NewStore(client *apiclient.Client) *Store {
	return &Store{client: client}
}

// List fetches one page, filtered by search, priority and status.
func (s *Store) List(ctx context.Context, q apiclient.Query) (*apiclient.Page[Complaint], error) {
	return apiclient.List[Complaint](ctx, s.client, basePath, q)
}

func (s *Store) UpdateStatus(ctx context.Context, id int, u StatusUpdate) (*Complaint, error) {
	var out Complaint
	if err := s.client.Do(ctx, http.MethodPatch, apiclient.ItemPath(basePath, id), nil, u, &out, "status", "closed_reason"); err != nil {
		return nil, err
	}
	return &out, nil
}
