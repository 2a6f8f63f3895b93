package member

import (
	"context"
	"net/http"

	"github.com/alecgard/enclave/internal/apiclient"
)

const basePath = "/member-users/"

// Store is the member-users resource client.
type Store struct {
	client *apiclient.Client
}

func NewStore(client *apiclient.Client) *Store {
	return &Store{client: client}
}

// List fetches one page. The only filter is status.
func (s *Store) List(ctx context.Context, q apiclient.Query) (*apiclient.Page[User], error) {
	return apiclient.List[User](ctx, s.client, basePath, q)
}

func (s *Store) SetActive(ctx context.Context, id int, active bool) error {
	return s.client.Do(ctx, http.MethodPatch, apiclient.ItemPath(basePath, id), nil,
		map[string]any{"is_active": active}, nil)
}

func (s *Store) SetStatus(ctx context.Context, id int, status string) error {
	return s.client.Do(ctx, http.MethodPatch, apiclient.ItemPath(basePath, id), nil,
		map[string]any{"status": status}, nil, "status")
}
