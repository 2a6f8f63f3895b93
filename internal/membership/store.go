package membership

import (
	"context"
	"net/http"

	"github.com/alecgard/enclave/internal/apiclient"
)

const (
	basePath   = "/membership-numbers/"
	errorField = "echs_no"
)

type Store struct {
	client *apiclient.Client
}

func NewStore(client *apiclient.Client) *Store {
	return &Store{client: client}
}

func (s *Store) List(ctx context.Context, q apiclient.Query) (*apiclient.Page[Membership], error) {
	return apiclient.List[Membership](ctx, s.client, basePath, q)
}

func (s *Store) Create(ctx context.Context, in Input) (*Membership, error) {
	var out Membership
	if err := s.client.Do(ctx, http.MethodPost, basePath, nil, in, &out, errorField); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) Update(ctx context.Context, id int, in Input) (*Membership, error) {
	var out Membership
	if err := s.client.Do(ctx, http.MethodPatch, apiclient.ItemPath(basePath, id), nil, in, &out, errorField); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) SetActive(ctx context.Context, id int, active bool) error {
	return s.client.Do(ctx, http.MethodPatch, apiclient.ItemPath(basePath, id), nil,
		map[string]any{"is_active": active}, nil)
}

func (s *Store) Delete(ctx context.Context, id int) error {
	return s.client.Do(ctx, http.MethodDelete, apiclient.ItemPath(basePath, id), nil, nil, nil)
}
