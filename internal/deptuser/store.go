package deptuser

import (
	"context"
	"fmt"
	"net/http"

	"github.com/alecgard/enclave/internal/apiclient"
)

const (
	basePath   = "/department-users/"
	errorField = "email"
)

type Store struct {
	client *apiclient.Client
}

func NewStore(client *apiclient.Client) *Store {
	return &Store{client: client}
}

// List fetches one page, filtered by search and gender.
func (s *Store) List(ctx context.Context, q apiclient.Query) (*apiclient.Page[User], error) {
	return apiclient.List[User](ctx, s.client, basePath, q)
}

func (s *Store) Get(ctx context.Context, id int) (*User, error) {
	u, err := apiclient.Get[User](ctx, s.client, apiclient.ItemPath(basePath, id), nil)
	if err != nil {
		return nil, fmt.Errorf("getting department user %d: %w", id, err)
	}
	return u, nil
}

func (s *Store) Create(ctx context.Context, in Input) (*User, error) {
	var out User
	if err := s.client.Do(ctx, http.MethodPost, basePath, nil, in, &out, errorField); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) Update(ctx context.Context, id int, in Input) (*User, error) {
	var out User
	if err := s.client.Do(ctx, http.MethodPatch, apiclient.ItemPath(basePath, id), nil, in, &out, errorField); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) Delete(ctx context.Context, id int) error {
	return s.client.Do(ctx, http.MethodDelete, apiclient.ItemPath(basePath, id), nil, nil, nil)
}
