package department

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/alecgard/enclave/internal/apiclient"
)

const (
	basePath     = "/departments/"
	dropdownPath = "/department-users/dropdown/"
	errorField   = "department_name"
)

type Store struct {
	client *apiclient.Client
}

func NewStore(client *apiclient.Client) *Store {
	return &Store{client: client}
}

// List fetches one page, filtered by search and is_active.
func (s *Store) List(ctx context.Context, q apiclient.Query) (*apiclient.Page[Department], error) {
	return apiclient.List[Department](ctx, s.client, basePath, q)
}

func (s *Store) Get(ctx context.Context, id int) (*Department, error) {
	d, err := apiclient.Get[Department](ctx, s.client, apiclient.ItemPath(basePath, id), nil)
	if err != nil {
		return nil, fmt.Errorf("getting department %d: %w", id, err)
	}
	return d, nil
}

func (s *Store) Create(ctx context.Context, in CreateInput) (*Department, error) {
	var out Department
	if err := s.client.Do(ctx, http.MethodPost, basePath, nil, in, &out, errorField); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) Update(ctx context.Context, id int, p updatePayload) (*Department, error) {
	var out Department
	if err := s.client.Do(ctx, http.MethodPatch, apiclient.ItemPath(basePath, id), nil, p, &out, errorField); err != nil {
		return nil, err
	}
	return &out, nil
}

// Users fetches assignable department users. A non-zero currentUserID asks
// the backend to include that user even if already assigned.
func (s *Store) Users(ctx context.Context, currentUserID int) ([]UserOption, error) {
	var q url.Values
	if currentUserID > 0 {
		q = url.Values{"user_id": {strconv.Itoa(currentUserID)}}
	}
	return apiclient.Lookup[UserOption](ctx, s.client, dropdownPath, q)
}
