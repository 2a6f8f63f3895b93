package plot

import (
	"context"
	"fmt"
	"net/http"

	"github.com/alecgard/enclave/internal/apiclient"
)

const (
	basePath     = "/plots/"
	dropdownPath = "/membership-numbers/dropdown/"
)

// errorField is the payload key whose backend error is shown first.
const errorField = "plot_no"

type Store struct {
	client *apiclient.Client
}

func NewStore(client *apiclient.Client) *Store {
	return &Store{client: client}
}

// List fetches one page, filtered by plot_status, plot_type and search.
func (s *Store) List(ctx context.Context, q apiclient.Query) (*apiclient.Page[Plot], error) {
	return apiclient.List[Plot](ctx, s.client, basePath, q)
}

func (s *Store) Get(ctx context.Context, id int) (*Plot, error) {
	p, err := apiclient.Get[Plot](ctx, s.client, apiclient.ItemPath(basePath, id), nil)
	if err != nil {
		return nil, fmt.Errorf("getting plot %d: %w", id, err)
	}
	return p, nil
}

func (s *Store) Create(ctx context.Context, in Input) (*Plot, error) {
	var out Plot
	if err := s.client.Do(ctx, http.MethodPost, basePath, nil, in.Payload(), &out, errorField); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) Update(ctx context.Context, id int, in Input) (*Plot, error) {
	var out Plot
	if err := s.client.Do(ctx, http.MethodPatch, apiclient.ItemPath(basePath, id), nil, in.Payload(), &out, errorField); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) Delete(ctx context.Context, id int) error {
	return s.client.Do(ctx, http.MethodDelete, apiclient.ItemPath(basePath, id), nil, nil, nil)
}

// Memberships fetches the membership number dropdown.
func (s *Store) Memberships(ctx context.Context) ([]Membership, error) {
	return apiclient.Lookup[Membership](ctx, s.client, dropdownPath, nil)
}
