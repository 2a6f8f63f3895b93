// Package pet is the read-only pet registry screen.
package pet

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/alecgard/enclave/internal/apiclient"
	"github.com/alecgard/enclave/internal/listing"
)

type Pet struct {
	ID               int     `json:"id"`
	Member           int     `json:"member"`
	MemberEmail      string  `json:"member_email"`
	MemberName       string  `json:"member_name"`
	MembershipNumber string  `json:"membership_number"`
	PetType          string  `json:"pet_type"`
	PetTypeDisplay   string  `json:"pet_type_display"`
	Name             string  `json:"name"`
	Age              int     `json:"age"`
	Breed            string  `json:"breed"`
	Color            string  `json:"color"`
	PetImage         *string `json:"pet_image"`
	Description      string  `json:"description"`
	Created          string  `json:"created"`
	Modified         string  `json:"modified"`
}

var Columns = []string{"ID", "Name", "Type", "Breed", "Color", "Age", "Owner", "ECHS No"}

func (p Pet) Cells() []string {
	kind := p.PetTypeDisplay
	if kind == "" {
		kind = p.PetType
	}
	return []string{strconv.Itoa(p.ID), p.Name, kind, p.Breed, p.Color, strconv.Itoa(p.Age), p.MemberName, p.MembershipNumber}
}

const basePath = "/pets/"

type Store struct {
	client *apiclient.Client
}

func NewStore(client *apiclient.Client) *Store {
	return &Store{client: client}
}

func (s *Store) List(ctx context.Context, q apiclient.Query) (*apiclient.Page[Pet], error) {
	return apiclient.List[Pet](ctx, s.client, basePath, q)
}

// Service drives the Manage Pets screen: search and paging only.
type Service struct {
	list *listing.Controller[Pet]
}

func NewService(store *Store, settings listing.Settings, logger *slog.Logger) *Service {
	cfg := settings.Config("pets", "Manage Pets", true, Columns)
	return &Service{list: listing.New(cfg, store.List, logger)}
}

func (s *Service) List() *listing.Controller[Pet] { return s.list }
