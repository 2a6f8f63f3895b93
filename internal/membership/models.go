package membership

import (
	"strconv"

	"github.com/alecgard/enclave/internal/listing"
)

// Membership is an ECHS membership number.
type Membership struct {
	ID         int    `json:"id"`
	EchsNo     string `json:"echs_no"`
	Name       string `json:"name"`
	PlotsCount int    `json:"plots_count"`
	IsActive   bool   `json:"is_active"`
	Created    string `json:"created"`
	Modified   string `json:"modified"`
}

var Columns = []string{"ID", "ECHS No", "Name", "Plots", "Active"}

func (m Membership) Cells() []string {
	return []string{strconv.Itoa(m.ID), m.EchsNo, m.Name, strconv.Itoa(m.PlotsCount), listing.YesNo(m.IsActive)}
}

// Input is the create/edit form.
type Input struct {
	EchsNo string `json:"echs_no"`
	Name   string `json:"name"`
}

func InputFrom(m Membership) Input {
	return Input{EchsNo: m.EchsNo, Name: m.Name}
}

func (m Membership) label() string {
	return m.Name + " (ECHS: " + m.EchsNo + ")"
}
