package plot

import (
	"strconv"
	"strings"
)

const (
	TypeResidential = "Residential"
	TypeCommercial  = "Commercial"

	StatusOnlyPossession    = "Only Possession"
	StatusUnderConstruction = "UnderConstruction"
	StatusCompleted         = "Completed"
)

var (
	Types    = []string{TypeResidential, TypeCommercial}
	Statuses = []string{StatusOnlyPossession, StatusUnderConstruction, StatusCompleted}
)

// Membership is a membership number as embedded in a plot and as offered
// by the dropdown endpoint.
type Membership struct {
	ID       int    `json:"id"`
	EchsNo   string `json:"echs_no"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

type Plot struct {
	ID                    int          `json:"id"`
	PlotNo                string       `json:"plot_no"`
	PossessionDate        string       `json:"possession_date"`
	PlotType              string       `json:"plot_type"`
	PlotStatus            string       `json:"plot_status"`
	MembershipNumbers     []Membership `json:"membership_numbers"`
	TotalActiveMembership int          `json:"total_active_membership"`
	CoveredArea           string       `json:"covered_area"`
	StreetNo              string       `json:"street_no"`
	Block                 string       `json:"block"`
	Sector                string       `json:"sector"`
	HouseNo               string       `json:"house_no"`
	PlazaNo               string       `json:"plaza_no"`
	Created               string       `json:"created"`
	Modified              string       `json:"modified"`
}

var Columns = []string{"ID", "Plot No", "Type", "Status", "Members", "Block", "Sector", "Street", "House/Plaza"}

func (p Plot) Cells() []string {
	echs := make([]string, 0, len(p.MembershipNumbers))
	for _, m := range p.MembershipNumbers {
		echs = append(echs, m.EchsNo)
	}
	unit := p.HouseNo
	if p.PlotType == TypeCommercial {
		unit = p.PlazaNo
	}
	return []string{
		strconv.Itoa(p.ID),
		p.PlotNo,
		p.PlotType,
		p.PlotStatus,
		strings.Join(echs, ", "),
		p.Block,
		p.Sector,
		p.StreetNo,
		unit,
	}
}

// Input is the create/edit form.
type Input struct {
	PlotNo              string `json:"plot_no"`
	PossessionDate      string `json:"possession_date"`
	PlotType            string `json:"plot_type"`
	PlotStatus          string `json:"plot_status"`
	MembershipNumberIDs []int  `json:"membership_number_ids"`
	CoveredArea         string `json:"covered_area"`
	StreetNo            string `json:"street_no"`
	Block               string `json:"block"`
	Sector              string `json:"sector"`
	HouseNo             string `json:"house_no"`
	PlazaNo             string `json:"plaza_no"`
}

// InputFrom prefills the edit form from an existing plot.
func InputFrom(p Plot) Input {
	ids := make([]int, 0, len(p.MembershipNumbers))
	for _, m := range p.MembershipNumbers {
		ids = append(ids, m.ID)
	}
	return Input{
		PlotNo:              p.PlotNo,
		PossessionDate:      p.PossessionDate,
		PlotType:            p.PlotType,
		PlotStatus:          p.PlotStatus,
		MembershipNumberIDs: ids,
		CoveredArea:         p.CoveredArea,
		StreetNo:            p.StreetNo,
		Block:               p.Block,
		Sector:              p.Sector,
		HouseNo:             p.HouseNo,
		PlazaNo:             p.PlazaNo,
	}
}

// Payload is the request body. Blank optional fields are left out,
// membership_number_ids is always present, and only the unit number that
// matches the plot type is sent.
func (in Input) Payload() map[string]any {
	ids := in.MembershipNumberIDs
	if ids == nil {
		ids = []int{}
	}
	p := map[string]any{
		"plot_no":               in.PlotNo,
		"plot_type":             in.PlotType,
		"plot_status":           in.PlotStatus,
		"membership_number_ids": ids,
	}
	optional := map[string]string{
		"possession_date": in.PossessionDate,
		"covered_area":    in.CoveredArea,
		"street_no":       in.StreetNo,
		"block":           in.Block,
		"sector":          in.Sector,
	}
	switch in.PlotType {
	case TypeResidential:
		optional["house_no"] = in.HouseNo
	case TypeCommercial:
		optional["plaza_no"] = in.PlazaNo
	}
	for k, v := range optional {
		if strings.TrimSpace(v) != "" {
			p[k] = v
		}
	}
	return p
}

// FilterMemberships narrows the dropdown by name or ECHS number,
// case-insensitively. An empty term returns all.
func FilterMemberships(all []Membership, term string) []Membership {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return all
	}
	var out []Membership
	for _, m := range all {
		if strings.Contains(strings.ToLower(m.Name), term) || strings.Contains(strings.ToLower(m.EchsNo), term) {
			out = append(out, m)
		}
	}
	return out
}
