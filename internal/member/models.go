package member

import (
	"strconv"
	"strings"

	"github.com/alecgard/enclave/internal/listing"
	"github.com/alecgard/enclave/internal/transition"
)

// Approval statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Statuses is the approval workflow: pending may go anywhere, a decided
// user may only flip between approved and rejected.
var Statuses = transition.Explicit("member", map[string][]string{
	StatusPending:  {StatusPending, StatusApproved, StatusRejected},
	StatusApproved: {StatusApproved, StatusRejected},
	StatusRejected: {StatusApproved, StatusRejected},
}, StatusPending, StatusApproved, StatusRejected)

type MembershipRef struct {
	ID     int    `json:"id"`
	EchsNo string `json:"echs_no"`
}

// User is a resident account awaiting or holding approval.
type User struct {
	ID               int            `json:"id"`
	MembershipNumber *MembershipRef `json:"membership_number"`
	UserEmail        string         `json:"user_email"`
	Username         string         `json:"username"`
	FullName         string         `json:"full_name"`
	PlotNo           []string       `json:"plot_no"`
	Status           string         `json:"status"`
	IsActive         bool           `json:"is_active"`
	PhoneNumber      string         `json:"phone_number"`
	ProfileImage     *string        `json:"profile_image"`
	Created          string         `json:"created"`
	Modified         string         `json:"modified"`
}

var Columns = []string{"ID", "Name", "Email", "ECHS No", "Plots", "Phone", "Status", "Active"}

func (u User) Cells() []string {
	echs := ""
	if u.MembershipNumber != nil {
		echs = u.MembershipNumber.EchsNo
	}
	return []string{
		strconv.Itoa(u.ID),
		u.FullName,
		u.UserEmail,
		echs,
		strings.Join(u.PlotNo, ", "),
		u.PhoneNumber,
		u.Status,
		listing.YesNo(u.IsActive),
	}
}
