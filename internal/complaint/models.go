package complaint

import (
	"strconv"

	"github.com/alecgard/enclave/internal/transition"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Statuses only move forward.
var Statuses = transition.Ordered("complaint", StatusPending, StatusInProgress, StatusResolved, StatusClosed)

type Complaint struct {
	ID               int    `json:"id"`
	Subject          string `json:"subject"`
	Priority         string `json:"priority"`
	PriorityDisplay  string `json:"priority_display"`
	Status           string `json:"status"`
	StatusDisplay    string `json:"status_display"`
	Created          string `json:"created"`
	MemberEmail      string `json:"member_email"`
	MemberName       string `json:"member_name"`
	MembershipNumber string `json:"membership_number"`
	DepartmentName   string `json:"department_name"`
}

var Columns = []string{"ID", "Subject", "Priority", "Status", "Member", "ECHS No", "Department", "Created"}

func (c Complaint) Cells() []string {
	return []string{
		strconv.Itoa(c.ID),
		c.Subject,
		display(c.PriorityDisplay, c.Priority),
		display(c.StatusDisplay, c.Status),
		c.MemberName,
		c.MembershipNumber,
		c.DepartmentName,
		c.Created,
	}
}

func display(label, value string) string {
	if label != "" {
		return label
	}
	return value
}

// StatusUpdate is the PATCH body. closed_reason is only sent when closing.
type StatusUpdate struct {
	Status       string `json:"status"`
	ClosedReason string `json:"closed_reason,omitempty"`
}
