package department

import "strconv"

type Department struct {
	ID             int     `json:"id"`
	DepartmentName string  `json:"department_name"`
	UserEmail      string  `json:"user_email"`
	UserFullName   string  `json:"user_full_name"`
	UserID         int     `json:"user_id,omitempty"`
	Age            string  `json:"age"`
	PhoneNumber    *string `json:"phone_number"`
	ProfileImage   *string `json:"profile_image"`
}

var Columns = []string{"ID", "Department", "Head", "Email", "Phone"}

func (d Department) Cells() []string {
	phone := ""
	if d.PhoneNumber != nil {
		phone = *d.PhoneNumber
	}
	return []string{strconv.Itoa(d.ID), d.DepartmentName, d.UserFullName, d.UserEmail, phone}
}

// UserOption is one entry of the department-users dropdown.
type UserOption struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// CreateInput is the new-department form. All fields are required.
type CreateInput struct {
	DepartmentName string `json:"department_name"`
	UserID         int    `json:"user_id"`
	Password       string `json:"password"`
}

// UpdateInput is the edit form. Password is only needed when UserID changes.
type UpdateInput struct {
	DepartmentName string
	UserID         int
	Password       string
}

type updatePayload struct {
	DepartmentName string `json:"department_name"`
	UserID         int    `json:"user_id"`
	Password       string `json:"password,omitempty"`
}
