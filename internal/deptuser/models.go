package deptuser

import "strconv"

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// User is a department staff account.
type User struct {
	ID             int     `json:"id"`
	Email          string  `json:"email"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	FullName       string  `json:"full_name"`
	DepartmentName *string `json:"department_name"`
	Gender         string  `json:"gender"`
	Dob            string  `json:"dob"`
	PhoneNumber    string  `json:"phone_number"`
	Cnic           string  `json:"cnic"`
	Age            string  `json:"age"`
}

var Columns = []string{"ID", "Name", "Email", "Department", "Gender", "Age"}

func (u User) Cells() []string {
	dept := ""
	if u.DepartmentName != nil {
		dept = *u.DepartmentName
	}
	return []string{strconv.Itoa(u.ID), u.FullName, u.Email, dept, u.Gender, u.Age}
}

// Input is the create/edit form. Optional fields are omitted when blank.
type Input struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Gender      string `json:"gender"`
	Dob         string `json:"dob,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Cnic        string `json:"cnic,omitempty"`
}

func InputFrom(u User) Input {
	gender := u.Gender
	if gender == "" {
		gender = GenderMale
	}
	return Input{
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Gender:      gender,
		Dob:         u.Dob,
		PhoneNumber: u.PhoneNumber,
		Cnic:        u.Cnic,
	}
}
