package session

import "strings"

// Durable keys. All three are written and cleared together.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// Profile is the signed-in administrator as returned by the login endpoint.
type Profile struct {
	ID           int     `json:"id"`
	Email        string  `json:"email"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Role         string  `json:"role"`
	RoleName     string  `json:"role_name"`
	PhoneNumber  string  `json:"phone_number"`
	ProfileImage *string `json:"profile_image"`
}

// DisplayName is "First Last", or the email when both are blank.
func (p Profile) DisplayName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.Email
	}
	return name
}

// Session is the in-memory authenticated state.
type Session struct {
	Profile      Profile `json:"user"`
	AccessToken  string  `json:"-"`
	RefreshToken string  `json:"-"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body of POST /admin-login/.
type LoginResponse struct {
	ID           int     `json:"id"`
	Email        string  `json:"email"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Role         string  `json:"role"`
	RoleName     string  `json:"role_name"`
	IsActive     bool    `json:"is_active"`
	PhoneNumber  string  `json:"phone_number"`
	ProfileImage *string `json:"profile_image"`
	Access       string  `json:"access"`
	Refresh      string  `json:"refresh"`
}

func (r LoginResponse) Profile() Profile {
	return Profile{
		ID:           r.ID,
		Email:        r.Email,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Role:         r.Role,
		RoleName:     r.RoleName,
		PhoneNumber:  r.PhoneNumber,
		ProfileImage: r.ProfileImage,
	}
}
