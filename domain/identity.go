package domain

// Role enumerates the account roles offered during onboarding.
type Role string

const (
	RoleFreelancer Role = "freelancer"
	RoleClient     Role = "client"
	RoleSponsor    Role = "sponsor"
)

// ValidRole reports whether the value is one of the selectable roles.
func ValidRole(r string) bool {
	switch Role(r) {
	case RoleFreelancer, RoleClient, RoleSponsor:
		return true
	}
	return false
}

// Identity is the authenticated user's profile record as issued by the
// account API. It is replaced wholesale on every successful auth or
// profile operation; the client never mutates individual fields.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	FullPhone   string `json:"full_phone_number,omitempty"`
	Role        Role   `json:"role"`
	IsActivated bool   `json:"is_activated"`
}

// FullName joins the name fields for display.
func (i *Identity) FullName() string {
	if i == nil {
		return ""
	}
	switch {
	case i.FirstName == "":
		return i.LastName
	case i.LastName == "":
		return i.FirstName
	}
	return i.FirstName + " " + i.LastName
}

// CountryCode is an auxiliary lookup record used by the registration
// form's dial-code selector.
type CountryCode struct {
	Name string `json:"name"`
	Code string `json:"country_code"`
	Flag string `json:"flag,omitempty"`
}
