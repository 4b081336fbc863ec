package account

// Wire records for the account API. Each endpoint gets an explicit
// tagged request shape; nothing is sent as a freeform map.

const (
	typeEmailAccount  = "email_account"
	typeSocialAccount = "social_account"
)

type loginRequest struct {
	Data loginData `json:"data"`
}

type loginData struct {
	Type       string          `json:"type"`
	Attributes loginAttributes `json:"attributes"`
}

type loginAttributes struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	UniqueAuthID string `json:"unique_auth_id,omitempty"`
}

type registerRequest struct {
	Data registerData `json:"data"`
}

type registerData struct {
	Type       string             `json:"type"`
	Attributes registerAttributes `json:"attributes"`
}

// registerAttributes carries only the canonical profile fields. The
// confirmation field collected by the form must never appear here.
type registerAttributes struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullPhone string `json:"full_phone_number"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type forgotPasswordRequest struct {
	Data forgotPasswordData `json:"data"`
}

type forgotPasswordData struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Data resetPasswordData `json:"data"`
}

type resetPasswordData struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type profileUpdateRequest struct {
	Data profileUpdateData `json:"data"`
}

type profileUpdateData struct {
	Attributes profileUpdateAttributes `json:"attributes"`
}

type profileUpdateAttributes struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	FullPhone string `json:"full_phone_number,omitempty"`
	Role      string `json:"role,omitempty"`
}

type changePasswordRequest struct {
	Data changePasswordData `json:"data"`
}

type changePasswordData struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type phoneValidationRequest struct {
	Data phoneValidationData `json:"data"`
}

type phoneValidationData struct {
	NewPhoneNumber string `json:"new_phone_number"`
}
