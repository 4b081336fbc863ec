package account

import (
	"context"

	"go.uber.org/zap"

	"github.com/workhive/desk/api/client"
	"github.com/workhive/desk/domain"
)

// Endpoint paths on the account backend.
const (
	pathLogin             = "/login/login"
	pathAccounts          = "/account/accounts"
	pathEmailConfirmation = "/account/accounts/email_confirmation"
	pathCountryCodes      = "/account/accounts/country_code_and_flag"
	pathForgotPassword    = "/forgot_password/forgot_password"
	pathResetPassword     = "/forgot_password/reset_password"
	pathProfile           = "/profile/profile"
	pathProfilePassword   = "/profile/password"
	pathPhoneValidation   = "/profile/change_phone_validation"
)

// AuthResult is the outcome of a successful auth operation.
type AuthResult struct {
	Identity *domain.Identity
	Token    string
}

// RegisterInput holds the canonical profile fields for account
// creation. There is deliberately no confirmation field here; equality
// checking is the form's job and the value stops at the view layer.
type RegisterInput struct {
	FirstName string
	LastName  string
	FullPhone string
	Email     string
	Password  string
}

// SocialIdentity is a provider-normalized assertion: whichever provider
// produced it, the service only needs the email and the provider-issued
// subject id.
type SocialIdentity struct {
	Provider  string
	Email     string
	SubjectID string
}

// ProfilePatch carries the fields UpdateProfile may change. Zero values
// are omitted from the wire payload.
type ProfilePatch struct {
	FirstName string
	LastName  string
	FullPhone string
	Role      domain.Role
}

// Service is a stateless set of typed operations over the API client.
// It performs no validation beyond what the server enforces; it is a
// pure transport adapter.
type Service struct {
	api    *client.Client
	logger *zap.Logger
}

func New(api *client.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, logger: logger}
}

// Login exchanges email credentials for an identity and token.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	req := loginRequest{Data: loginData{
		Type:       typeEmailAccount,
		Attributes: loginAttributes{Email: email, Password: password},
	}}
	return s.authenticate(ctx, pathLogin, req)
}

// Register creates the account and signs the user in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	req := registerRequest{Data: registerData{
		Type: typeEmailAccount,
		Attributes: registerAttributes{
			FirstName: in.FirstName,
			LastName:  in.LastName,
			FullPhone: in.FullPhone,
			Email:     in.Email,
			Password:  in.Password,
		},
	}}
	return s.authenticate(ctx, pathAccounts, req)
}

// SocialAuth signs in with a provider assertion. The backend expects a
// provider-tagged placeholder password alongside the subject id.
func (s *Service) SocialAuth(ctx context.Context, social SocialIdentity) (*AuthResult, error) {
	req := loginRequest{Data: loginData{
		Type: typeSocialAccount,
		Attributes: loginAttributes{
			Email:        social.Email,
			Password:     social.Provider + "-auth",
			UniqueAuthID: social.SubjectID,
		},
	}}
	return s.authenticate(ctx, pathLogin, req)
}

func (s *Service) authenticate(ctx context.Context, path string, req interface{}) (*AuthResult, error) {
	var identity domain.Identity
	meta, err := s.api.Do(ctx, "POST", path, req, &identity)
	if err != nil {
		return nil, err
	}
	result := &AuthResult{Identity: &identity}
	if meta != nil {
		result.Token = meta.Token
	}
	return result, nil
}

// ActivateAccount confirms the signed-in account's email.
func (s *Service) ActivateAccount(ctx context.Context) error {
	_, err := s.api.Do(ctx, "GET", pathEmailConfirmation, nil, nil)
	return err
}

// RequestPasswordReset asks the backend to mail a reset link.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	req := forgotPasswordRequest{Data: forgotPasswordData{Email: email}}
	_, err := s.api.Do(ctx, "POST", pathForgotPassword, req, nil)
	return err
}

// ResetPassword redeems a reset token for a new password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	req := resetPasswordRequest{Data: resetPasswordData{Token: token, NewPassword: newPassword}}
	_, err := s.api.Do(ctx, "POST", pathResetPassword, req, nil)
	return err
}

// GetProfile fetches the current identity.
func (s *Service) GetProfile(ctx context.Context) (*domain.Identity, error) {
	var identity domain.Identity
	if _, err := s.api.Do(ctx, "GET", pathProfile, nil, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// UpdateProfile applies a partial update and returns the replaced
// identity.
func (s *Service) UpdateProfile(ctx context.Context, patch ProfilePatch) (*domain.Identity, error) {
	req := profileUpdateRequest{Data: profileUpdateData{
		Attributes: profileUpdateAttributes{
			FirstName: patch.FirstName,
			LastName:  patch.LastName,
			FullPhone: patch.FullPhone,
			Role:      string(patch.Role),
		},
	}}
	var identity domain.Identity
	if _, err := s.api.Do(ctx, "PUT", pathProfile, req, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// ChangePassword rotates the password of the signed-in account.
func (s *Service) ChangePassword(ctx context.Context, current, newPassword string) error {
	req := changePasswordRequest{Data: changePasswordData{
		CurrentPassword: current,
		NewPassword:     newPassword,
	}}
	_, err := s.api.Do(ctx, "PUT", pathProfilePassword, req, nil)
	return err
}

// ValidatePhoneChange asks the backend to verify a prospective phone
// number before the profile is updated.
func (s *Service) ValidatePhoneChange(ctx context.Context, newNumber string) error {
	req := phoneValidationRequest{Data: phoneValidationData{NewPhoneNumber: newNumber}}
	_, err := s.api.Do(ctx, "POST", pathPhoneValidation, req, nil)
	return err
}

// CountryCodes returns the dial-code lookup for the register form.
func (s *Service) CountryCodes(ctx context.Context) ([]domain.CountryCode, error) {
	var codes []domain.CountryCode
	if _, err := s.api.Do(ctx, "GET", pathCountryCodes, nil, &codes); err != nil {
		return nil, err
	}
	return codes, nil
}
