package web

import (
	"github.com/golang-jwt/jwt/v4"

	"github.com/workhive/desk/account"
	"github.com/workhive/desk/domain"
)

const providerGoogle = "google"

// googleIdentity extracts the normalized identity from the ID-token
// credential posted by the Google sign-in button. The signature is not
// checked here; the account backend is the authority on whether the
// assertion buys a session.
func googleIdentity(credential string) (account.SocialIdentity, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(credential, claims); err != nil {
		return account.SocialIdentity{}, domain.WrapError(domain.ErrCodeValidation, "Google sign-in failed", err)
	}

	email, _ := claims["email"].(string)
	subject, _ := claims["sub"].(string)
	if email == "" || subject == "" {
		return account.SocialIdentity{}, domain.NewError(domain.ErrCodeValidation, "Google sign-in failed")
	}

	return account.SocialIdentity{
		Provider:  providerGoogle,
		Email:     email,
		SubjectID: subject,
	}, nil
}
