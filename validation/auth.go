package validation

import (
	"strconv"

	"library-api/i18n"
)

const (
	SigninPasswordMin   = 6
	RegisterPasswordMin = 8
	PasswordMax         = 100
	NameMax             = 50
)

type SigninInput struct {
	Email    string `json:"email" validate:"required,simple_email"`
	Password string `json:"password" validate:"min=6,max=100"`
}

type RegisterInput struct {
	FirstName string `json:"first_name" validate:"min=1,max=50"`
	LastName  string `json:"last_name" validate:"min=1,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"min=8,max=100"`
}

// BuildSigninSchema returns the signin schema with messages from tr.
func BuildSigninSchema(tr *i18n.Translator) *Schema[SigninInput] {
	return &Schema[SigninInput]{
		messages: map[string]map[string]string{
			"email": {
				"required":     tr.T(i18n.KeyEmailRequired),
				"simple_email": tr.T(i18n.KeyEmailInvalid),
			},
			"password": {
				"min": tr.T(i18n.KeyPasswordMin, "min", strconv.Itoa(SigninPasswordMin)),
				"max": tr.T(i18n.KeyPasswordMax, "max", strconv.Itoa(PasswordMax)),
			},
		},
		fallback: tr.T(i18n.KeyInvalidField),
	}
}

// BuildRegisterSchema returns the signup schema with messages from tr.
func BuildRegisterSchema(tr *i18n.Translator) *Schema[RegisterInput] {
	return &Schema[RegisterInput]{
		messages: map[string]map[string]string{
			"first_name": {
				"min": tr.T(i18n.KeyFirstNameRequired),
				"max": tr.T(i18n.KeyFirstNameMax, "max", strconv.Itoa(NameMax)),
			},
			"last_name": {
				"min": tr.T(i18n.KeyLastNameRequired),
				"max": tr.T(i18n.KeyLastNameMax, "max", strconv.Itoa(NameMax)),
			},
			"email": {
				"required": tr.T(i18n.KeyEmailRequired),
				"email":    tr.T(i18n.KeyEmailInvalid),
			},
			"password": {
				"min": tr.T(i18n.KeyPasswordMin, "min", strconv.Itoa(RegisterPasswordMin)),
				"max": tr.T(i18n.KeyPasswordMax, "max", strconv.Itoa(PasswordMax)),
			},
		},
		fallback: tr.T(i18n.KeyInvalidField),
	}
}
