package user

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/bigplans/backend/core"
)

func newValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate, translator
}

func TestNewUser_Validate(t *testing.T) {
	validate, translator := newValidator()

	tests := []struct {
		name    string
		nu      NewUser
		wantErr map[string]string // {field: msg}
	}{
		{name: "empty", nu: NewUser{}, wantErr: map[string]string{
			"username": "this field is required",
			"password": "this field is required",
		}},
		{name: "short username", nu: NewUser{Username: "ab", Password: "Sup3r-secret"}, wantErr: map[string]string{
			"username": "username must be at least 3 characters in length",
		}},
		{name: "bad username chars", nu: NewUser{Username: "ann.b", Password: "Sup3r-secret"}, wantErr: map[string]string{
			"username": "only alphanumeric characters and underscores are allowed",
		}},
		{name: "short password", nu: NewUser{Username: "ann", Password: "abc"}, wantErr: map[string]string{
			"password": "password must be at least 6 characters",
		}},
		{name: "password with space", nu: NewUser{Username: "ann", Password: "Sup3r secret"}, wantErr: map[string]string{
			"password": "password must not contain whitespace",
		}},
		{name: "password like username", nu: NewUser{Username: "johnny", Password: "Johnny1"}, wantErr: map[string]string{
			"password": "password is too similar to the username",
		}},
		{name: "bad avatar", nu: NewUser{Username: "ann", Password: "Sup3r-secret", AvatarURL: "nope"}, wantErr: map[string]string{
			"avatarUrl": "avatarUrl must be a valid URL",
		}},
		{name: "valid", nu: NewUser{Username: "  Ann_B ", Password: "Sup3r-secret", AvatarURL: "https://example.com/a.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nu.Validate(validate)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error = %v", err)
				}
				return
			}
			verrs, ok := err.(validator.ValidationErrors)
			if !ok {
				t.Fatalf("Validate() error = %v, want validator.ValidationErrors", err)
			}
			got := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				got[fe.Field()] = fe.Translate(translator)
			}
			if len(got) != len(tt.wantErr) {
				t.Fatalf("Validate() errors = %v, want %v", got, tt.wantErr)
			}
			for field, msg := range tt.wantErr {
				if got[field] != msg {
					t.Errorf("Validate() %s = %q, want %q", field, got[field], msg)
				}
			}
		})
	}

	nu := NewUser{Username: "  Ann_B ", Password: "Sup3r-secret"}
	_ = nu.Validate(validate)
	if nu.Username != "ann_b" {
		t.Errorf("Validate() username = %q, want cleaned & lowered", nu.Username)
	}
}

func TestPasswordChange_Validate(t *testing.T) {
	validate, _ := newValidator()

	if err := (&PasswordChange{Username: "ann", Password: "N3w-password"}).Validate(validate); err != nil {
		t.Errorf("Validate() unexpected error = %v", err)
	}
	if err := (&PasswordChange{Username: "ann", Password: "short"}).Validate(validate); err == nil {
		t.Error("Validate() expected a password policy error")
	}
}
