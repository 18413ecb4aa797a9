package user

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/scorecard/core"
)

func newTestValidator() *validator.Validate {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	RegisterValidators(validate, translator)
	return validate
}

func TestPasswordPolicy(t *testing.T) {
	validate := newTestValidator()

	newUser := func(pwd string) NewUser {
		return NewUser{
			Name:            "Alice Bar",
			Username:        "alice",
			Email:           "alice@test.cd",
			Password:        pwd,
			PasswordConfirm: pwd,
		}
	}

	tests := []struct {
		name    string
		usr     NewUser
		wantTag string
	}{
		{name: "too short", usr: newUser("ab1"), wantTag: pwdMinLenTag},
		{name: "whitespace", usr: newUser("very secret but spaced"), wantTag: pwdNoSpaceTag},
		{name: "all numeric", usr: newUser("20260829"), wantTag: pwdNotAllNumTag},
		{name: "similar to username", usr: newUser("alice123"), wantTag: pwdAttrSimTag},
		{
			name: "similar to email part",
			usr: NewUser{
				Username:        "alice",
				Email:           "scorekeeper@test.cd",
				Password:        "scorekeeper1",
				PasswordConfirm: "scorekeeper1",
			},
			wantTag: pwdAttrSimTag,
		},
		{name: "ok", usr: newUser("g00d&pr0per")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.usr)
			if tt.wantTag == "" {
				if err != nil {
					t.Fatalf("Struct() unexpected error = %v", err)
				}
				return
			}
			fldErrs, ok := err.(validator.ValidationErrors)
			if !ok {
				t.Fatalf("Struct() error = %v, want ValidationErrors", err)
			}
			for _, fldErr := range fldErrs {
				if fldErr.Tag() == tt.wantTag {
					return
				}
			}
			t.Errorf("Struct() errors = %v, want tag %q", fldErrs, tt.wantTag)
		})
	}
}

func TestRoleValidation(t *testing.T) {
	validate := newTestValidator()

	usr := NewUser{
		Username:        "bob",
		Role:            "supreme_leader",
		Password:        "g00d&pr0per",
		PasswordConfirm: "g00d&pr0per",
	}
	err := validate.Struct(usr)
	fldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		t.Fatalf("Struct() error = %v, want ValidationErrors", err)
	}
	for _, fldErr := range fldErrs {
		if fldErr.Tag() == allRolesTag {
			return
		}
	}
	t.Errorf("Struct() errors = %v, want tag %q", fldErrs, allRolesTag)
}
