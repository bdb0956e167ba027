package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/itchan-dev/foro/shared/config"
	"github.com/itchan-dev/foro/shared/errors"
)

const UsernameMaxLen = 64

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkText validates value after trimming; maxLen <= 0 disables the length check.
func checkText(field, label, value string, maxLen int) error {
	rules := "required"
	if maxLen > 0 {
		rules = fmt.Sprintf("required,max=%d", maxLen)
	}
	err := validate.Var(strings.TrimSpace(value), rules)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 && verrs[0].Tag() == "max" {
		return errors.NewValidation(field, fmt.Sprintf("%s is too long (max %d characters)", label, maxLen))
	}
	return errors.NewValidation(field, fmt.Sprintf("%s is required", label))
}

type UsernameValidator struct{}

func (UsernameValidator) Username(username string) error {
	return checkText("username", "Username", username, UsernameMaxLen)
}

type TopicValidator struct {
	TitleMaxLen   int
	ContentMaxLen int
}

func NewTopicValidator(cfg config.Forum) *TopicValidator {
	return &TopicValidator{TitleMaxLen: cfg.TitleMaxLen, ContentMaxLen: cfg.ContentMaxLen}
}

func (v *TopicValidator) Title(title string) error {
	return checkText("title", "Title", title, v.TitleMaxLen)
}

func (v *TopicValidator) Content(content string) error {
	return checkText("content", "Content", content, v.ContentMaxLen)
}

// RegistrationForm mirrors the register screen: the password must be confirmed and
// long enough before the auth service is called.
type RegistrationForm struct {
	Username        string `validate:"required"`
	Password        string `validate:"required"`
	ConfirmPassword string `validate:"required"`
}

func (f RegistrationForm) Validate(passwordMinLen int) error {
	if err := validate.Struct(f); err != nil {
		return errors.NewValidation("", "Please fill in all fields.")
	}
	if f.Password != f.ConfirmPassword {
		return errors.NewValidation("confirm_password", "Passwords do not match.")
	}
	if err := validate.Var(f.Password, fmt.Sprintf("min=%d", passwordMinLen)); err != nil {
		return errors.NewValidation("password", fmt.Sprintf("Password must be at least %d characters long.", passwordMinLen))
	}
	return nil
}

type LoginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

func (f LoginForm) Validate() error {
	if err := validate.Struct(f); err != nil {
		return errors.NewValidation("", "Please fill in all fields.")
	}
	return nil
}
