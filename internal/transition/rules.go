package transition

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/alecgard/enclave/internal/apiclient"
)

const (
	MsgRequiredFields = "Please fill in all required fields."
	MsgPasswordLength = "Password must be at least 8 characters long."
	MinPasswordLength = 8
)

// Rule is one precondition. It returns nil when satisfied.
type Rule func() error

// Validate runs rules in order and returns the first failure.
func Validate(rules ...Rule) error {
	for _, r := range rules {
		if err := r(); err != nil {
			return err
		}
	}
	return nil
}

// Required fails with MsgRequiredFields if any value is blank.
func Required(values ...string) Rule {
	return func() error {
		for _, v := range values {
			if strings.TrimSpace(v) == "" {
				return apiclient.Validation("", MsgRequiredFields)
			}
		}
		return nil
	}
}

// NonEmpty fails with msg on field when value is blank.
func NonEmpty(field, value, msg string) Rule {
	return func() error {
		if strings.TrimSpace(value) == "" {
			return apiclient.Validation(field, msg)
		}
		return nil
	}
}

// Password enforces MinPasswordLength on a supplied password. An empty
// password passes; pair with NonEmpty when it is mandatory.
func Password(value string) Rule {
	return func() error {
		if value != "" && len(value) < MinPasswordLength {
			return apiclient.Validation("password", MsgPasswordLength)
		}
		return nil
	}
}

const formatting = " -()+./"

// Digits fails with msg when value, after dropping formatting characters,
// contains anything but 0-9. An empty value passes.
func Digits(field, value, msg string) Rule {
	return func() error {
		stripped := StripFormatting(value)
		if value != "" && stripped == "" {
			return apiclient.Validation(field, msg)
		}
		for _, r := range stripped {
			if r < '0' || r > '9' {
				return apiclient.Validation(field, msg)
			}
		}
		return nil
	}
}

// StripFormatting removes the characters Digits tolerates.
func StripFormatting(value string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(formatting, r) {
			return -1
		}
		return r
	}, value)
}

var validate = validator.New()

// Email fails when value is not a single valid address.
func Email(field, value string) Rule {
	return func() error {
		if err := validate.Var(value, "required,email"); err != nil {
			return apiclient.Validation(field, "Please enter a valid email address.")
		}
		return nil
	}
}

// OneOf fails when value is not in choices.
func OneOf(field, value string, choices []string, msg string) Rule {
	return func() error {
		for _, c := range choices {
			if value == c {
				return nil
			}
		}
		return apiclient.Validation(field, msg)
	}
}
