package httpx

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"bookcatalog/internal/platform/crypto"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// report fields under their wire names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	validate.RegisterValidation("isbn13", validateISBN13)
	validate.RegisterValidation("nanp_phone", validatePhone)
	validate.RegisterValidation("account_password", validateAccountPassword)
}

// validateISBN13 accepts a 13-digit ISBN carried as a number.
func validateISBN13(fl validator.FieldLevel) bool {
	isbn := fl.Field().Int()
	return isbn >= 1_000_000_000_000 && isbn <= 9_999_999_999_999
}

var phoneRe = regexp.MustCompile(`^(?:\+1[-.\s]?)?\(?([2-9][0-9]{2})\)?[-.\s]?([2-9][0-9]{2})[-.\s]?(\d{4})$`)

// validatePhone checks a NANP-style phone number: ten digits (eleven with
// a leading +1), area and exchange codes starting 2-9.
func validatePhone(fl validator.FieldLevel) bool {
	phone := strings.TrimSpace(fl.Field().String())
	if !phoneRe.MatchString(phone) {
		return false
	}

	digits := regexp.MustCompile(`[^\d]`).ReplaceAllString(phone, "")
	if len(digits) == 11 && strings.HasPrefix(digits, "1") {
		digits = digits[1:]
	}
	return len(digits) == 10 && digits[6:] != "0000"
}

func validateAccountPassword(fl validator.FieldLevel) bool {
	return crypto.ValidatePasswordPolicy(fl.Field().String()) == nil
}

// ValidateStruct runs the shared validator over a request body and turns
// failures into response-ready details.
func ValidateStruct(s interface{}) []ErrorDetail {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var details []ErrorDetail
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		tag := err.Tag()
		param := err.Param()

		var message string
		switch tag {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", field, param)
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", field, param)
		case "gte":
			message = fmt.Sprintf("%s must be at least %s", field, param)
		case "lte":
			message = fmt.Sprintf("%s must be at most %s", field, param)
		case "isbn13":
			message = fmt.Sprintf("%s must be a 13-digit ISBN", field)
		case "nanp_phone":
			message = fmt.Sprintf("%s must be a valid phone number", field)
		case "account_password":
			message = fmt.Sprintf("%s must be at least 10 characters of letters, digits and '!', with one lowercase, one uppercase, one digit and one '!'", field)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		details = append(details, ErrorDetail{
			Field:   field,
			Message: message,
		})
	}

	return details
}
