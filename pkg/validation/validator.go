package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"voyageiq/pkg/logger"
)

// DefaultPhoneRegion is used to parse phone numbers written without a
// country prefix.
const DefaultPhoneRegion = "US"

// Messages overrides the generated message for a rule. Keys are
// "<field>.<tag>" for one rule or "<field>" for every rule on that field,
// where field is the JSON name.
type Messages map[string]string

// Validator wraps a go-playground validator configured with JSON field names
// and the custom tags used by resource schemas.
type Validator struct {
	validate *validator.Validate
}

func New(log *logger.Logger) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	custom := map[string]validator.Func{
		"objectid": validateObjectID,
		"phone":    validatePhone,
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatal("Failed to register validator", "tag", tag, "error", err)
		}
	}

	return &Validator{validate: v}
}

// Violations checks every rule on s and returns one message per failing
// field. It does not stop at the first failure.
func (v *Validator) Violations(s any, messages Messages) ([]string, error) {
	err := v.validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, err
	}

	violations := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, translate(fe, messages))
	}
	return violations, nil
}

func translate(fe validator.FieldError, messages Messages) string {
	field := fieldPath(fe)
	if msg, ok := messages[field+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := messages[field]; ok {
		return msg
	}

	name := fe.Field()
	switch fe.Tag() {
	case "required", "required_without":
		return fmt.Sprintf("%s is required", name)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s%s", name, fe.Param(), unitFor(fe))
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s%s", name, fe.Param(), unitFor(fe))
	case "len":
		return fmt.Sprintf("%s must be exactly %s%s", name, fe.Param(), unitFor(fe))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.Join(strings.Fields(fe.Param()), ", "))
	case "email":
		return fmt.Sprintf("%s must be a valid email address", name)
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", name)
	case "objectid":
		return fmt.Sprintf("%s must be a valid ID", name)
	case "phone":
		return fmt.Sprintf("%s must be a valid phone number", name)
	case "ltfield":
		return fmt.Sprintf("%s must be less than %s", name, lowerFirst(fe.Param()))
	case "gtfield":
		return fmt.Sprintf("%s must be greater than %s", name, lowerFirst(fe.Param()))
	}
	return fmt.Sprintf("%s failed on the '%s' rule", name, fe.Tag())
}

// fieldPath strips the struct name from the namespace so nested fields keep
// their dotted JSON path, e.g. "startLocation.address".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func unitFor(fe validator.FieldError) string {
	switch fe.Kind() {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return " items"
	}
	return ""
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

func validateObjectID(fl validator.FieldLevel) bool {
	return primitive.IsValidObjectID(fl.Field().String())
}

func validatePhone(fl validator.FieldLevel) bool {
	raw := strings.TrimSpace(fl.Field().String())
	if raw == "" {
		return false
	}
	parsed, err := phonenumbers.Parse(raw, DefaultPhoneRegion)
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(parsed)
}
