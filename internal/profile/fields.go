package profile

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/interview-coach/internal/types"
)

// Field is a contact field collected before the interview starts.
type Field string

const (
	FieldName  Field = "name"
	FieldEmail Field = "email"
	FieldPhone Field = "phone"
)

// fieldOrder is the order in which missing fields are requested.
var fieldOrder = []Field{FieldName, FieldEmail, FieldPhone}

var validate = validator.New()

// MissingFields returns the empty contact fields in request order.
func (p Profile) MissingFields() []Field {
	var missing []Field
	for _, f := range fieldOrder {
		if strings.TrimSpace(p.Get(f)) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// NextMissingField returns the field the candidate should be asked for next.
func (p Profile) NextMissingField() (Field, bool) {
	missing := p.MissingFields()
	if len(missing) == 0 {
		return "", false
	}
	return missing[0], true
}

// ValidateField checks a value supplied for f and returns it normalized.
func ValidateField(f Field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", &types.InvalidInputError{Field: string(f), Message: "value is required"}
	}
	switch f {
	case FieldName:
		return value, nil
	case FieldEmail:
		if err := validate.Var(value, "email"); err != nil {
			return "", &types.InvalidInputError{Field: string(f), Message: "not a valid email address"}
		}
		return value, nil
	case FieldPhone:
		digits := 0
		for _, r := range value {
			switch {
			case r >= '0' && r <= '9':
				digits++
			case strings.ContainsRune("+-.() ", r):
			default:
				return "", &types.InvalidInputError{Field: string(f), Message: "phone may only contain digits and + - . ( ) separators"}
			}
		}
		if digits < 7 || digits > 15 {
			return "", &types.InvalidInputError{Field: string(f), Message: "phone must have between 7 and 15 digits"}
		}
		return value, nil
	default:
		return "", &types.InvalidInputError{Field: string(f), Message: "unknown field"}
	}
}
