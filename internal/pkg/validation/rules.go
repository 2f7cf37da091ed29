package validation

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	EmailPattern = `^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`

	// SAP ID: 11 digits
	StudentIDPattern = `^\d{11}$`

	// Course and subject codes: upper case letters, digits and dashes (BTECH-INT)
	CatalogCodePattern = `^[A-Z0-9][A-Z0-9\-]{0,19}$`

	NameMinLength = 1
	NameMaxLength = 255
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email       *regexp.Regexp
	StudentID   *regexp.Regexp
	CatalogCode *regexp.Regexp
}{
	Email:       regexp.MustCompile(EmailPattern),
	StudentID:   regexp.MustCompile(StudentIDPattern),
	CatalogCode: regexp.MustCompile(CatalogCodePattern),
}

// RegisterCustomRules registers the project specific tags on a validator
// engine: sapid and catalogcode.
func RegisterCustomRules(v *validator.Validate) error {
	if err := v.RegisterValidation("sapid", func(fl validator.FieldLevel) bool {
		return IsValidStudentID(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("catalogcode", func(fl validator.FieldLevel) bool {
		return IsValidCatalogCode(fl.Field().String())
	})
}

// IsValidStudentID reports whether id is an 11 digit SAP ID.
func IsValidStudentID(id string) bool {
	return CompiledPatterns.StudentID.MatchString(id)
}

// IsValidCatalogCode reports whether code is usable as a course or subject code.
func IsValidCatalogCode(code string) bool {
	return CompiledPatterns.CatalogCode.MatchString(code)
}

// IsHTTPURL reports whether raw is an absolute http or https URL.
func IsHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// StringValidation validates a single string value
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    strings.TrimSpace(value),
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Value == "" {
		return !v.Required
	}

	if v.MinLen > 0 && len(v.Value) < v.MinLen {
		return false
	}

	if v.MaxLen > 0 && len(v.Value) > v.MaxLen {
		return false
	}

	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}

	return true
}

// NumericValidation validates an integer against an inclusive range
type NumericValidation struct {
	Value int
	Min   int
	Max   int
}

// NewNumericValidation creates a new numeric validation
func NewNumericValidation(value int) *NumericValidation {
	return &NumericValidation{Value: value}
}

// WithMin sets minimum value
func (v *NumericValidation) WithMin(min int) *NumericValidation {
	v.Min = min
	return v
}

// WithMax sets maximum value
func (v *NumericValidation) WithMax(max int) *NumericValidation {
	v.Max = max
	return v
}

// Validate performs validation. A zero bound is not enforced.
func (v *NumericValidation) Validate() bool {
	if v.Min != 0 && v.Value < v.Min {
		return false
	}

	if v.Max != 0 && v.Value > v.Max {
		return false
	}

	return true
}
