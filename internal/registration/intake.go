package registration

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// RequiredFields lists the intake fields in the order they are checked.
var RequiredFields = []string{"name", "email", "phone", "year", "branch"}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\d{10}$`)
)

const minNameLength = 2

// Intake holds the raw, unnormalized values of a registration request.
type Intake struct {
	Name   string
	Email  string
	Phone  string
	Year   string
	Branch string
}

// ParseIntake extracts the required fields from a JSON request body.
// Scalars of any JSON type are accepted and kept in their textual form; a field
// that is absent, null, a nested object or array, or blank is rejected.
func ParseIntake(body []byte) (Intake, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return Intake{}, &ValidationError{Message: errNoData}
	}
	if !gjson.ValidBytes(body) {
		return Intake{}, &ValidationError{Message: "Invalid JSON payload"}
	}

	doc := gjson.ParseBytes(body)
	if !doc.IsObject() || len(doc.Map()) == 0 {
		return Intake{}, &ValidationError{Message: errNoData}
	}

	// a repeated key resolves to its last occurrence
	fields := make(map[string]gjson.Result, len(RequiredFields))
	doc.ForEach(func(key, value gjson.Result) bool {
		fields[key.String()] = value
		return true
	})

	values := make(map[string]string, len(RequiredFields))
	for _, field := range RequiredFields {
		v, ok := fields[field]
		if !ok || v.Type == gjson.Null || v.Type == gjson.JSON {
			return Intake{}, missingField(field)
		}
		s := v.String()
		if strings.TrimSpace(s) == "" {
			return Intake{}, missingField(field)
		}
		values[field] = s
	}

	return Intake{
		Name:   values["name"],
		Email:  values["email"],
		Phone:  values["phone"],
		Year:   values["year"],
		Branch: values["branch"],
	}, nil
}

// Normalize trims name, email and phone and lower-cases the email.
// Year and branch are kept verbatim. The returned record has no timestamp.
func (in Intake) Normalize() Record {
	return Record{
		Name:   strings.TrimSpace(in.Name),
		Email:  strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:  strings.TrimSpace(in.Phone),
		Year:   in.Year,
		Branch: in.Branch,
	}
}

// ValidateStrict applies the format rules of the registration form to a
// normalized record: a plausible email, a 10 digit phone number and a name of
// at least two characters.
func ValidateStrict(r Record) error {
	if len([]rune(r.Name)) < minNameLength {
		return invalidField("name", "must be at least 2 characters")
	}
	if !emailPattern.MatchString(r.Email) {
		return invalidField("email", "must be a valid email address")
	}
	if !phonePattern.MatchString(r.Phone) {
		return invalidField("phone", "must be a 10-digit phone number")
	}
	return nil
}
