// Package forms parses and validates the account HTML forms.
package forms

// NonField collects errors that belong to the form as a whole.
const NonField = "__all__"

const (
	msgRequired      = "This field is required."
	msgInvalidEmail  = "Enter a valid email address."
	msgPasswordMatch = "passwords do not match"
)

// Errors maps field names to their validation messages.
type Errors map[string][]string

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e Errors) AddNonField(msg string) { e.Add(NonField, msg) }

// Get returns the first message for field, or "".
func (e Errors) Get(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (e Errors) NonFieldErrors() []string { return e[NonField] }

func (e Errors) Any() bool { return len(e) > 0 }
