package profile

import "regexp"

var (
	namePattern  = regexp.MustCompile(`([A-Z][a-z]+ [A-Z][a-z]+)`)
	emailPattern = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	phonePattern = regexp.MustCompile(`(\(?\d{3}\)?[-.\s]?)?\d{3}[-.\s]?\d{4}`)
)

// Contact holds the identity fields found in résumé text. Missing fields are empty.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// ExtractContact finds the first name-like pair of capitalized words, the first
// email address and the first phone number in text.
func ExtractContact(text string) Contact {
	return Contact{
		Name:  namePattern.FindString(text),
		Email: emailPattern.FindString(text),
		Phone: phonePattern.FindString(text),
	}
}
