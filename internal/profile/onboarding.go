package profile

import (
	"fmt"
	"strings"
)

// ParsedFieldsMessage lists the contact fields found in the résumé.
// It returns "" when nothing was found.
func ParsedFieldsMessage(p Profile) string {
	if p.Name == "" && p.Email == "" && p.Phone == "" {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("I have parsed the following information from your resume:")
	if p.Name != "" {
		sb.WriteString("\n- Name: " + p.Name)
	}
	if p.Email != "" {
		sb.WriteString("\n- Email: " + p.Email)
	}
	if p.Phone != "" {
		sb.WriteString("\n- Phone: " + p.Phone)
	}
	return sb.String()
}

// MissingFieldPrompt asks the candidate for f.
func MissingFieldPrompt(f Field) string {
	return fmt.Sprintf("I couldn't find your %s in the resume. Could you please provide it?", f)
}
