package pdfrender

import (
	"strings"

	"github.com/certivault/backend/internal/models"
)

// MergeTag is a placeholder token usable in template text elements.
type MergeTag struct {
	Tag         string `json:"tag"`
	Description string `json:"description"`
}

// MergeTags lists the placeholder tokens resolvable against a certificate's
// data snapshot.
var MergeTags = []MergeTag{
	{Tag: "[[AttendeeName]]", Description: "Full name of the attendee"},
	{Tag: "[[CourseEventTitle]]", Description: "Title of the event"},
	{Tag: "[[CompletionDate]]", Description: "Date of completion"},
	{Tag: "[[SigningAuthorityName]]", Description: "Name of signing authority"},
	{Tag: "[[SigningAuthorityTitle]]", Description: "Title of signing authority"},
	{Tag: "[[CertificateID]]", Description: "Unique certificate identifier"},
}

// ResolveMergeTags replaces every known merge tag in content with the
// corresponding value from the certificate's data snapshot. Custom field
// keys resolve as [[Key]]. Unknown tags are left as-is.
func ResolveMergeTags(content string, cert *models.Certificate) string {
	if !strings.Contains(content, "[[") {
		return content
	}
	pairs := []string{
		"[[AttendeeName]]", cert.Data.AttendeeName,
		"[[CourseEventTitle]]", cert.Data.CourseEventTitle,
		"[[CompletionDate]]", cert.Data.CompletionDate,
		"[[SigningAuthorityName]]", cert.Data.SigningAuthorityName,
		"[[SigningAuthorityTitle]]", cert.Data.SigningAuthorityTitle,
		"[[CertificateID]]", cert.CertificateID,
	}
	for k, v := range cert.Data.CustomFields {
		pairs = append(pairs, "[["+k+"]]", v)
	}
	return strings.NewReplacer(pairs...).Replace(content)
}
