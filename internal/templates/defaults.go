package templates

import (
	"github.com/certivault/backend/internal/models"
	"github.com/certivault/backend/internal/pdfrender"
)

// DefaultTemplate returns the starter layout offered by the editor for a new
// template.
func DefaultTemplate() models.Template {
	return models.Template{
		Name:            "Default Certificate",
		Description:     "A simple certificate template",
		Size:            models.SizeA4,
		Orientation:     models.OrientationLandscape,
		BackgroundColor: "#ffffff",
		Elements: []models.TemplateElement{
			{
				ID: "title", Type: "text", Content: "Certificate of Completion",
				X: 50, Y: 20, Width: 50, Height: 10,
				FontSize: 36, FontFamily: "Arial", FontWeight: "bold",
				Color: "#000000", TextAlign: "center",
			},
			{
				ID: "subtitle", Type: "text", Content: "This is to certify that",
				X: 50, Y: 35, Width: 50, Height: 5,
				FontSize: 16, FontFamily: "Arial", FontWeight: "normal",
				Color: "#666666", TextAlign: "center",
			},
			{
				ID: "attendeeName", Type: "text", Content: "[[AttendeeName]]",
				X: 50, Y: 45, Width: 50, Height: 8,
				FontSize: 32, FontFamily: "Arial", FontWeight: "bold",
				Color: "#2563eb", TextAlign: "center",
			},
			{
				ID: "completionText", Type: "text", Content: "has successfully completed",
				X: 50, Y: 58, Width: 50, Height: 5,
				FontSize: 16, FontFamily: "Arial", FontWeight: "normal",
				Color: "#666666", TextAlign: "center",
			},
			{
				ID: "eventTitle", Type: "text", Content: "[[CourseEventTitle]]",
				X: 50, Y: 68, Width: 50, Height: 8,
				FontSize: 24, FontFamily: "Arial", FontWeight: "bold",
				Color: "#000000", TextAlign: "center",
			},
		},
		CustomFields: map[string]string{},
	}
}

// MergeTags returns the placeholder tokens available to template elements.
func MergeTags() []pdfrender.MergeTag {
	return pdfrender.MergeTags
}
