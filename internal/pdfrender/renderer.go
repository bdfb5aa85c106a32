// Package pdfrender draws an issued certificate into a PDF document. It
// consumes only the certificate's data snapshot and the resolved template;
// it never reaches back into the store.
package pdfrender

import (
	"bytes"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/certivault/backend/internal/models"
)

// Renderer renders certificates to PDF.
type Renderer struct {
	logger *zap.Logger
	client *http.Client
}

// NewRenderer creates a PDF renderer.
func NewRenderer(logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		logger: logger,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Render produces the PDF bytes for a certificate. Templates with placed
// elements are rendered element by element with merge tags resolved against
// the certificate's data snapshot; templates without elements get the
// standard fixed layout.
func (r *Renderer) Render(cert *models.Certificate, tpl *models.Template) ([]byte, error) {
	if cert == nil || tpl == nil {
		return nil, fmt.Errorf("certificate and template are required")
	}

	orientation := "L"
	if tpl.Orientation == models.OrientationPortrait {
		orientation = "P"
	}
	size := string(tpl.Size)
	if !tpl.Size.Valid() {
		size = string(models.SizeA4)
	}

	pdf := fpdf.New(orientation, "mm", size, "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()

	if tpl.BackgroundColor != "" {
		cr, cg, cb := hexColor(tpl.BackgroundColor, 255, 255, 255)
		pdf.SetFillColor(cr, cg, cb)
		pdf.Rect(0, 0, pageW, pageH, "F")
	}
	r.drawBackgroundImage(pdf, tpl, pageW, pageH)

	// border
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(2)
	pdf.Rect(10, 10, pageW-20, pageH-20, "D")

	if len(tpl.Elements) > 0 {
		r.drawElements(pdf, tr, cert, tpl, pageW, pageH)
	} else {
		r.drawFixedLayout(pdf, tr, cert, pageW)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawFixedLayout(pdf *fpdf.Fpdf, tr func(string) string, cert *models.Certificate, pageW float64) {
	centered := func(y, fontSize float64, style, text string) {
		pdf.SetFont("Helvetica", style, fontSize)
		pdf.SetXY(0, y)
		pdf.CellFormat(pageW, fontSize/2, tr(text), "", 0, "C", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	centered(35, 36, "B", "Certificate of Completion")
	centered(55, 16, "", "This is to certify that")

	pdf.SetTextColor(0, 100, 200)
	centered(78, 32, "B", cert.Data.AttendeeName)

	pdf.SetTextColor(0, 0, 0)
	centered(100, 16, "", "has successfully completed")
	centered(118, 24, "B", cert.Data.CourseEventTitle)

	pdf.SetFont("Helvetica", "", 14)
	pdf.Text(30, 160, tr("Completion Date: "+cert.Data.CompletionDate))
	pdf.Text(30, 175, tr("Certificate ID: "+cert.CertificateID))

	if cert.Data.SigningAuthorityName != "" {
		right := func(y float64, text string) {
			w := pdf.GetStringWidth(tr(text))
			pdf.Text(pageW-30-w, y, tr(text))
		}
		right(160, cert.Data.SigningAuthorityName)
		right(175, cert.Data.SigningAuthorityTitle)
	}
}

func (r *Renderer) drawElements(pdf *fpdf.Fpdf, tr func(string) string, cert *models.Certificate, tpl *models.Template, pageW, pageH float64) {
	for _, el := range tpl.Elements {
		if el.Type != "text" {
			continue
		}
		content := ResolveMergeTags(el.Content, cert)
		fontSize := el.FontSize
		if fontSize <= 0 {
			fontSize = 16
		}
		style := ""
		if el.FontWeight == "bold" {
			style = "B"
		}
		pdf.SetFont(coreFont(el.FontFamily), style, fontSize)
		cr, cg, cb := hexColor(el.Color, 0, 0, 0)
		pdf.SetTextColor(cr, cg, cb)

		// element coordinates are percentages of the page
		x := el.X / 100 * pageW
		y := el.Y / 100 * pageH
		w := el.Width / 100 * pageW
		if w <= 0 {
			w = pdf.GetStringWidth(tr(content))
		}
		align := "L"
		switch el.TextAlign {
		case "center":
			align = "C"
			x -= w / 2
		case "right":
			align = "R"
			x -= w
		}
		pdf.SetXY(x, y)
		pdf.CellFormat(w, fontSize/2, tr(content), "", 0, align, false, 0, "")
	}
}

func (r *Renderer) drawBackgroundImage(pdf *fpdf.Fpdf, tpl *models.Template, pageW, pageH float64) {
	ref := tpl.BackgroundImage
	if ref == "" || (!strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://")) {
		return
	}
	resp, err := r.client.Get(ref)
	if err != nil {
		r.logger.Warn("background image fetch failed", zap.Error(err))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		r.logger.Warn("background image fetch failed", zap.Int("status", resp.StatusCode))
		return
	}
	imageType := imageTypeFor(resp.Header.Get("Content-Type"), ref)
	if imageType == "" {
		r.logger.Warn("background image has unsupported type", zap.String("url", ref))
		return
	}
	opts := fpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader(ref, opts, resp.Body)
	pdf.ImageOptions(ref, 0, 0, pageW, pageH, false, opts, 0, "")
}

func imageTypeFor(contentType, url string) string {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg":
		return "JPG"
	case "image/png":
		return "PNG"
	}
	switch strings.ToLower(path.Ext(url)) {
	case ".jpg", ".jpeg":
		return "JPG"
	case ".png":
		return "PNG"
	}
	return ""
}

func coreFont(family string) string {
	switch family {
	case "Times New Roman", "Georgia":
		return "Times"
	case "Courier New":
		return "Courier"
	default:
		return "Helvetica"
	}
}

// hexColor parses "#rrggbb" (or "#rgb"), returning the fallback on any
// malformed input.
func hexColor(s string, dr, dg, db int) (int, int, int) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return dr, dg, db
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return dr, dg, db
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
