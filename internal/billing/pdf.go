package billing

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// Page layout in points. The body cursor starts below the title and a new
// page begins once it passes bottomY.
const (
	leftMargin = 50
	titleY     = 60
	bodyTopY   = 100
	bottomY    = 780
	lineHeight = 20
)

// PDF renders the bill as an A4 invoice. Content is the same as Text();
// pagination is presentational only.
func (b Bill) PDF() ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(leftMargin, titleY, fmt.Sprintf("Invoice - Order #%s", b.OrderID))

	pdf.SetFont("Helvetica", "", 12)
	y := float64(bodyTopY)
	for _, line := range b.TextLines() {
		pdf.Text(leftMargin, y, line)
		y += lineHeight
		if y > bottomY {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "", 12)
			y = bodyTopY
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
