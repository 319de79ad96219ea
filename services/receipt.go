package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"risehub/models"
	"risehub/utils"
)

// ReceiptData is everything printed on a payment acknowledgment.
type ReceiptData struct {
	Site       SiteInfo
	Student    models.User
	Enrollment models.EnrollmentResponse
	Cohort     models.Cohort
	IssuedAt   time.Time
}

// RenderReceipt creates the payment acknowledgment PDF for an enrollment.
func RenderReceipt(d ReceiptData) ([]byte, error) {
	e := d.Enrollment
	due := e.Price - e.AmountPaid
	if due < 0 {
		due = 0
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s payment acknowledgment", d.Site.Name), true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, d.Site.Name)
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(40, 10, "Payment acknowledgment")
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(40, 10, fmt.Sprintf("Dear %s,", d.Student.FullName()))
	pdf.Ln(12)

	row := func(label, value string) {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(55, 8, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 8, value, "", 1, "L", false, 0, "")
	}

	row("Enrollment", fmt.Sprintf("#%d", e.ID))
	row("Course", e.CourseTitle)
	row("Cohort", e.CohortName)
	row("Starts", d.Cohort.StartDate.Format(utils.DisplayDate))
	row("Status", string(e.Status))
	row("Course fee", fmt.Sprintf("%s %s", e.Currency, e.Price))
	row("Amount paid", fmt.Sprintf("%s %s", e.Currency, e.AmountPaid))
	row("Amount due", fmt.Sprintf("%s %s", e.Currency, due))
	if e.PaymentMethod != "" {
		row("Payment method", e.PaymentMethod)
	}
	if e.IsPaid {
		row("Paid", "Yes")
	} else {
		row("Paid", "No")
	}
	row("Issued", d.IssuedAt.Format(utils.DisplayDate))
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(0, 6, "This acknowledgment records the payment details on file. Staff confirm payments separately.", "", "L", false)
	if d.Site.SupportEmail != "" {
		pdf.MultiCell(0, 6, "Questions? Write to "+d.Site.SupportEmail, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error generating receipt PDF: %w", err)
	}
	return buf.Bytes(), nil
}
