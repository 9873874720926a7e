package payout

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"marina/internal/domain/employee"
)

func ReceiptFileName(p MonthlyPayout) string {
	return fmt.Sprintf("payout-%d.pdf", p.ID)
}

func RenderReceipt(p MonthlyPayout, emp employee.Employee) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payout receipt")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s %s (%s)", emp.FirstName, emp.LastName, emp.Username))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", emp.Email))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %04d-%02d", p.Year, p.Month))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Paid at: %s", p.PaymentDate.UTC().Format("2006-01-02 15:04 MST")))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Amount: %s CHF", p.AmountChf.StringFixed(2)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Rate: %s CHF/BTC", p.RateChf.StringFixed(2)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Amount: %s BTC", p.AmountBtc.String()))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Address: %s", p.PublicAddress))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
