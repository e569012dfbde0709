package pay

import (
	"bytes"
	"fmt"
	"strings"

	"fastbreakfast/models"
	"fastbreakfast/notify"
	"fastbreakfast/stripe"

	"github.com/phpdave11/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// BuildReceiptPDF renders a one-page receipt in memory.
func BuildReceiptPDF(details stripe.SessionDetails, items []models.CartItem) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Fast Breakfast", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Payment Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(120, 8, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, "Qty", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, item := range items {
		pdf.CellFormat(120, 8, item.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, fmt.Sprintf("%d", item.Quantity), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8,
		fmt.Sprintf("Total Paid: %.2f %s", float64(details.AmountTotal)/100, strings.ToUpper(details.Currency)),
		"T", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Transaction ID: "+details.ID, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Status: PAID", "", 1, "L", false, 0, "")
	pdf.Ln(6)

	// QR links back to the online copy of this receipt.
	png, err := qrcode.Encode(clientURL()+"/api/payments/receipt/"+details.ID, qrcode.Medium, 256)
	if err == nil {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("receipt-qr", opts, bytes.NewReader(png))
		pdf.ImageOptions("receipt-qr", 15, pdf.GetY(), 30, 30, false, opts, 0, "")
		pdf.SetXY(50, pdf.GetY()+12)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 6, "Scan to view this receipt online", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

func mailReceipt(to, body, sessionID string, pdf []byte) error {
	return notify.SendEmail(to, "Your Fast Breakfast Receipt", body, notify.Attachment{
		Filename:    "receipt-" + sessionID + ".pdf",
		ContentType: "application/pdf",
		Data:        pdf,
	})
}
