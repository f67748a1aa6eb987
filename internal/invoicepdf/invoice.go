package invoicepdf

import (
	"bytes"
	"fmt"

	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/model"
	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
)

// Document is everything printed on an invoice.
type Document struct {
	Bill         model.SalesInvoiceBill
	CustomerName string
	BranchName   string
}

var itemColumns = []struct {
	title string
	width float64
	align string
}{
	{"#", 10, "C"},
	{"Description", 70, "L"},
	{"Qty", 15, "R"},
	{"Weight", 20, "R"},
	{"Rate", 25, "R"},
	{"Tax", 20, "R"},
	{"Amount", 30, "R"},
}

// Render returns an A4 PDF for the invoice with a QR code of its number.
func Render(doc Document) ([]byte, error) {
	bill := doc.Bill

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	qrPng, err := qrcode.Encode(bill.InvoiceNumber, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("invoice_qr", imgOptions, bytes.NewReader(qrPng))
	pdf.ImageOptions("invoice_qr", 170, 10, 30, 30, false, imgOptions, 0, "")

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(150, 10, "TAX INVOICE", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(150, 6, "Invoice No: "+bill.InvoiceNumber, "", 1, "L", false, 0, "")
	pdf.CellFormat(150, 6, "Date: "+bill.InvoiceDate.Format("02 Jan 2006"), "", 1, "L", false, 0, "")
	pdf.CellFormat(150, 6, "Status: "+bill.Status, "", 1, "L", false, 0, "")
	if doc.BranchName != "" {
		pdf.CellFormat(150, 6, "Branch: "+doc.BranchName, "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(150, 6, "Customer: "+doc.CustomerName, "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range itemColumns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for i, item := range bill.Items {
		values := []string{
			fmt.Sprintf("%d", i+1),
			item.Description,
			fmt.Sprintf("%d", item.Quantity),
			item.Weight.StringFixed(3),
			item.Rate.StringFixed(2),
			item.TaxAmount.StringFixed(2),
			item.Amount.Add(item.TaxAmount).StringFixed(2),
		}
		for j, col := range itemColumns {
			pdf.CellFormat(col.width, 6, values[j], "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	totals := [][2]string{
		{"Subtotal", bill.Subtotal.StringFixed(2)},
		{"Tax", bill.TaxTotal.StringFixed(2)},
	}
	for _, adj := range bill.Adjustments {
		label := adj.AdjustmentType
		if label == "" {
			label = "Adjustment"
		}
		totals = append(totals, [2]string{label, "-" + adj.Amount.StringFixed(2)})
	}
	totals = append(totals,
		[2]string{"Grand Total", bill.GrandTotal.StringFixed(2)},
		[2]string{"Paid", bill.PaidAmount.StringFixed(2)},
		[2]string{"Balance", bill.BalanceAmount.StringFixed(2)},
	)
	for _, row := range totals {
		pdf.CellFormat(150, 6, row[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, row[1], "", 1, "R", false, 0, "")
	}

	if bill.Remarks != "" {
		pdf.Ln(4)
		pdf.MultiCell(0, 5, "Remarks: "+bill.Remarks, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
