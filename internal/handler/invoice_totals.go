package handler

import (
	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// computeItem prices one line: weight × rate + making charge, or
// quantity × rate for items sold by count, plus tax on that amount.
func computeItem(item *model.SalesInvoiceItem) {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	var base decimal.Decimal
	if item.Weight.IsPositive() {
		base = item.Weight.Mul(item.Rate)
	} else {
		base = decimal.NewFromInt(int64(item.Quantity)).Mul(item.Rate)
	}
	item.Amount = base.Add(item.MakingCharge).Round(2)
	item.TaxAmount = item.Amount.Mul(item.TaxPercent).Div(hundred).Round(2)
}

// computeTotals fills every derived amount of the bill from its children.
func computeTotals(bill *model.SalesInvoiceBill) {
	subtotal, tax, adjustments, paid := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero

	for i := range bill.Items {
		computeItem(&bill.Items[i])
		subtotal = subtotal.Add(bill.Items[i].Amount)
		tax = tax.Add(bill.Items[i].TaxAmount)
	}
	for _, adj := range bill.Adjustments {
		adjustments = adjustments.Add(adj.Amount)
	}
	for _, p := range bill.Payments {
		paid = paid.Add(p.Amount)
	}

	bill.Subtotal = subtotal
	bill.TaxTotal = tax
	bill.AdjustmentTotal = adjustments.Round(2)
	bill.GrandTotal = subtotal.Add(tax).Sub(adjustments).Round(2)
	bill.PaidAmount = paid.Round(2)
	bill.BalanceAmount = bill.GrandTotal.Sub(bill.PaidAmount)
}

// statusAfterPayment moves a bill to Paid or Partially Paid once money is received.
func statusAfterPayment(bill *model.SalesInvoiceBill) string {
	switch {
	case bill.Status == model.InvoiceStatusCancelled:
		return bill.Status
	case bill.PaidAmount.IsPositive() && bill.BalanceAmount.LessThanOrEqual(decimal.Zero):
		return model.InvoiceStatusPaid
	case bill.PaidAmount.IsPositive():
		return model.InvoiceStatusPartiallyPaid
	}
	return bill.Status
}
