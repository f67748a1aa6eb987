package handler

import (
	"testing"

	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestComputeTotals(t *testing.T) {
	bill := model.SalesInvoiceBill{
		Items: []model.SalesInvoiceItem{
			{Weight: dec("10.5"), Rate: dec("6000"), MakingCharge: dec("1500"), TaxPercent: dec("3")},
			{Quantity: 2, Rate: dec("250"), TaxPercent: dec("18")},
		},
		Adjustments: []model.SalesInvoiceAdjustment{{Amount: dec("1000")}},
		Payments:    []model.Payment{{Amount: dec("20000")}},
	}

	computeTotals(&bill)

	// 10.5 × 6000 + 1500 = 64500, tax 1935; 2 × 250 = 500, tax 90
	assert.True(t, dec("64500").Equal(bill.Items[0].Amount))
	assert.True(t, dec("1935").Equal(bill.Items[0].TaxAmount))
	assert.Equal(t, 1, bill.Items[0].Quantity)
	assert.True(t, dec("500").Equal(bill.Items[1].Amount))
	assert.True(t, dec("90").Equal(bill.Items[1].TaxAmount))

	assert.True(t, dec("65000").Equal(bill.Subtotal))
	assert.True(t, dec("2025").Equal(bill.TaxTotal))
	assert.True(t, dec("1000").Equal(bill.AdjustmentTotal))
	assert.True(t, dec("66025").Equal(bill.GrandTotal))
	assert.True(t, dec("20000").Equal(bill.PaidAmount))
	assert.True(t, dec("46025").Equal(bill.BalanceAmount))
}

func TestStatusAfterPayment(t *testing.T) {
	bill := model.SalesInvoiceBill{Status: model.InvoiceStatusPending, GrandTotal: dec("100")}

	bill.PaidAmount, bill.BalanceAmount = dec("40"), dec("60")
	assert.Equal(t, model.InvoiceStatusPartiallyPaid, statusAfterPayment(&bill))

	bill.PaidAmount, bill.BalanceAmount = dec("100"), dec("0")
	assert.Equal(t, model.InvoiceStatusPaid, statusAfterPayment(&bill))

	bill.Status = model.InvoiceStatusCancelled
	assert.Equal(t, model.InvoiceStatusCancelled, statusAfterPayment(&bill))

	unpaid := model.SalesInvoiceBill{Status: model.InvoiceStatusOnHold}
	assert.Equal(t, model.InvoiceStatusOnHold, statusAfterPayment(&unpaid))
}
