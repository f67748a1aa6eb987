package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/job"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func seedCustomer(t *testing.T, s *testServer, name, mobile string) model.Customer {
	t.Helper()
	var customer model.Customer
	s.create("/api/v1/customers", map[string]interface{}{"customer_name": name, "mobile": mobile}, &customer)
	return customer
}

func TestCreateSalesInvoice(t *testing.T) {
	s := newTestServer(t)
	customer := seedCustomer(t, s, "Priya", "9800000001")

	var bill model.SalesInvoiceBill
	s.create("/api/v1/sales-invoices", map[string]interface{}{
		"customer_id":  customer.ID,
		"invoice_date": "2024-05-01T10:00:00Z",
		"items": []map[string]interface{}{
			{"description": "Gold chain", "weight": "10.5", "rate": "6000", "making_charge": "500", "tax_percent": "3"},
			{"description": "Gift box", "quantity": 2, "rate": "250"},
		},
		"adjustments": []map[string]interface{}{
			{"adjustment_type": "Old gold", "amount": "1000"},
		},
	}, &bill)

	assert.Equal(t, "INV-000001", bill.InvoiceNumber)
	assert.Equal(t, model.InvoiceStatusOnHold, bill.Status)
	assertDecimal(t, "64000", bill.Subtotal, "subtotal")
	assertDecimal(t, "1905", bill.TaxTotal, "tax_total")
	assertDecimal(t, "1000", bill.AdjustmentTotal, "adjustment_total")
	assertDecimal(t, "64905", bill.GrandTotal, "grand_total")
	assertDecimal(t, "0", bill.PaidAmount, "paid_amount")
	assertDecimal(t, "64905", bill.BalanceAmount, "balance_amount")
	require.Len(t, bill.Items, 2)
	assertDecimal(t, "63500", bill.Items[0].Amount, "items[0].amount")
	assert.Equal(t, 1, bill.Items[0].Quantity)
	assertDecimal(t, "500", bill.Items[1].Amount, "items[1].amount")

	var got model.SalesInvoiceBill
	decodeData(t, s.do(http.MethodGet, fmt.Sprintf("/api/v1/sales-invoices/%d", bill.ID), nil), &got)
	assert.Len(t, got.Items, 2)
	assert.Len(t, got.Adjustments, 1)
	assert.Empty(t, got.Payments)
	assert.Equal(t, bill.ID, got.Items[0].InvoiceID)

	var next model.SalesInvoiceBill
	s.create("/api/v1/sales-invoices", map[string]interface{}{
		"customer_id": customer.ID,
		"status":      model.InvoiceStatusPending,
		"items":       []map[string]interface{}{{"rate": "1000"}},
		"payments":    []map[string]interface{}{{"amount": "400"}},
	}, &next)
	assert.Equal(t, "INV-000002", next.InvoiceNumber)
	assert.Equal(t, model.InvoiceStatusPartiallyPaid, next.Status)
	assertDecimal(t, "600", next.BalanceAmount, "balance_amount")
	require.Len(t, next.Payments, 1)
	assert.Equal(t, "Cash", next.Payments[0].PaymentMode)
}

func TestCreateSalesInvoiceValidation(t *testing.T) {
	s := newTestServer(t)
	customer := seedCustomer(t, s, "Priya", "9800000001")

	rec := s.do(http.MethodPost, "/api/v1/sales-invoices", map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var data struct {
		Fields []string `json:"fields"`
	}
	decodeData(t, rec, &data)
	assert.Equal(t, []string{"customer_id", "items"}, data.Fields)

	cases := map[string]map[string]interface{}{
		"unknown customer": {"customer_id": 999, "items": []map[string]interface{}{{"rate": "1"}}},
		"unknown status":   {"customer_id": customer.ID, "status": "Draft", "items": []map[string]interface{}{{"rate": "1"}}},
		"negative rate":    {"customer_id": customer.ID, "items": []map[string]interface{}{{"rate": "-1"}}},
		"unknown product":  {"customer_id": customer.ID, "items": []map[string]interface{}{{"rate": "1", "product_id": 77}}},
		"zero payment":     {"customer_id": customer.ID, "items": []map[string]interface{}{{"rate": "1"}}, "payments": []map[string]interface{}{{"amount": "0"}}},
	}
	oneItem := []map[string]interface{}{{"rate": "100"}}
	cases["negative adjustment"] = map[string]interface{}{
		"customer_id": customer.ID, "items": oneItem, "adjustments": []map[string]interface{}{{"amount": "-50"}},
	}
	cases["adjustment above total"] = map[string]interface{}{
		"customer_id": customer.ID, "items": oneItem, "adjustments": []map[string]interface{}{{"amount": "150"}},
	}
	cases["overpayment"] = map[string]interface{}{
		"customer_id": customer.ID, "items": oneItem, "payments": []map[string]interface{}{{"amount": "60"}, {"amount": "60"}},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/sales-invoices", body).Code)
		})
	}

	var count int64
	require.NoError(t, s.db.Unscoped().Model(&model.SalesInvoiceBill{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSalesInvoicePayments(t *testing.T) {
	s := newTestServer(t)
	customer := seedCustomer(t, s, "Priya", "9800000001")

	var bill model.SalesInvoiceBill
	s.create("/api/v1/sales-invoices", map[string]interface{}{
		"customer_id": customer.ID,
		"items":       []map[string]interface{}{{"quantity": 2, "rate": "5000"}},
	}, &bill)
	paymentsPath := fmt.Sprintf("/api/v1/sales-invoices/%d/payments", bill.ID)

	var updated model.SalesInvoiceBill
	rec := s.do(http.MethodPost, paymentsPath, map[string]interface{}{"amount": "4000", "payment_mode": "UPI"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decodeData(t, rec, &updated)
	assert.Equal(t, model.InvoiceStatusPartiallyPaid, updated.Status)
	assertDecimal(t, "4000", updated.PaidAmount, "paid_amount")
	assertDecimal(t, "6000", updated.BalanceAmount, "balance_amount")

	rec = s.do(http.MethodPost, paymentsPath, map[string]interface{}{"amount": "6000.01"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec).Message, "exceeds the balance")

	rec = s.do(http.MethodPost, paymentsPath, map[string]interface{}{"amount": "6000"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decodeData(t, rec, &updated)
	assert.Equal(t, model.InvoiceStatusPaid, updated.Status)
	assertDecimal(t, "0", updated.BalanceAmount, "balance_amount")
	assert.Len(t, updated.Payments, 2)

	rec = s.do(http.MethodPost, paymentsPath, map[string]interface{}{"amount": "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "a settled invoice takes no further payments")

	var stored model.SalesInvoiceBill
	require.NoError(t, s.db.First(&stored, bill.ID).Error)
	assert.Equal(t, model.InvoiceStatusPaid, stored.Status)
	assertDecimal(t, "10000", stored.PaidAmount, "stored paid_amount")

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, paymentsPath, map[string]interface{}{"amount": "-5"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/v1/sales-invoices/999/payments", map[string]interface{}{"amount": "5"}).Code)
}

func TestSalesInvoiceStatus(t *testing.T) {
	s := newTestServer(t)
	customer := seedCustomer(t, s, "Priya", "9800000001")

	var bill model.SalesInvoiceBill
	s.create("/api/v1/sales-invoices", map[string]interface{}{
		"customer_id": customer.ID,
		"items":       []map[string]interface{}{{"rate": "700"}},
	}, &bill)
	statusPath := fmt.Sprintf("/api/v1/sales-invoices/%d/status", bill.ID)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, statusPath, map[string]string{"status": "Archived"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, statusPath, map[string]string{}).Code)

	var updated model.SalesInvoiceBill
	rec := s.do(http.MethodPut, statusPath, map[string]string{"status": model.InvoiceStatusCancelled})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, rec, &updated)
	assert.Equal(t, model.InvoiceStatusCancelled, updated.Status)

	rec = s.do(http.MethodPost, fmt.Sprintf("/api/v1/sales-invoices/%d/payments", bill.ID), map[string]interface{}{"amount": "100"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var payments int64
	require.NoError(t, s.db.Model(&model.Payment{}).Where("invoice_id = ?", bill.ID).Count(&payments).Error)
	assert.Zero(t, payments)

	var options []struct {
		Value string `json:"value"`
	}
	decodeData(t, s.do(http.MethodGet, "/api/v1/sales-invoices/status-options", nil), &options)
	assert.Len(t, options, len(model.InvoiceStatuses))
}

func TestListSalesInvoices(t *testing.T) {
	s := newTestServer(t)
	priya := seedCustomer(t, s, "Priya", "9800000001")
	arjun := seedCustomer(t, s, "Arjun", "9800000002")

	var first, second, third model.SalesInvoiceBill
	s.create("/api/v1/sales-invoices", map[string]interface{}{
		"customer_id": priya.ID, "invoice_date": "2024-05-01T10:00:00Z",
		"items": []map[string]interface{}{{"rate": "1000"}},
	}, &first)
	s.create("/api/v1/sales-invoices", map[string]interface{}{
		"customer_id": arjun.ID, "invoice_date": "2024-06-15T10:00:00Z", "status": model.InvoiceStatusPending,
		"items": []map[string]interface{}{{"rate": "2500"}},
	}, &second)
	s.create("/api/v1/sales-invoices", map[string]interface{}{
		"customer_id": arjun.ID, "invoice_date": "2024-06-20T10:00:00Z", "status": model.InvoiceStatusPending,
		"items": []map[string]interface{}{{"rate": "500"}},
	}, &third)
	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, fmt.Sprintf("/api/v1/sales-invoices/%d", third.ID), nil).Code)

	var list invoiceList
	decodeData(t, s.do(http.MethodGet, "/api/v1/sales-invoices", nil), &list)
	require.Len(t, list.Invoices, 2)
	assert.Equal(t, second.ID, list.Invoices[0].ID)
	assert.Equal(t, "Arjun", list.Invoices[0].CustomerName)
	assert.Equal(t, int64(2), list.Summary.Total)
	assertDecimal(t, "3500", list.Summary.GrandTotal, "summary grand_total")
	assert.Equal(t, int64(1), list.Summary.ByStatus[model.InvoiceStatusOnHold].Count)
	assertDecimal(t, "2500", list.Summary.ByStatus[model.InvoiceStatusPending].Amount, "pending amount")
	assert.Zero(t, list.Summary.ByStatus[model.InvoiceStatusPaid].Count)

	decodeData(t, s.do(http.MethodGet, "/api/v1/sales-invoices?search=priya", nil), &list)
	require.Len(t, list.Invoices, 1)
	assert.Equal(t, first.ID, list.Invoices[0].ID)

	decodeData(t, s.do(http.MethodGet, "/api/v1/sales-invoices?search=INV-000002", nil), &list)
	require.Len(t, list.Invoices, 1)
	assert.Equal(t, second.ID, list.Invoices[0].ID)

	decodeData(t, s.do(http.MethodGet, "/api/v1/sales-invoices?status=On+Hold", nil), &list)
	require.Len(t, list.Invoices, 1)
	assert.Equal(t, first.ID, list.Invoices[0].ID)

	decodeData(t, s.do(http.MethodGet, fmt.Sprintf("/api/v1/sales-invoices?customer_id=%d", arjun.ID), nil), &list)
	require.Len(t, list.Invoices, 1)

	decodeData(t, s.do(http.MethodGet, "/api/v1/sales-invoices?from=2024-05-01&to=2024-05-01", nil), &list)
	require.Len(t, list.Invoices, 1)
	assert.Equal(t, first.ID, list.Invoices[0].ID)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/sales-invoices?from=01-05-2024", nil).Code)
}

func TestDeleteSalesInvoice(t *testing.T) {
	s := newTestServer(t)
	customer := seedCustomer(t, s, "Priya", "9800000001")

	var bill model.SalesInvoiceBill
	s.create("/api/v1/sales-invoices", map[string]interface{}{
		"customer_id": customer.ID,
		"items":       []map[string]interface{}{{"rate": "700"}},
	}, &bill)
	path := fmt.Sprintf("/api/v1/sales-invoices/%d", bill.ID)

	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodDelete, "/api/v1/sales-invoices/x", nil).Code)

	var items int64
	require.NoError(t, s.db.Model(&model.SalesInvoiceItem{}).Where("invoice_id = ?", bill.ID).Count(&items).Error)
	assert.Equal(t, int64(1), items)
}

func TestSalesInvoicePDF(t *testing.T) {
	s := newTestServer(t)
	customer := seedCustomer(t, s, "Priya", "9800000001")

	var bill model.SalesInvoiceBill
	s.create("/api/v1/sales-invoices", map[string]interface{}{
		"customer_id": customer.ID,
		"items":       []map[string]interface{}{{"description": "Ring", "weight": "4", "rate": "6000", "tax_percent": "3"}},
	}, &bill)

	rec := s.do(http.MethodGet, fmt.Sprintf("/api/v1/sales-invoices/%d/pdf", bill.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "INV-000001.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/sales-invoices/999/pdf", nil).Code)
}

func TestRunOnHoldCleanupNow(t *testing.T) {
	s := newTestServer(t)
	customer := seedCustomer(t, s, "Priya", "9800000001")

	var stale, fresh model.SalesInvoiceBill
	s.create("/api/v1/sales-invoices", map[string]interface{}{
		"customer_id": customer.ID,
		"items":       []map[string]interface{}{{"rate": "700"}},
		"payments":    []map[string]interface{}{{"amount": "100"}},
	}, &stale)
	s.create("/api/v1/sales-invoices", map[string]interface{}{
		"customer_id": customer.ID,
		"items":       []map[string]interface{}{{"rate": "900"}},
	}, &fresh)

	// A payment moved the first bill out of On Hold; put it back to make it stale.
	require.NoError(t, s.db.Model(&model.SalesInvoiceBill{}).Where("id = ?", stale.ID).UpdateColumns(map[string]interface{}{
		"status":     model.InvoiceStatusOnHold,
		"created_at": time.Now().UTC().Add(-25 * time.Hour),
	}).Error)

	var result job.Result
	rec := s.do(http.MethodPost, "/api/v1/jobs/on-hold-invoice-cleanup/run", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, rec, &result)
	assert.Equal(t, []uint{stale.ID}, result.InvoiceIDs)
	assert.Equal(t, job.Deleted{Bills: 1, Items: 1, Payments: 1}, result.Deleted)

	var remaining int64
	require.NoError(t, s.db.Unscoped().Model(&model.SalesInvoiceBill{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, fmt.Sprintf("/api/v1/sales-invoices/%d", fresh.ID), nil).Code)
}
