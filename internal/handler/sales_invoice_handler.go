package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/apidocs"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/apperr"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/invoicepdf"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/model"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/pkg/logger"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	invoicePrefix  = "INV-"
	invoiceWidth   = 6
	invoiceEntity  = "Sales invoice"
	invoicesTag    = "sales-invoices"
	dateLayout     = "2006-01-02"
	invoiceBaseURL = "/sales-invoices"
)

type invoiceItemRequest struct {
	ProductID    *uint           `json:"product_id"`
	ItemDetailID *uint           `json:"item_detail_id"`
	Description  string          `json:"description"`
	Quantity     int             `json:"quantity"`
	Weight       decimal.Decimal `json:"weight"`
	Rate         decimal.Decimal `json:"rate"`
	MakingCharge decimal.Decimal `json:"making_charge"`
	TaxPercent   decimal.Decimal `json:"tax_percent"`
}

type adjustmentRequest struct {
	AdjustmentType string          `json:"adjustment_type"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
}

type paymentRequest struct {
	PaymentMode string          `json:"payment_mode"`
	Amount      decimal.Decimal `json:"amount"`
	ReferenceNo string          `json:"reference_no"`
	PaidAt      *time.Time      `json:"paid_at"`
}

type invoiceRequest struct {
	CustomerID  uint                 `json:"customer_id"`
	BranchID    *uint                `json:"branch_id"`
	EmployeeID  *uint                `json:"employee_id"`
	Status      string               `json:"status"`
	InvoiceDate *time.Time           `json:"invoice_date"`
	Remarks     string               `json:"remarks"`
	Items       []invoiceItemRequest `json:"items"`
	Adjustments []adjustmentRequest  `json:"adjustments"`
	Payments    []paymentRequest     `json:"payments"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// invoiceListRow is one bill joined with its customer.
type invoiceListRow struct {
	ID            uint            `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	CustomerID    uint            `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	BranchID      *uint           `json:"branch_id"`
	Status        string          `json:"status"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

type statusSummary struct {
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type invoiceSummary struct {
	Total      int64                    `json:"total"`
	GrandTotal decimal.Decimal          `json:"grand_total"`
	ByStatus   map[string]statusSummary `json:"by_status"`
}

type invoiceList struct {
	Invoices []invoiceListRow `json:"invoices"`
	Summary  invoiceSummary   `json:"summary"`
}

func (h *Handler) registerSalesInvoices(api *echo.Group) {
	g := api.Group(invoiceBaseURL)
	g.POST("", h.CreateSalesInvoice)
	g.GET("", h.ListSalesInvoices)
	g.GET("/status-options", statusOptions(model.InvoiceStatuses))
	g.GET("/:id", h.GetSalesInvoice)
	g.GET("/:id/pdf", h.SalesInvoicePDF)
	g.PUT("/:id/status", h.UpdateSalesInvoiceStatus)
	g.POST("/:id/payments", h.AddSalesInvoicePayment)
	g.DELETE("/:id", h.DeleteSalesInvoice)

	bill := apidocs.SchemaOf(model.SalesInvoiceBill{})
	idParam := []apidocs.Param{{Name: "id", In: "path", Type: "integer", Required: true}}
	listParams := []apidocs.Param{
		{Name: "search", In: "query", Type: "string", Description: "Invoice number or customer name"},
		{Name: "status", In: "query", Type: "string"},
		{Name: "customer_id", In: "query", Type: "integer"},
		{Name: "branch_id", In: "query", Type: "integer"},
		{Name: "from", In: "query", Type: "string", Description: "Invoice date from (YYYY-MM-DD)"},
		{Name: "to", In: "query", Type: "string", Description: "Invoice date to, inclusive (YYYY-MM-DD)"},
	}
	for _, op := range []apidocs.Operation{
		{Method: http.MethodPost, Path: invoiceBaseURL, Summary: "Create a sales invoice", Body: apidocs.SchemaOf(invoiceRequest{}), Status: http.StatusCreated, Response: bill},
		{Method: http.MethodGet, Path: invoiceBaseURL, Summary: "List sales invoices with a status summary", Params: listParams, Response: apidocs.SchemaOf(invoiceList{})},
		{Method: http.MethodGet, Path: invoiceBaseURL + "/{id}", Summary: "Get a sales invoice with items, adjustments and payments", Params: idParam, Response: bill},
		{Method: http.MethodGet, Path: invoiceBaseURL + "/{id}/pdf", Summary: "Printable invoice", Params: idParam, ContentType: "application/pdf"},
		{Method: http.MethodPut, Path: invoiceBaseURL + "/{id}/status", Summary: "Change invoice status", Params: idParam, Body: apidocs.SchemaOf(statusRequest{}), Response: bill},
		{Method: http.MethodPost, Path: invoiceBaseURL + "/{id}/payments", Summary: "Record a payment", Params: idParam, Body: apidocs.SchemaOf(paymentRequest{}), Status: http.StatusCreated, Response: bill},
		{Method: http.MethodDelete, Path: invoiceBaseURL + "/{id}", Summary: "Delete a sales invoice", Params: idParam, Status: http.StatusNoContent},
	} {
		op.Tag = invoicesTag
		h.docs.AddOperation(op)
	}
	h.docs.AddOperation(statusOptionsDoc(invoiceBaseURL+"/status-options", invoicesTag))
}

// CreateSalesInvoice stores a bill with its items, adjustments and payments in one transaction.
func (h *Handler) CreateSalesInvoice(c echo.Context) error {
	log := logger.FromContext(c)

	var req invoiceRequest
	if err := c.Bind(&req); err != nil {
		return h.handleError(c, apperr.InvalidInput("Invalid request body: %v", err))
	}

	var missing []string
	if req.CustomerID == 0 {
		missing = append(missing, "customer_id")
	}
	if len(req.Items) == 0 {
		missing = append(missing, "items")
	}
	if len(missing) > 0 {
		return h.handleError(c, apperr.RequiredFields(missing...))
	}

	if req.Status == "" {
		req.Status = model.InvoiceStatusOnHold
	}
	if !model.IsInvoiceStatus(req.Status) {
		return h.handleError(c, apperr.InvalidInput("Invalid status: %s", req.Status))
	}

	bill := model.SalesInvoiceBill{
		CustomerID: req.CustomerID,
		BranchID:   req.BranchID,
		EmployeeID: req.EmployeeID,
		Status:     req.Status,
		Remarks:    req.Remarks,
	}
	if req.InvoiceDate != nil {
		bill.InvoiceDate = req.InvoiceDate.UTC()
	} else {
		bill.InvoiceDate = h.db.NowFunc()
	}

	for i, item := range req.Items {
		if item.Rate.IsNegative() || item.Weight.IsNegative() || item.MakingCharge.IsNegative() || item.TaxPercent.IsNegative() {
			return h.handleError(c, apperr.InvalidInput("items[%d] must not contain negative amounts", i))
		}
		bill.Items = append(bill.Items, model.SalesInvoiceItem{
			ProductID:    item.ProductID,
			ItemDetailID: item.ItemDetailID,
			Description:  item.Description,
			Quantity:     item.Quantity,
			Weight:       item.Weight,
			Rate:         item.Rate,
			MakingCharge: item.MakingCharge,
			TaxPercent:   item.TaxPercent,
		})
	}
	for i, adj := range req.Adjustments {
		if adj.Amount.IsNegative() {
			return h.handleError(c, apperr.InvalidInput("adjustments[%d].amount must not be negative", i))
		}
		bill.Adjustments = append(bill.Adjustments, model.SalesInvoiceAdjustment{
			AdjustmentType: adj.AdjustmentType,
			Description:    adj.Description,
			Amount:         adj.Amount,
		})
	}
	for i, p := range req.Payments {
		if !p.Amount.IsPositive() {
			return h.handleError(c, apperr.InvalidInput("payments[%d].amount must be positive", i))
		}
		bill.Payments = append(bill.Payments, newPayment(p, bill.InvoiceDate))
	}

	computeTotals(&bill)
	if bill.GrandTotal.IsNegative() {
		return h.handleError(c, apperr.InvalidInput("Adjustments must not exceed the invoice total"))
	}
	if bill.BalanceAmount.IsNegative() {
		return h.handleError(c, apperr.InvalidInput("Payments must not exceed the invoice total"))
	}
	if len(bill.Payments) > 0 {
		bill.Status = statusAfterPayment(&bill)
	}

	defer prometheus.TrackDBOperation("create_invoice")(time.Now())
	err := withCodeRetry(func() error {
		return h.db.WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
			return h.insertInvoice(tx, &bill)
		})
	})
	if err != nil {
		return h.handleError(c, err)
	}

	prometheus.RecordEntityOperation(invoicesTag, "create")
	log.Info("Sales invoice created",
		zap.Uint("invoice_id", bill.ID),
		zap.String("invoice_number", bill.InvoiceNumber),
		zap.String("status", bill.Status),
		zap.String("grand_total", bill.GrandTotal.StringFixed(2)))
	return respond(c, http.StatusCreated, invoiceEntity+" created successfully", bill)
}

// insertInvoice validates references, numbers the bill and stores it with its children.
func (h *Handler) insertInvoice(tx *gorm.DB, bill *model.SalesInvoiceBill) error {
	bill.ID = 0
	refs := map[string]interface{}{"customer_id": bill.CustomerID}
	if bill.BranchID != nil {
		refs["branch_id"] = *bill.BranchID
	}
	if bill.EmployeeID != nil {
		refs["employee_id"] = *bill.EmployeeID
	}
	if err := checkReferences(tx, []Reference{
		{Field: "customer_id", Table: "customers"},
		branchesRef,
		{Field: "employee_id", Table: "employees"},
	}, refs); err != nil {
		return err
	}
	for _, item := range bill.Items {
		if item.ProductID == nil {
			continue
		}
		if err := checkReferences(tx, []Reference{productsRef}, map[string]interface{}{"product_id": *item.ProductID}); err != nil {
			return err
		}
	}

	number, err := nextCode(tx, "sales_invoice_bills", "invoice_number", invoicePrefix, invoiceWidth)
	if err != nil {
		return err
	}
	bill.InvoiceNumber = number

	if err := tx.Omit("Items", "Adjustments", "Payments").Create(bill).Error; err != nil {
		return err
	}
	for i := range bill.Items {
		bill.Items[i].InvoiceID = bill.ID
	}
	for i := range bill.Adjustments {
		bill.Adjustments[i].InvoiceID = bill.ID
	}
	for i := range bill.Payments {
		bill.Payments[i].InvoiceID = bill.ID
	}
	if err := tx.Create(&bill.Items).Error; err != nil {
		return err
	}
	if len(bill.Adjustments) > 0 {
		if err := tx.Create(&bill.Adjustments).Error; err != nil {
			return err
		}
	}
	if len(bill.Payments) > 0 {
		if err := tx.Create(&bill.Payments).Error; err != nil {
			return err
		}
	}
	return nil
}

func newPayment(p paymentRequest, fallback time.Time) model.Payment {
	paidAt := fallback
	if p.PaidAt != nil {
		paidAt = p.PaidAt.UTC()
	}
	mode := p.PaymentMode
	if mode == "" {
		mode = "Cash"
	}
	return model.Payment{
		PaymentMode: mode,
		Amount:      p.Amount,
		ReferenceNo: p.ReferenceNo,
		PaidAt:      &paidAt,
	}
}

// ListSalesInvoices returns bills joined with customer names and a per-status summary.
func (h *Handler) ListSalesInvoices(c echo.Context) error {
	defer prometheus.TrackDBOperation("list_invoices")(time.Now())

	db := h.db.WithContext(c.Request().Context())
	base := db.Table("sales_invoice_bills AS b").
		Joins("LEFT JOIN customers AS c ON c.id = b.customer_id").
		Where("b.deleted_at IS NULL")

	if search := strings.TrimSpace(c.QueryParam("search")); search != "" {
		base = applySearch(db, base, []string{"b.invoice_number", "c.customer_name"}, search)
	}
	if status := c.QueryParam("status"); status != "" {
		base = base.Where("b.status = ?", status)
	}
	for _, f := range []string{"customer_id", "branch_id"} {
		if v := c.QueryParam(f); v != "" {
			base = base.Where("b."+f+" = ?", v)
		}
	}
	if v := c.QueryParam("from"); v != "" {
		from, err := time.Parse(dateLayout, v)
		if err != nil {
			return h.handleError(c, apperr.InvalidInput("from must be a date in YYYY-MM-DD format"))
		}
		base = base.Where("b.invoice_date >= ?", from)
	}
	if v := c.QueryParam("to"); v != "" {
		to, err := time.Parse(dateLayout, v)
		if err != nil {
			return h.handleError(c, apperr.InvalidInput("to must be a date in YYYY-MM-DD format"))
		}
		base = base.Where("b.invoice_date < ?", to.AddDate(0, 0, 1))
	}
	base = base.Session(&gorm.Session{})

	rows := []invoiceListRow{}
	err := base.
		Select("b.id, b.invoice_number, b.invoice_date, b.customer_id, c.customer_name, b.branch_id, b.status, b.grand_total, b.paid_amount, b.balance_amount, b.created_at").
		Order("b.id DESC").
		Scan(&rows).Error
	if err != nil {
		return h.handleError(c, err)
	}

	var groups []struct {
		Status string
		Count  int64
		Amount decimal.Decimal
	}
	err = base.
		Select("b.status AS status, COUNT(*) AS count, COALESCE(SUM(b.grand_total), 0) AS amount").
		Group("b.status").
		Scan(&groups).Error
	if err != nil {
		return h.handleError(c, err)
	}

	summary := invoiceSummary{GrandTotal: decimal.Zero, ByStatus: make(map[string]statusSummary)}
	for _, s := range model.InvoiceStatuses {
		summary.ByStatus[s] = statusSummary{Amount: decimal.Zero}
	}
	for _, g := range groups {
		summary.ByStatus[g.Status] = statusSummary{Count: g.Count, Amount: g.Amount}
		summary.Total += g.Count
		summary.GrandTotal = summary.GrandTotal.Add(g.Amount)
	}

	return respond(c, http.StatusOK, invoiceEntity+" list fetched successfully", invoiceList{Invoices: rows, Summary: summary})
}

func (h *Handler) loadInvoice(db *gorm.DB, id uint, withChildren bool) (*model.SalesInvoiceBill, error) {
	query := db
	if withChildren {
		query = query.
			Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
			Preload("Adjustments", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
			Preload("Payments", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") })
	}
	var bill model.SalesInvoiceBill
	if err := query.First(&bill, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(invoiceEntity)
		}
		return nil, err
	}
	return &bill, nil
}

// GetSalesInvoice returns a bill with its items, adjustments and payments.
func (h *Handler) GetSalesInvoice(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return h.handleError(c, err)
	}
	bill, err := h.loadInvoice(h.db.WithContext(c.Request().Context()), id, true)
	if err != nil {
		return h.handleError(c, err)
	}
	return respond(c, http.StatusOK, invoiceEntity+" fetched successfully", bill)
}

// UpdateSalesInvoiceStatus moves a bill to another status.
func (h *Handler) UpdateSalesInvoiceStatus(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return h.handleError(c, err)
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return h.handleError(c, apperr.InvalidInput("Invalid request body"))
	}
	if strings.TrimSpace(req.Status) == "" {
		return h.handleError(c, apperr.RequiredFields("status"))
	}
	if !model.IsInvoiceStatus(req.Status) {
		return h.handleError(c, apperr.InvalidInput("Invalid status: %s", req.Status))
	}

	db := h.db.WithContext(c.Request().Context())
	bill, err := h.loadInvoice(db, id, false)
	if err != nil {
		return h.handleError(c, err)
	}
	previous := bill.Status
	if err := db.Model(bill).Update("status", req.Status).Error; err != nil {
		return h.handleError(c, err)
	}
	bill.Status = req.Status

	prometheus.RecordEntityOperation(invoicesTag, "status")
	log.Info("Sales invoice status changed",
		zap.Uint("invoice_id", id),
		zap.String("from", previous),
		zap.String("to", req.Status))
	return respond(c, http.StatusOK, invoiceEntity+" status updated successfully", bill)
}

// AddSalesInvoicePayment records a payment and recomputes paid and balance amounts.
func (h *Handler) AddSalesInvoicePayment(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return h.handleError(c, err)
	}
	var req paymentRequest
	if err := c.Bind(&req); err != nil {
		return h.handleError(c, apperr.InvalidInput("Invalid request body"))
	}
	if !req.Amount.IsPositive() {
		return h.handleError(c, apperr.InvalidInput("amount must be positive"))
	}

	var bill *model.SalesInvoiceBill
	err = h.db.WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
		current, err := h.loadInvoice(tx, id, false)
		if err != nil {
			return err
		}
		if current.Status == model.InvoiceStatusCancelled {
			return apperr.InvalidInput("Cannot add a payment to a cancelled invoice")
		}
		if req.Amount.GreaterThan(current.BalanceAmount) {
			return apperr.InvalidInput("Payment of %s exceeds the balance of %s",
				req.Amount.StringFixed(2), current.BalanceAmount.StringFixed(2))
		}

		payment := newPayment(req, tx.NowFunc())
		payment.InvoiceID = id
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		if bill, err = h.loadInvoice(tx, id, true); err != nil {
			return err
		}
		computeTotals(bill)
		bill.Status = statusAfterPayment(bill)
		return tx.Model(bill).Select("paid_amount", "balance_amount", "status").Updates(map[string]interface{}{
			"paid_amount":    bill.PaidAmount,
			"balance_amount": bill.BalanceAmount,
			"status":         bill.Status,
		}).Error
	})
	if err != nil {
		return h.handleError(c, err)
	}

	prometheus.RecordEntityOperation(invoicesTag, "payment")
	log.Info("Payment recorded",
		zap.Uint("invoice_id", id),
		zap.String("amount", req.Amount.StringFixed(2)),
		zap.String("status", bill.Status))
	return respond(c, http.StatusCreated, "Payment recorded successfully", bill)
}

// DeleteSalesInvoice soft-deletes the bill. Child rows are left in place.
func (h *Handler) DeleteSalesInvoice(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return h.handleError(c, err)
	}

	result := h.db.WithContext(c.Request().Context()).Delete(&model.SalesInvoiceBill{}, id)
	if result.Error != nil {
		return h.handleError(c, result.Error)
	}
	if result.RowsAffected == 0 {
		return h.handleError(c, apperr.NotFound(invoiceEntity))
	}

	prometheus.RecordEntityOperation(invoicesTag, "delete")
	logger.FromContext(c).Info("Sales invoice deleted", zap.Uint("invoice_id", id))
	return c.NoContent(http.StatusNoContent)
}

// SalesInvoicePDF renders the bill as a PDF document.
func (h *Handler) SalesInvoicePDF(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return h.handleError(c, err)
	}

	db := h.db.WithContext(c.Request().Context())
	bill, err := h.loadInvoice(db, id, true)
	if err != nil {
		return h.handleError(c, err)
	}

	doc := invoicepdf.Document{Bill: *bill}
	var names []string
	if err := db.Unscoped().Model(&model.Customer{}).Where("id = ?", bill.CustomerID).Pluck("customer_name", &names).Error; err != nil {
		return h.handleError(c, err)
	}
	if len(names) > 0 {
		doc.CustomerName = names[0]
	}
	if bill.BranchID != nil {
		names = nil
		if err := db.Unscoped().Model(&model.Branch{}).Where("id = ?", *bill.BranchID).Pluck("branch_name", &names).Error; err != nil {
			return h.handleError(c, err)
		}
		if len(names) > 0 {
			doc.BranchName = names[0]
		}
	}

	pdf, err := invoicepdf.Render(doc)
	if err != nil {
		return h.handleError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", bill.InvoiceNumber+".pdf"))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
