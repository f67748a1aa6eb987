package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/apidocs"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/apperr"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/model"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/pkg/logger"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxPageSize = 100

// protectedKeys are never taken from a request body.
var protectedKeys = []string{"id", "created_at", "updated_at", "deleted_at"}

// Reference is a foreign key column that must point at a live row of Table.
type Reference struct {
	Field string
	Table string
}

// Resource configures the generic CRUD routes for one model.
type Resource[T model.Entity] struct {
	// Name is used in messages, e.g. "Material type".
	Name string
	Path string

	Required   []string
	Unique     []string
	Search     []string
	Filters    []string
	References []Reference
	// Label is the column returned by /dropdown. Empty disables the route.
	Label string
	// Defaults fill keys absent from a create body.
	Defaults map[string]interface{}
	// Prepare runs inside the write transaction after the body is applied.
	Prepare func(tx *gorm.DB, row *T, body map[string]interface{}) error
}

func (r Resource[T]) dropdownKey() string {
	return "dropdown:" + r.Path
}

// Option is one entry of a dropdown list.
type Option struct {
	ID    uint   `json:"id"`
	Label string `json:"label"`
}

type crud[T model.Entity] struct {
	h   *Handler
	res Resource[T]
}

// registerResource mounts the CRUD routes of res on g and documents them.
func registerResource[T model.Entity](h *Handler, g *echo.Group, res Resource[T]) *echo.Group {
	c := &crud[T]{h: h, res: res}

	rg := g.Group("/" + res.Path)
	rg.POST("", c.create)
	rg.GET("", c.list)
	if res.Label != "" {
		rg.GET("/dropdown", c.dropdown)
	}
	rg.GET("/:id", c.get)
	rg.PUT("/:id", c.update)
	rg.DELETE("/:id", c.delete)

	h.docs.AddResource(apidocs.Resource{
		Tag:      res.Path,
		Path:     res.Path,
		Schema:   apidocs.SchemaOf(new(T)),
		Required: res.Required,
		Filters:  res.Filters,
		Search:   len(res.Search) > 0,
		Dropdown: res.Label != "",
	})
	return rg
}

func (c *crud[T]) create(ctx echo.Context) error {
	log := logger.FromContext(ctx).With(zap.String("resource", c.res.Path))

	body, err := readBody(ctx)
	if err != nil {
		return c.h.handleError(ctx, err)
	}
	for key, value := range c.res.Defaults {
		if _, ok := body[key]; !ok {
			body[key] = value
		}
	}
	if missing := missingFields(body, c.res.Required, false); len(missing) > 0 {
		return c.h.handleError(ctx, apperr.RequiredFields(missing...))
	}

	var row T
	if err := applyBody(&row, body); err != nil {
		return c.h.handleError(ctx, err)
	}

	defer prometheus.TrackDBOperation("create")(time.Now())
	err = withCodeRetry(func() error {
		return c.h.db.WithContext(ctx.Request().Context()).Transaction(func(tx *gorm.DB) error {
			row = *new(T)
			if err := applyBody(&row, body); err != nil {
				return err
			}
			return c.insert(tx, &row, body)
		})
	})
	if err != nil {
		return c.h.handleError(ctx, err)
	}

	c.invalidate(ctx)
	prometheus.RecordEntityOperation(c.res.Path, "create")
	log.Info("Record created", zap.Uint("id", row.PrimaryKey()))
	return respond(ctx, http.StatusCreated, c.res.Name+" created successfully", row)
}

// insert validates row against the live rows and stores it.
func (c *crud[T]) insert(tx *gorm.DB, row *T, body map[string]interface{}) error {
	if c.res.Prepare != nil {
		if err := c.res.Prepare(tx, row, body); err != nil {
			return err
		}
	}
	values, err := toMap(*row)
	if err != nil {
		return err
	}
	if err := c.checkUnique(tx, values, c.res.Unique, 0); err != nil {
		return err
	}
	if err := checkReferences(tx, c.res.References, values); err != nil {
		return err
	}
	return tx.Create(row).Error
}

func (c *crud[T]) list(ctx echo.Context) error {
	log := logger.FromContext(ctx).With(zap.String("resource", c.res.Path))
	defer prometheus.TrackDBOperation("list")(time.Now())

	db := c.h.db.WithContext(ctx.Request().Context())
	query := db.Model(new(T))

	if search := strings.TrimSpace(ctx.QueryParam("search")); search != "" && len(c.res.Search) > 0 {
		query = applySearch(db, query, c.res.Search, search)
	}
	for _, f := range c.res.Filters {
		if v := ctx.QueryParam(f); v != "" {
			query = query.Where(f+" = ?", filterValue(v))
		}
	}

	page, limit, err := pagination(ctx)
	if err != nil {
		return c.h.handleError(ctx, err)
	}
	if limit > 0 {
		var total int64
		if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
			return c.h.handleError(ctx, err)
		}
		ctx.Response().Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
		query = query.Offset((page - 1) * limit).Limit(limit)
	}

	rows := []T{}
	if err := query.Order("id DESC").Find(&rows).Error; err != nil {
		return c.h.handleError(ctx, err)
	}

	log.Debug("Records listed", zap.Int("count", len(rows)))
	return respond(ctx, http.StatusOK, c.res.Name+" list fetched successfully", rows)
}

func (c *crud[T]) get(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return c.h.handleError(ctx, err)
	}

	var row T
	if err := c.h.db.WithContext(ctx.Request().Context()).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.h.handleError(ctx, apperr.NotFound(c.res.Name))
		}
		return c.h.handleError(ctx, err)
	}
	return respond(ctx, http.StatusOK, c.res.Name+" fetched successfully", row)
}

func (c *crud[T]) update(ctx echo.Context) error {
	log := logger.FromContext(ctx).With(zap.String("resource", c.res.Path))

	id, err := parseID(ctx)
	if err != nil {
		return c.h.handleError(ctx, err)
	}
	body, err := readBody(ctx)
	if err != nil {
		return c.h.handleError(ctx, err)
	}
	if blank := missingFields(body, c.res.Required, true); len(blank) > 0 {
		return c.h.handleError(ctx, apperr.RequiredFields(blank...))
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var row T
	err = c.h.db.WithContext(ctx.Request().Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().First(&row, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(c.res.Name)
			}
			return err
		}
		if row.IsDeleted() {
			return apperr.Deleted(c.res.Name)
		}

		before, err := toMap(row)
		if err != nil {
			return err
		}
		if err := applyBody(&row, body); err != nil {
			return err
		}
		if c.res.Prepare != nil {
			if err := c.res.Prepare(tx, &row, body); err != nil {
				return err
			}
		}
		after, err := toMap(row)
		if err != nil {
			return err
		}

		var changed []string
		for _, col := range c.res.Unique {
			if fmt.Sprint(before[col]) != fmt.Sprint(after[col]) {
				changed = append(changed, col)
			}
		}
		if err := c.checkUnique(tx, after, changed, id); err != nil {
			return err
		}

		var touched []Reference
		for _, ref := range c.res.References {
			if _, ok := body[ref.Field]; ok {
				touched = append(touched, ref)
			}
		}
		if err := checkReferences(tx, touched, after); err != nil {
			return err
		}

		return tx.Save(&row).Error
	})
	if err != nil {
		return c.h.handleError(ctx, err)
	}

	c.invalidate(ctx)
	prometheus.RecordEntityOperation(c.res.Path, "update")
	log.Info("Record updated", zap.Uint("id", id))
	return respond(ctx, http.StatusOK, c.res.Name+" updated successfully", row)
}

func (c *crud[T]) delete(ctx echo.Context) error {
	log := logger.FromContext(ctx).With(zap.String("resource", c.res.Path))

	id, err := parseID(ctx)
	if err != nil {
		return c.h.handleError(ctx, err)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := c.h.db.WithContext(ctx.Request().Context()).Delete(new(T), id)
	if result.Error != nil {
		return c.h.handleError(ctx, result.Error)
	}
	if result.RowsAffected == 0 {
		return c.h.handleError(ctx, apperr.NotFound(c.res.Name))
	}

	c.invalidate(ctx)
	prometheus.RecordEntityOperation(c.res.Path, "delete")
	log.Info("Record deleted", zap.Uint("id", id))
	return ctx.NoContent(http.StatusNoContent)
}

func (c *crud[T]) dropdown(ctx echo.Context) error {
	log := logger.FromContext(ctx).With(zap.String("resource", c.res.Path))
	reqCtx := ctx.Request().Context()
	key := c.res.dropdownKey()

	if cached, ok, err := c.h.cache.Get(reqCtx, key); err != nil {
		log.Warn("Dropdown cache read failed", zap.Error(err))
	} else if ok {
		var options []Option
		if err := json.Unmarshal(cached, &options); err == nil {
			return respond(ctx, http.StatusOK, c.res.Name+" options fetched successfully", options)
		}
	}

	options := []Option{}
	err := c.h.db.WithContext(reqCtx).
		Model(new(T)).
		Select("id, " + c.res.Label + " AS label").
		Order(c.res.Label).
		Scan(&options).Error
	if err != nil {
		return c.h.handleError(ctx, err)
	}

	if raw, err := json.Marshal(options); err == nil {
		if err := c.h.cache.Set(reqCtx, key, raw); err != nil {
			log.Warn("Dropdown cache write failed", zap.Error(err))
		}
	}
	return respond(ctx, http.StatusOK, c.res.Name+" options fetched successfully", options)
}

func (c *crud[T]) invalidate(ctx echo.Context) {
	if c.res.Label == "" {
		return
	}
	if err := c.h.cache.Delete(ctx.Request().Context(), c.res.dropdownKey()); err != nil {
		logger.FromContext(ctx).Warn("Dropdown cache invalidation failed",
			zap.String("resource", c.res.Path), zap.Error(err))
	}
}

// checkUnique rejects values of cols already used by another live row.
func (c *crud[T]) checkUnique(tx *gorm.DB, values map[string]interface{}, cols []string, excludeID uint) error {
	for _, col := range cols {
		v := values[col]
		if isBlank(v) {
			continue
		}
		query := tx.Model(new(T)).Where(col+" = ?", v)
		if excludeID != 0 {
			query = query.Where("id <> ?", excludeID)
		}
		var count int64
		if err := query.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.AlreadyExists(c.res.Name, col, v)
		}
	}
	return nil
}

// checkReferences verifies every non-null reference in values points at a row
// that exists and is not soft-deleted.
func checkReferences(tx *gorm.DB, refs []Reference, values map[string]interface{}) error {
	for _, ref := range refs {
		v, ok := values[ref.Field]
		if !ok || v == nil {
			continue
		}
		id, err := toUint(v)
		if err != nil {
			return apperr.InvalidInput("%s must be a positive integer", ref.Field)
		}
		var count int64
		if err := tx.Table(ref.Table).Where("id = ? AND deleted_at IS NULL", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperr.InvalidReference(ref.Field, id)
		}
	}
	return nil
}

func applySearch(db, query *gorm.DB, cols []string, term string) *gorm.DB {
	op := "LIKE"
	if db.Dialector.Name() == "postgres" {
		op = "ILIKE"
	}
	conds := make([]string, len(cols))
	args := make([]interface{}, len(cols))
	for i, col := range cols {
		conds[i] = col + " " + op + " ?"
		args[i] = "%" + term + "%"
	}
	return query.Where("("+strings.Join(conds, " OR ")+")", args...)
}

func filterValue(v string) interface{} {
	switch strings.ToLower(v) {
	case "true":
		return true
	case "false":
		return false
	}
	return v
}

func pagination(c echo.Context) (page, limit int, err error) {
	page, limit = 1, 0
	if v := c.QueryParam("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 1 {
			return 0, 0, apperr.InvalidInput("limit must be a positive integer")
		}
		if limit > maxPageSize {
			limit = maxPageSize
		}
	}
	if v := c.QueryParam("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil || page < 1 {
			return 0, 0, apperr.InvalidInput("page must be a positive integer")
		}
		if limit == 0 {
			limit = 20
		}
	}
	return page, limit, nil
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.InvalidInput("Invalid id: %s", c.Param("id"))
	}
	return uint(id), nil
}

// readBody decodes a JSON object, keeping numbers as json.Number, and drops
// the keys a client may not set.
func readBody(c echo.Context) (map[string]interface{}, error) {
	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()

	var body map[string]interface{}
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperr.InvalidInput("Request body is required")
		}
		return nil, apperr.InvalidInput("Invalid JSON body: %v", err)
	}
	if body == nil {
		return nil, apperr.InvalidInput("Request body must be a JSON object")
	}
	for _, key := range protectedKeys {
		delete(body, key)
	}
	return body, nil
}

// missingFields lists required fields that are absent or blank. With
// presentOnly, absent fields are accepted.
func missingFields(body map[string]interface{}, required []string, presentOnly bool) []string {
	var missing []string
	for _, f := range required {
		v, ok := body[f]
		if !ok {
			if !presentOnly {
				missing = append(missing, f)
			}
			continue
		}
		if isBlank(v) {
			missing = append(missing, f)
		}
	}
	return missing
}

func isBlank(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case json.Number:
		return val.String() == ""
	}
	return false
}

// applyBody merges body onto row through its json tags.
func applyBody(row interface{}, body map[string]interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return apperr.InvalidInput("Invalid request body: %v", err)
	}
	if err := json.Unmarshal(raw, row); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return apperr.InvalidInput("Invalid value for %s: expected %s", typeErr.Field, typeErr.Type)
		}
		return apperr.InvalidInput("Invalid request body: %v", err)
	}
	return nil
}

func toMap(row interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(row)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out map[string]interface{}
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func toUint(v interface{}) (uint, error) {
	var s string
	switch val := v.(type) {
	case json.Number:
		s = val.String()
	case string:
		s = val
	default:
		s = fmt.Sprint(val)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(n), nil
}
