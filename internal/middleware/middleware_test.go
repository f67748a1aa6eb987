package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/apperr"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/pkg/jwtutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	e := echo.New()
	e.Use(RequestIDMiddleware())
	e.GET("/", func(c echo.Context) error {
		assert.NotNil(t, c.Get("logger"))
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestJWTAuthMiddleware(t *testing.T) {
	util := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "secret", ExpirationHours: 1})
	token, _, err := util.GenerateToken(jwtutil.EmployeeClaims{EmployeeID: 4, Email: "a@b.c"})
	require.NoError(t, err)

	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		_ = c.NoContent(apperr.As(err).Status())
	}
	g := e.Group("/api", JWTAuthMiddleware(util, "/api/login"))
	g.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	g.GET("/me", func(c echo.Context) error {
		claims, ok := Claims(c)
		require.True(t, ok)
		return c.String(http.StatusOK, claims.Email)
	})

	cases := []struct {
		name   string
		method string
		path   string
		header string
		status int
	}{
		{"public route", http.MethodPost, "/api/login", "", http.StatusOK},
		{"missing header", http.MethodGet, "/api/me", "", http.StatusUnauthorized},
		{"wrong scheme", http.MethodGet, "/api/me", "Basic abc", http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/me", "Bearer nope", http.StatusUnauthorized},
		{"valid token", http.MethodGet, "/api/me", "Bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}
