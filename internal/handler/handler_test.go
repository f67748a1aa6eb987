package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/job"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/testdb"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/pkg/config"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/pkg/jwtutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	t     *testing.T
	e     *echo.Echo
	db    *gorm.DB
	cfg   *config.Config
	jwt   *jwtutil.JWTUtil
	cache *memoryCache
	token string
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, opts ...func(*config.Config)) *testServer {
	t.Helper()

	cfg := &config.Config{
		ServiceName: config.ServiceName,
		Server:      config.ServerConfig{Port: "5000", Env: "test"},
		JWT:         config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	db := testdb.Open(t)
	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: cfg.JWT.SigningKey, ExpirationHours: cfg.JWT.ExpirationHours})
	mem := newMemoryCache()

	h := New(db, mem, cfg, jwt, job.NewOnHoldInvoiceCleanup(db, 24*time.Hour, nil), nil)
	e := echo.New()
	h.Register(e)

	return &testServer{t: t, e: e, db: db, cfg: cfg, jwt: jwt, cache: mem}
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if s.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// create posts body and decodes the created row into out.
func (s *testServer) create(path string, body interface{}, out interface{}) {
	s.t.Helper()
	rec := s.do(http.MethodPost, path, body)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	if out != nil {
		decodeData(s.t, rec, out)
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) envelope {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, out), string(env.Data))
	return env
}

type memoryCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	hits    int
	deletes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if ok {
		m.hits++
	}
	return v, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	m.deletes++
	return nil
}

func (m *memoryCache) Close() error { return nil }

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}
