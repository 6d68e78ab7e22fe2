package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	domoperator "example.com/divide-account/internal/domain/operator"
	domsplit "example.com/divide-account/internal/domain/split"
	"example.com/divide-account/internal/infra/metrics"
	"example.com/divide-account/internal/infra/persistence/memory"
	"example.com/divide-account/internal/infra/security"
	authuc "example.com/divide-account/internal/usecase/auth"
	divideuc "example.com/divide-account/internal/usecase/divide"
	historyuc "example.com/divide-account/internal/usecase/history"
)

const (
	testOperatorEmail    = "ops@example.com"
	testOperatorPassword = "password123"
	testJWTSecret        = "test-secret-test-secret-test-secret"
)

type recordingNotifier struct {
	sent []domsplit.Share
}

func (n *recordingNotifier) NotifyShare(ctx context.Context, share domsplit.Share, alloc domsplit.Allocation) error {
	n.sent = append(n.sent, share)
	return nil
}

type failingStore struct{}

func (failingStore) Ping(context.Context) error { return errors.New("connection refused") }

type testServer struct {
	router   http.Handler
	splits   *memory.SplitRepository
	notifier *recordingNotifier
	registry *prometheus.Registry
	tokens   *security.JWTService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testOperatorPassword), bcrypt.MinCost)
	require.NoError(t, err)

	splits := memory.NewSplitRepository(memory.DefaultCapacity)
	operators := memory.NewOperatorRepository(&domoperator.Operator{
		Email:        testOperatorEmail,
		Name:         "Ops",
		PasswordHash: string(hash),
	})
	tokens := security.NewJWTService(testJWTSecret, time.Hour)
	notifier := &recordingNotifier{}
	registry := prometheus.NewRegistry()

	api := NewAPI(Dependencies{
		AuthService:    authuc.NewService(operators, security.NewBcryptService(bcrypt.MinCost), tokens),
		DivideService:  divideuc.NewService(divideuc.NewValidator(), splits, notifier, metrics.NewRecorder(registry)),
		HistoryService: historyuc.NewService(splits),
		TokenService:   tokens,
		Store:          splits,
		Gatherer:       registry,
	})

	return &testServer{
		router:   api.Router(),
		splits:   splits,
		notifier: notifier,
		registry: registry,
		tokens:   tokens,
	}
}

func (s *testServer) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) doRaw(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"`+testOperatorEmail+`","password":"`+testOperatorPassword+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
