package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"wrcheck/internal/models"
	"wrcheck/internal/scanner"
	"wrcheck/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockScan struct {
	report   models.ScanReport
	err      error
	calls    int
	lastName string
	lastBody string
	lastOpts scanner.Options
}

func (m *mockScan) Scan(ctx context.Context, source string, r io.Reader, opts scanner.Options) (models.ScanReport, error) {
	m.calls++
	m.lastName = source
	m.lastOpts = opts
	b, err := io.ReadAll(r)
	if err != nil {
		return models.ScanReport{}, fmt.Errorf("%w: %w", scanner.ErrRead, err)
	}
	m.lastBody = string(b)
	return m.report, m.err
}

func (m *mockScan) ScanFile(ctx context.Context, path string, opts scanner.Options) (models.ScanReport, error) {
	m.calls++
	m.lastName = path
	m.lastOpts = opts
	return m.report, m.err
}

type mockRelay struct {
	states   []models.RelayState
	listErr  error
	setErr   error
	setCalls int
	lastPin  int
	lastOn   bool
}

func (m *mockRelay) Set(ctx context.Context, pin int, on bool) (models.RelayState, error) {
	m.setCalls++
	m.lastPin = pin
	m.lastOn = on
	if m.setErr != nil {
		return models.RelayState{}, m.setErr
	}
	return models.RelayState{Pin: pin, On: on, UpdatedAt: time.Now().UTC()}, nil
}

func (m *mockRelay) States(ctx context.Context) ([]models.RelayState, error) {
	return m.states, m.listErr
}

type mockMonitoring struct {
	mu    sync.Mutex
	state models.BenchState
	err   error
	calls int
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.BenchState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.state, m.err
}

// set swaps the state and error seen by later GetState calls.
func (m *mockMonitoring) set(st models.BenchState, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state, m.err = st, err
}

func (m *mockMonitoring) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockEventLog struct {
	resp     []models.Event
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.Event, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// serveAuthed sends req through r with a bearer token the mock accepts.
func serveAuthed(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
