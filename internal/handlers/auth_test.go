package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"wrcheck/internal/repository"
	"wrcheck/internal/service"
)

func TestAuthHandlers_SignUpAndSignIn(t *testing.T) {
	auth := &mockAuth{signUpID: 42, genTokenToken: "tok123", parseID: 1}
	s := &service.Service{Authorization: auth}
	r := newTestRouter(s)

	// sign-up success
	body := bytes.NewBufferString(`{"username":"u","password":"p"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/sign-up", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("sign-up status=%d, body=%s", w.Code, w.Body.String())
	}
	var m map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if int(m["id"].(float64)) != 42 {
		t.Fatalf("expected id=42, got %v", m["id"])
	}

	// sign-in success
	body = bytes.NewBufferString(`{"username":"u","password":"p"}`)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/sign-in", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("sign-in status=%d, body=%s", w.Code, w.Body.String())
	}
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if m["token"] != "tok123" {
		t.Fatalf("expected token tok123, got %v", m["token"])
	}

	// sign-in invalid body → 400
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/sign-in", bytes.NewBufferString(`{"username":1}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad body, got %d", w.Code)
	}
}

func TestAuthHandlers_SignUpConflict(t *testing.T) {
	auth := &mockAuth{signUpErr: fmt.Errorf("insert operator %q: %w", "u", repository.ErrUserExists)}
	r := newTestRouter(&service.Service{Authorization: auth})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/sign-up", bytes.NewBufferString(`{"username":"u","password":"p"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestAuthHandlers_SignInBadCredentials(t *testing.T) {
	auth := &mockAuth{genTokenErr: errors.New("invalid password")}
	r := newTestRouter(&service.Service{Authorization: auth})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/sign-in", bytes.NewBufferString(`{"username":"u","password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if auth.lastGenUsername != "u" || auth.lastGenPassword != "nope" {
		t.Fatalf("credentials not forwarded: %q/%q", auth.lastGenUsername, auth.lastGenPassword)
	}
}

// benchDriver records relay writes in place of the GPIO bank.
type benchDriver struct{ levels map[int]bool }

func (d *benchDriver) Pins() []int { return []int{17, 27, 22} }
func (d *benchDriver) Set(pin int, on bool) error {
	d.levels[pin] = on
	return nil
}
func (d *benchDriver) State(pin int) (bool, error) { return d.levels[pin], nil }

func TestAuthHandlers_AnonymousSignUpCannotReachRelays(t *testing.T) {
	driver := &benchDriver{levels: map[int]bool{}}
	s, err := service.NewService(repository.NewRepository(0), service.Deps{
		Relays:     driver,
		SigningKey: "bench-test-key",
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	r := newTestRouter(s)

	post := func(path, body, token string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		r.ServeHTTP(w, req)
		return w
	}

	w := post("/auth/sign-up", `{"username":"stranger","password":"let-me-in"}`, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("anonymous sign-up: expected 403, got %d (%s)", w.Code, w.Body.String())
	}

	w = post("/auth/sign-in", `{"username":"stranger","password":"let-me-in"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("refused account must not sign in, got %d", w.Code)
	}

	w = post("/api/v1/relays/17", `{"level":"on"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("relay without token: expected 401, got %d", w.Code)
	}
	if len(driver.levels) != 0 {
		t.Fatalf("relay was driven: %v", driver.levels)
	}
}

func TestAuthHandlers_SignUpOpenedByConfig(t *testing.T) {
	driver := &benchDriver{levels: map[int]bool{}}
	s, err := service.NewService(repository.NewRepository(0), service.Deps{
		Relays:      driver,
		SigningKey:  "bench-test-key",
		AllowSignUp: true,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	r := newTestRouter(s)

	creds := `{"username":"bench","password":"wr-len"}`
	for _, path := range []string{"/auth/sign-up", "/auth/sign-in"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(creds))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status=%d body=%s", path, w.Code, w.Body.String())
		}
		if path == "/auth/sign-in" {
			var out map[string]string
			_ = json.Unmarshal(w.Body.Bytes(), &out)
			w = httptest.NewRecorder()
			req = httptest.NewRequest(http.MethodPost, "/api/v1/relays/17", bytes.NewBufferString(`{"level":"on"}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+out["token"])
			r.ServeHTTP(w, req)
			if w.Code != http.StatusOK || !driver.levels[17] {
				t.Fatalf("registered operator could not switch relay: %d %v", w.Code, driver.levels)
			}
		}
	}
}
