package service

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"wrcheck/internal/models"
	"wrcheck/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const testSigningKey = "bench-test-key"

// mockAuthRepo is a lightweight in-test mock for repository.Authorization.
type mockAuthRepo struct {
	CreateFn        func(username, hash string) (int, error)
	GetByUsernameFn func(username string) (*models.Operator, error)

	createCalls []struct {
		username string
		hash     string
	}
	getCalls []string
}

func (m *mockAuthRepo) Create(username, hash string) (int, error) {
	m.createCalls = append(m.createCalls, struct {
		username string
		hash     string
	}{username: username, hash: hash})
	return m.CreateFn(username, hash)
}

func (m *mockAuthRepo) GetByUsername(username string) (*models.Operator, error) {
	m.getCalls = append(m.getCalls, username)
	return m.GetByUsernameFn(username)
}

// --- SignUp tests ---

// newOpenAuth returns an AuthService with self-registration enabled.
func newOpenAuth(repo *mockAuthRepo) *AuthService {
	svc := NewAuthService(repo, testSigningKey, time.Hour)
	svc.AllowSignUp(true)
	return svc
}

func TestAuthService_SignUp_DisabledByDefault(t *testing.T) {
	mock := &mockAuthRepo{
		CreateFn: func(username, hash string) (int, error) {
			t.Fatal("Create must not be called while sign-up is closed")
			return 0, nil
		},
	}
	svc := NewAuthService(mock, testSigningKey, time.Hour)

	if _, err := svc.SignUp("intruder", "relay-me"); !errors.Is(err, ErrSignUpDisabled) {
		t.Fatalf("expected ErrSignUpDisabled, got %v", err)
	}

	svc.AllowSignUp(true)
	svc.AllowSignUp(false)
	if _, err := svc.SignUp("intruder", "relay-me"); !errors.Is(err, ErrSignUpDisabled) {
		t.Fatalf("closing sign-up again must refuse, got %v", err)
	}
}

func TestAuthService_SignUp_StoresBcryptHash(t *testing.T) {
	mock := &mockAuthRepo{
		CreateFn: func(username, hash string) (int, error) { return 42, nil },
	}
	svc := newOpenAuth(mock)

	id, err := svc.SignUp("bench-op", "wr-len-17")
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if id != 42 || len(mock.createCalls) != 1 {
		t.Fatalf("expected id 42 from one Create call, got id=%d calls=%d", id, len(mock.createCalls))
	}
	call := mock.createCalls[0]
	if call.username != "bench-op" || call.hash == "wr-len-17" {
		t.Fatalf("unexpected stored credentials: %+v", call)
	}
	if _, err := bcrypt.Cost([]byte(call.hash)); err != nil {
		t.Fatalf("stored hash is not bcrypt: %v", err)
	}
	if err := verifyPassword(call.hash, "wr-len-17"); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestAuthService_SignUp_Failures(t *testing.T) {
	tests := []struct {
		name     string
		password string
		repoErr  error
		creates  int
	}{
		{"blank_password", "   ", nil, 0},
		{"store_error", "pass123", errors.New("store unavailable"), 1},
		{"duplicate", "pass123", repository.ErrUserExists, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mock := &mockAuthRepo{
				CreateFn: func(username, hash string) (int, error) { return 0, tc.repoErr },
			}
			_, err := newOpenAuth(mock).SignUp("bench-op", tc.password)
			if err == nil {
				t.Fatalf("expected error")
			}
			if tc.repoErr != nil && !errors.Is(err, tc.repoErr) {
				t.Fatalf("expected %v, got %v", tc.repoErr, err)
			}
			if len(mock.createCalls) != tc.creates {
				t.Fatalf("expected %d Create calls, got %d", tc.creates, len(mock.createCalls))
			}
		})
	}
}

// --- GenerateToken tests ---

func TestAuthService_GenerateToken_BenchOperators(t *testing.T) {
	techHash, err := hashPassword("calib-2024")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	operators := map[string]*models.Operator{
		"bench-tech": {ID: 7, Username: "bench-tech", PasswordHash: techHash},
	}
	lookup := func(username string) (*models.Operator, error) {
		if username == "flaky-db" {
			return nil, errors.New("operator store unavailable")
		}
		return operators[username], nil
	}

	tests := []struct {
		name     string
		username string
		password string
		wantID   int
		wantErr  error
		anyErr   bool
	}{
		{name: "bench_tech", username: "bench-tech", password: "calib-2024", wantID: 7},
		{name: "wrong_password", username: "bench-tech", password: "calib-2023", wantErr: ErrInvalidPassword},
		{name: "unknown_operator", username: "night-shift", password: "calib-2024", wantErr: ErrUserNotFound},
		{name: "store_down", username: "flaky-db", password: "x", anyErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mock := &mockAuthRepo{GetByUsernameFn: lookup}
			svc := NewAuthService(mock, testSigningKey, time.Hour)

			token, err := svc.GenerateToken(tc.username, tc.password)
			if len(mock.getCalls) != 1 || mock.getCalls[0] != tc.username {
				t.Fatalf("GetByUsername calls: %v", mock.getCalls)
			}
			switch {
			case tc.wantErr != nil:
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			case tc.anyErr:
				if err == nil || token != "" {
					t.Fatalf("expected store error and no token, got token=%q err=%v", token, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("GenerateToken returned error: %v", err)
			}
			uid, err := svc.ParseToken(token)
			if err != nil || uid != tc.wantID {
				t.Fatalf("ParseToken: id=%d err=%v, want %d", uid, err, tc.wantID)
			}
		})
	}
}

// --- ParseToken tests ---

func TestAuthService_ParseToken_Success(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, testSigningKey, time.Hour)
	token, err := svc.issueToken(99)
	if err != nil {
		t.Fatalf("issueToken failed: %v", err)
	}

	uid, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken returned error: %v", err)
	}
	if uid != 99 {
		t.Fatalf("expected operator id 99, got %d", uid)
	}
}

func signClaims(t *testing.T, method jwt.SigningMethod, key any, issued, expires time.Time, uid int) string {
	t.Helper()
	tk := jwt.NewWithClaims(method, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(issued),
		},
		UserID: uid,
	})
	s, err := tk.SignedString(key)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return s
}

func TestAuthService_ParseToken_Rejects(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, testSigningKey, time.Hour)
	now := time.Now()
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey failed: %v", err)
	}

	tests := map[string]string{
		"malformed":     "not-a-jwt",
		"other_bench":   signClaims(t, jwt.SigningMethodHS256, []byte("other-bench-key"), now, now.Add(time.Hour), 5),
		"expired":       signClaims(t, jwt.SigningMethodHS256, []byte(testSigningKey), now.Add(-3*time.Hour), now.Add(-2*time.Hour), 11),
		"non_hmac_alg":  signClaims(t, jwt.SigningMethodRS256, rsaKey, now, now.Add(time.Hour), 12),
		"empty_token":   "",
		"bearer_prefix": "Bearer " + signClaims(t, jwt.SigningMethodHS256, []byte(testSigningKey), now, now.Add(time.Hour), 13),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.ParseToken(token); err == nil {
				t.Fatalf("expected %s token to be rejected", name)
			}
		})
	}
}

func TestAuthService_TokenHonoursConfiguredTTL(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, testSigningKey, 15*time.Minute)
	token, err := svc.issueToken(3)
	if err != nil {
		t.Fatalf("issueToken failed: %v", err)
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		t.Fatalf("ParseUnverified: %v", err)
	}
	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if ttl != 15*time.Minute {
		t.Fatalf("expected 15m token lifetime, got %v", ttl)
	}
}

// --- Seed tests ---

func TestAuthService_Seed_RegistersConfiguredOperators(t *testing.T) {
	hash, err := hashPassword("relay-pass")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	mock := &mockAuthRepo{
		CreateFn: func(username, h string) (int, error) { return 1, nil },
	}
	svc := NewAuthService(mock, testSigningKey, time.Hour)

	if err := svc.Seed([]models.Operator{{Username: "bench", PasswordHash: hash}}); err != nil {
		t.Fatalf("Seed returned error: %v", err)
	}
	if len(mock.createCalls) != 1 || mock.createCalls[0].hash != hash {
		t.Fatalf("expected the configured hash to be stored verbatim, got %+v", mock.createCalls)
	}
}

func TestAuthService_Seed_RejectsPlainPassword(t *testing.T) {
	mock := &mockAuthRepo{
		CreateFn: func(username, h string) (int, error) {
			t.Fatal("Create should not be called for a non-bcrypt hash")
			return 0, nil
		},
	}
	svc := NewAuthService(mock, testSigningKey, time.Hour)

	if err := svc.Seed([]models.Operator{{Username: "bench", PasswordHash: "plaintext"}}); err == nil {
		t.Fatalf("expected error for non-bcrypt hash")
	}
}

func TestAuthService_SeededOperatorSignsIn(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("bench-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repos := repository.NewRepository(0)
	svc := NewAuthService(repos.Auth, testSigningKey, time.Hour)
	if err := svc.Seed([]models.Operator{
		{Username: "bench", PasswordHash: string(hash)},
		{Username: "night-shift", PasswordHash: string(hash)},
	}); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	token, err := svc.GenerateToken("night-shift", "bench-pass")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	uid, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	op, _ := repos.Auth.GetByUsername("night-shift")
	if op == nil || op.ID != uid {
		t.Fatalf("token carries id %d, operator is %+v", uid, op)
	}

	if err := svc.Seed([]models.Operator{{Username: "bench", PasswordHash: string(hash)}}); !errors.Is(err, repository.ErrUserExists) {
		t.Fatalf("seeding a duplicate operator must fail, got %v", err)
	}
}

func TestAuthService_TokenTTLDefault(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, testSigningKey, 0)
	if svc.tokenTTL != defaultTokenTTL {
		t.Fatalf("expected default ttl %v, got %v", defaultTokenTTL, svc.tokenTTL)
	}
}
