package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func sessionRequest(t *testing.T, userID uint) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	CreateSession(rec, userID)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionRoundTrip(t *testing.T) {
	req := sessionRequest(t, 42)
	uid, ok := ParseSession(req)
	if !ok || uid != 42 {
		t.Fatalf("ParseSession = %d, %v", uid, ok)
	}
}

func TestTamperedSessionRejected(t *testing.T) {
	req := sessionRequest(t, 42)
	c, err := req.Cookie("session")
	if err != nil {
		t.Fatalf("cookie: %v", err)
	}
	parts := strings.Split(c.Value, ".")
	// Claim a different user id while keeping the old signature.
	forged := "1." + parts[1] + "." + parts[2]

	forgedReq := httptest.NewRequest(http.MethodGet, "/", nil)
	forgedReq.AddCookie(&http.Cookie{Name: "session", Value: forged})
	if _, ok := ParseSession(forgedReq); ok {
		t.Fatal("forged session accepted")
	}
}

func TestExpiredSessionRejected(t *testing.T) {
	// Build an already-expired payload with a valid signature.
	payload := "42.1000000000"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: payload + "." + sign(payload)})
	if _, ok := ParseSession(req); ok {
		t.Fatal("expired session accepted")
	}
}

func TestMalformedCookieRejected(t *testing.T) {
	for _, value := range []string{"", "junk", "1.2", "a.b.c.d"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if value != "" {
			req.AddCookie(&http.Cookie{Name: "session", Value: value})
		}
		if _, ok := ParseSession(req); ok {
			t.Fatalf("accepted malformed cookie %q", value)
		}
	}
}

func TestRequireAuthWithoutSession(t *testing.T) {
	handler := Middleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthVerifierRejects(t *testing.T) {
	SetUserVerifier(func(_ context.Context, uid uint) bool { return false })
	t.Cleanup(func() { SetUserVerifier(nil) })

	handler := Middleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, sessionRequest(t, 42))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	// The stale cookie gets cleared.
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" && c.Value == "" {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("stale session cookie not cleared")
	}
}

func TestRequireAuthVerifierAccepts(t *testing.T) {
	SetUserVerifier(func(_ context.Context, uid uint) bool { return uid == 42 })
	t.Cleanup(func() { SetUserVerifier(nil) })

	var gotUID uint
	handler := Middleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, sessionRequest(t, 42))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUID != 42 {
		t.Fatalf("context uid = %d, want 42", gotUID)
	}
}
