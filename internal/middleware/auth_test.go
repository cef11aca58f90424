package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/eventbook/eventbook/internal/auth"
	"github.com/eventbook/eventbook/internal/model"
	"github.com/eventbook/eventbook/internal/repository"
	"github.com/eventbook/eventbook/internal/store"
)

const testSecret = "test-secret"

func signToken(t *testing.T, uid string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": uid,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func runAuthed(t *testing.T, mw echo.MiddlewareFunc, authorization string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	h := mw(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if err := h(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
	return rec, c
}

func TestRequireAuth(t *testing.T) {
	mw := RequireAuth(auth.NewJWTVerifier(testSecret))

	rec, c := runAuthed(t, mw, "Bearer "+signToken(t, "u1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: got %d, body %s", rec.Code, rec.Body.String())
	}
	if uid, _ := c.Get(CtxUserID).(string); uid != "u1" {
		t.Fatalf("got uid %q in context", uid)
	}

	for name, header := range map[string]string{
		"missing":      "",
		"not bearer":   "Basic abc",
		"bad token":    "Bearer garbage",
		"wrong secret": "Bearer " + func() string { tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}); s, _ := tok.SignedString([]byte("other")); return s }(),
	} {
		rec, _ := runAuthed(t, mw, header)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: got %d, want 401", name, rec.Code)
		}
	}
}

func TestRequireAdmin(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	users := repository.NewUserRepo(s)

	admin := &model.User{UID: "boss", Role: model.RoleAdmin}
	if err := s.Set(ctx, model.UsersCollection, "boss", admin.Doc()); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	regular := &model.User{UID: "pleb", Role: model.RoleUser}
	if err := s.Set(ctx, model.UsersCollection, "pleb", regular.Doc()); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	mw := RequireAdmin(users)
	run := func(uid string) *httptest.ResponseRecorder {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if uid != "" {
			c.Set(CtxUserID, uid)
		}
		h := mw(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
		if err := h(c); err != nil {
			t.Fatalf("middleware: %v", err)
		}
		return rec
	}

	if rec := run("boss"); rec.Code != http.StatusOK {
		t.Fatalf("admin: got %d", rec.Code)
	}
	if rec := run("pleb"); rec.Code != http.StatusForbidden {
		t.Fatalf("regular user: got %d", rec.Code)
	}
	if rec := run("ghost"); rec.Code != http.StatusForbidden {
		t.Fatalf("unknown uid: got %d", rec.Code)
	}
	if rec := run(""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated: got %d", rec.Code)
	}
}
