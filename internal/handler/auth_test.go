package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/eventbook/eventbook/internal/auth"
	"github.com/eventbook/eventbook/internal/model"
	"github.com/eventbook/eventbook/internal/repository"
	"github.com/eventbook/eventbook/internal/store"
)

func TestLoginAutoProvisions(t *testing.T) {
	s := store.NewMemStore()
	users := repository.NewUserRepo(s)
	h := NewAuthHandler(auth.NewJWTVerifier("test-secret"), users)
	e := echo.New()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "u1",
		"email": "ada@example.com",
		"name":  "Ada",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	raw, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"token":"`+raw+`"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, body %s", rec.Code, rec.Body.String())
	}
	user := decodeBody(t, rec)["user"].(map[string]any)
	if user["uid"] != "u1" || user["role"] != model.RoleUser {
		t.Fatalf("got user %v", user)
	}

	// the document now exists with default role
	u, err := users.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if u.Email != "ada@example.com" || u.Role != model.RoleUser {
		t.Fatalf("provisioned user %+v", u)
	}
}

func TestLoginRejectsBadToken(t *testing.T) {
	s := store.NewMemStore()
	h := NewAuthHandler(auth.NewJWTVerifier("test-secret"), repository.NewUserRepo(s))
	e := echo.New()

	for name, body := range map[string]string{
		"empty":   `{}`,
		"garbage": `{"token":"garbage"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		if err := h.Login(e.NewContext(req, rec)); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if rec.Code != http.StatusBadRequest && rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: got %d", name, rec.Code)
		}
	}
}
