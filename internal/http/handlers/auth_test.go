package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/finsight/gateway/internal/config"
	"github.com/finsight/gateway/internal/domain/user"
	"github.com/finsight/gateway/internal/http/middlewares"
	"github.com/finsight/gateway/internal/repo/postgres"
	"github.com/finsight/gateway/internal/security"
	"github.com/finsight/gateway/internal/session"
	"github.com/gin-gonic/gin"
)

type fakeUserStore struct {
	byEmail map[string]user.User
	created []string
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (user.User, error) {
	u, ok := f.byEmail[email]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (f *fakeUserStore) Create(ctx context.Context, email, passwordHash, fullName string, consent bool) (user.User, error) {
	if _, ok := f.byEmail[email]; ok {
		return user.User{}, postgres.ErrEmailAlreadyUsed
	}

	u := user.User{
		ID:           "user-" + email,
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		ConsentGiven: consent,
	}

	f.byEmail[email] = u
	f.created = append(f.created, email)
	return u, nil
}

func newAuthRouter(users *fakeUserStore, store session.Store) *gin.Engine {
	h := NewAuthHandler(users, users, store, config.Config{Env: "test"})

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/logout", func(c *gin.Context) {
		if cookie, err := c.Cookie(session.CookieName); err == nil {
			c.Set(middlewares.CtxSessionID, cookie)
		}
		h.Logout(c)
	})

	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	res := w.Result()
	defer res.Body.Close()

	for _, c := range res.Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}

	t.Fatalf("no %s cookie in response", session.CookieName)
	return nil
}

func TestRegisterCreatesUserAndSession(t *testing.T) {
	users := &fakeUserStore{byEmail: map[string]user.User{}}
	store := session.NewMemoryStore(time.Hour)
	r := newAuthRouter(users, store)

	w := postJSON(r, "/auth/register", `{
		"email": "jane@example.com",
		"password": "s3cret-pass",
		"full_name": "Jane Doe",
		"consent": true
	}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}

	c := sessionCookie(t, w)

	if !c.HttpOnly {
		t.Error("session cookie is not httpOnly")
	}
	if c.Path != "/" {
		t.Errorf("cookie path = %q", c.Path)
	}

	if _, err := store.Get(context.Background(), c.Value); err != nil {
		t.Fatalf("session not in store: %v", err)
	}

	var resp struct {
		User user.User `json:"user"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.User.Email != "jane@example.com" {
		t.Errorf("user email = %q", resp.User.Email)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("s3cret-pass")) {
		t.Error("response leaks password material")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := &fakeUserStore{byEmail: map[string]user.User{
		"jane@example.com": {ID: "u1", Email: "jane@example.com"},
	}}
	r := newAuthRouter(users, session.NewMemoryStore(time.Hour))

	w := postJSON(r, "/auth/register", `{
		"email": "jane@example.com",
		"password": "s3cret-pass",
		"full_name": "Jane Doe",
		"consent": true
	}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	assertErrorCode(t, w, "email_taken")
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"short password", `{"email":"a@b.com","password":"short","full_name":"Jane Doe","consent":true}`},
		{"bad email", `{"email":"not-an-email","password":"s3cret-pass","full_name":"Jane Doe","consent":true}`},
		{"missing consent", `{"email":"a@b.com","password":"s3cret-pass","full_name":"Jane Doe"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			users := &fakeUserStore{byEmail: map[string]user.User{}}
			r := newAuthRouter(users, session.NewMemoryStore(time.Hour))

			w := postJSON(r, "/auth/register", tc.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body=%s", w.Code, w.Body.String())
			}
			if len(users.created) != 0 {
				t.Error("user was created despite invalid input")
			}
		})
	}
}

func TestLogin(t *testing.T) {
	hash, err := security.HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	users := &fakeUserStore{byEmail: map[string]user.User{
		"jane@example.com": {ID: "u1", Email: "jane@example.com", PasswordHash: hash},
	}}
	store := session.NewMemoryStore(time.Hour)
	r := newAuthRouter(users, store)

	t.Run("valid credentials", func(t *testing.T) {
		w := postJSON(r, "/auth/login", `{"email":"jane@example.com","password":"s3cret-pass"}`)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
		}

		c := sessionCookie(t, w)

		sess, err := store.Get(context.Background(), c.Value)
		if err != nil {
			t.Fatalf("session not in store: %v", err)
		}
		if sess.UserID != "u1" {
			t.Errorf("session user = %q", sess.UserID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		w := postJSON(r, "/auth/login", `{"email":"jane@example.com","password":"wrong-pass"}`)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
		assertErrorCode(t, w, "invalid_credentials")
	})

	t.Run("unknown email", func(t *testing.T) {
		// same response as wrong password, no account probing
		w := postJSON(r, "/auth/login", `{"email":"nobody@example.com","password":"s3cret-pass"}`)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
		assertErrorCode(t, w, "invalid_credentials")
	})
}

func TestLogout(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)

	sess, err := store.Create(context.Background(), "u1", "jane@example.com")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	r := newAuthRouter(&fakeUserStore{byEmail: map[string]user.User{}}, store)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sess.ID})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}

	if _, err := store.Get(context.Background(), sess.ID); err != session.ErrNotFound {
		t.Fatalf("session still in store after logout: %v", err)
	}

	c := sessionCookie(t, w)
	if c.MaxAge >= 0 {
		t.Errorf("cookie not cleared, MaxAge = %d", c.MaxAge)
	}

	// logging out again is a no-op, still 204
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("second logout: %d, want 204", w.Code)
	}
}
