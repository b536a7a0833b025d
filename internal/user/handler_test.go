package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, store Store, av AvatarPicker) http.Handler {
	t.Helper()
	h := NewHandler(newTestService(t, store, av), zap.NewNop())
	r := chi.NewRouter()
	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
	r.Get("/profile/picture/{username}", h.ProfilePicture)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec.Code, out
}

const aliceSignup = `{"username":"alice","password":"pw","contact":"alice@example.com","contactType":"email"}`

func TestHandler_Signup(t *testing.T) {
	t.Run("created then duplicate", func(t *testing.T) {
		r := newTestRouter(t, NewMemoryStore(), &fakeAvatar{url: "https://i.imgflip.com/1.jpg"})

		code, body := do(t, r, http.MethodPost, "/signup", aliceSignup)
		assert.Equal(t, http.StatusCreated, code)
		assert.Equal(t, "User created successfully", body["message"])
		assert.NotContains(t, body, "password")

		code, body = do(t, r, http.MethodPost, "/signup", aliceSignup)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "Username already exists", body["message"])
	})

	t.Run("password over 72 bytes", func(t *testing.T) {
		r := newTestRouter(t, NewMemoryStore(), &fakeAvatar{url: "https://i.imgflip.com/1.jpg"})
		body := `{"username":"alice","password":"` + strings.Repeat("a", 80) + `","contact":"alice@example.com","contactType":"email"}`

		code, resp := do(t, r, http.MethodPost, "/signup", body)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "Invalid request body", resp["message"])
	})

	t.Run("avatar failure", func(t *testing.T) {
		r := newTestRouter(t, NewMemoryStore(), &fakeAvatar{err: errors.New("down")})
		code, body := do(t, r, http.MethodPost, "/signup", aliceSignup)
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, "Error fetching memes from API", body["message"])
	})

	t.Run("store failure", func(t *testing.T) {
		r := newTestRouter(t, &fakeStore{createErr: ErrStoreUnavailable}, &fakeAvatar{url: "u"})
		code, body := do(t, r, http.MethodPost, "/signup", aliceSignup)
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, "Internal server error", body["message"])
	})

	t.Run("malformed body", func(t *testing.T) {
		r := newTestRouter(t, NewMemoryStore(), &fakeAvatar{url: "u"})
		code, _ := do(t, r, http.MethodPost, "/signup", `{"username":`)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("missing fields", func(t *testing.T) {
		r := newTestRouter(t, NewMemoryStore(), &fakeAvatar{url: "u"})
		code, _ := do(t, r, http.MethodPost, "/signup", `{"username":"x"}`)
		assert.Equal(t, http.StatusBadRequest, code)
	})
}

func TestHandler_Login(t *testing.T) {
	r := newTestRouter(t, NewMemoryStore(), &fakeAvatar{url: "u"})
	code, _ := do(t, r, http.MethodPost, "/signup", aliceSignup)
	require.Equal(t, http.StatusCreated, code)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantMsg  string
	}{
		{"by username", `{"identifier":"alice","password":"pw"}`, http.StatusOK, "Login successful"},
		{"by contact", `{"identifier":"alice@example.com","password":"pw"}`, http.StatusOK, "Login successful"},
		{"wrong password", `{"identifier":"alice","password":"bad"}`, http.StatusUnauthorized, "Invalid credentials"},
		{"unknown user", `{"identifier":"ghost","password":"pw"}`, http.StatusUnauthorized, "Invalid credentials"},
		{"malformed", `nope`, http.StatusBadRequest, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, r, http.MethodPost, "/login", tt.body)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMsg, body["message"])
		})
	}

	t.Run("store failure", func(t *testing.T) {
		r := newTestRouter(t, &fakeStore{findErr: ErrStoreUnavailable}, &fakeAvatar{url: "u"})
		code, body := do(t, r, http.MethodPost, "/login", `{"identifier":"alice","password":"pw"}`)
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, "Internal server error", body["message"])
	})
}

func TestHandler_ProfilePicture(t *testing.T) {
	r := newTestRouter(t, NewMemoryStore(), &fakeAvatar{url: "https://i.imgflip.com/9.jpg"})
	code, _ := do(t, r, http.MethodPost, "/signup", aliceSignup)
	require.Equal(t, http.StatusCreated, code)

	code, body := do(t, r, http.MethodGet, "/profile/picture/alice", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "https://i.imgflip.com/9.jpg", body["profilePicture"])

	code, body = do(t, r, http.MethodGet, "/profile/picture/ghost", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "user not found", body["message"])

	t.Run("null picture", func(t *testing.T) {
		store := NewMemoryStore()
		_, err := store.Create(t.Context(), &User{Username: "legacy", Contact: "c", ContactType: "phone"})
		require.NoError(t, err)

		r := newTestRouter(t, store, &fakeAvatar{url: "u"})
		code, body := do(t, r, http.MethodGet, "/profile/picture/legacy", "")
		assert.Equal(t, http.StatusOK, code)
		v, ok := body["profilePicture"]
		assert.True(t, ok)
		assert.Nil(t, v)
	})

	t.Run("store failure", func(t *testing.T) {
		r := newTestRouter(t, &fakeStore{findErr: ErrStoreUnavailable}, &fakeAvatar{url: "u"})
		code, body := do(t, r, http.MethodGet, "/profile/picture/alice", "")
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, "internal server error", body["message"])
	})
}
