package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_SendsCredentialsAndReturnsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/login", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ann@x.com", req["email"])

		_ = json.NewEncoder(w).Encode(AuthResult{Token: "tok-1", User: User{ID: "u-1", Email: "ann@x.com"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	result, err := c.Login(context.Background(), "ann@x.com", []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, "tok-1", result.Token)
	assert.Equal(t, "u-1", result.User.ID)
}

func TestLogin_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Login(context.Background(), "ann@x.com", []byte("wrong"))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRegister_Conflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Register(context.Background(), "Ann", "ann@x.com", []byte("s"))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestDo_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL)
	_, err := c.ListCredentials(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGetSalt_DecodesAndEscapes(t *testing.T) {
	salt := []byte{9, 8, 7}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ann+test@x.com", r.URL.Query().Get("email"))
		_ = json.NewEncoder(w).Encode(map[string]string{"salt": base64.StdEncoding.EncodeToString(salt)})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	got, err := c.GetSalt(context.Background(), "ann+test@x.com")
	require.NoError(t, err)
	assert.Equal(t, salt, got)
}

func TestAuthenticatedRequestsCarryBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]Credential{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetToken("tok-1")
	_, err := c.ListCredentials(context.Background())
	require.NoError(t, err)
}

func TestGetCredential_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.GetCredential(context.Background(), "nowhere.example")
	assert.ErrorIs(t, err, ErrNotFound)
}
