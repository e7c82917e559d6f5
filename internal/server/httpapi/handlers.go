package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/securepass/vault/internal/common"
	"github.com/securepass/vault/internal/server/models"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type authResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

type saltResponse struct {
	Salt string `json:"salt"`
}

type credentialRequest struct {
	Domain   string `json:"domain"`
	Username string `json:"username"`
	Secret   string `json:"secret"`
}

type credentialResponse struct {
	ID        string    `json:"id"`
	Domain    string    `json:"domain"`
	Username  string    `json:"username"`
	Secret    string    `json:"secret"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type backupUploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type backupDownloadResponse struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toCredentialResponse(c *models.Credential) credentialResponse {
	return credentialResponse{
		ID:        c.ID,
		Domain:    c.Domain,
		Username:  c.Username,
		Secret:    c.Secret,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps service errors to HTTP statuses. Internal details never
// reach the client; they go to the log instead.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	var msg string

	switch {
	case errors.Is(err, common.ErrDuplicateEmail):
		status, msg = http.StatusConflict, "email already registered"
	case errors.Is(err, common.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, common.ErrSessionExpired):
		status, msg = http.StatusUnauthorized, "session expired"
	case errors.Is(err, common.ErrUnauthenticated):
		status, msg = http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, common.ErrForbidden):
		status, msg = http.StatusForbidden, "forbidden"
	case errors.Is(err, common.ErrorNotFound):
		status, msg = http.StatusNotFound, "not found"
	default:
		s.logger.Error(r.Context(), err.Error())
		status, msg = http.StatusInternalServerError, "internal error"
	}

	s.writeJSON(w, status, errorResponse{Error: msg})
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {

	var req registerRequest
	if err := decodeBody(r, &req); err != nil || req.Email == "" || req.Password == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email and password are required"})
		return
	}

	s.logger.Info(r.Context(), "Registration request", "email", req.Email)

	user, session, err := s.auth.Signup(r.Context(), req.Name, req.Email, []byte(req.Password))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "email", user.Email)
	s.writeJSON(w, http.StatusCreated, authResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      userResponse{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {

	var req loginRequest
	if err := decodeBody(r, &req); err != nil || req.Email == "" || req.Password == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email and password are required"})
		return
	}

	user, session, err := s.auth.Login(r.Context(), req.Email, []byte(req.Password))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, authResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      userResponse{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

// handleGetSalt returns the key-derivation salt for an email. Unknown
// emails get a random salt of the same shape, so the endpoint cannot be
// used to probe for accounts.
func (s *Server) handleGetSalt(w http.ResponseWriter, r *http.Request) {

	email := r.URL.Query().Get("email")
	if email == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email is required"})
		return
	}

	salt, err := s.auth.GetSalt(r.Context(), email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, saltResponse{Salt: base64.StdEncoding.EncodeToString(salt)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {

	if err := s.auth.Logout(r.Context(), bearerToken(r)); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {

	user, err := s.auth.Verify(r.Context(), bearerToken(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, userResponse{ID: user.ID, Name: user.Name, Email: user.Email})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {

	if err := s.auth.DeleteAccount(r.Context(), bearerToken(r)); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Account deleted", "user_id", userID(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateCredential(w http.ResponseWriter, r *http.Request) {

	var req credentialRequest
	if err := decodeBody(r, &req); err != nil || req.Domain == "" || req.Secret == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "domain and secret are required"})
		return
	}

	cred, err := s.vault.Put(r.Context(), userID(r), req.Domain, req.Username, req.Secret)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toCredentialResponse(cred))
}

func (s *Server) handleListCredentials(w http.ResponseWriter, r *http.Request) {

	creds, err := s.vault.List(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result := make([]credentialResponse, 0, len(creds))
	for _, c := range creds {
		result = append(result, toCredentialResponse(c))
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetCredential(w http.ResponseWriter, r *http.Request) {

	cred, err := s.vault.Get(r.Context(), userID(r), r.PathValue("domain"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toCredentialResponse(cred))
}

func (s *Server) handleUpdateCredential(w http.ResponseWriter, r *http.Request) {

	var req credentialRequest
	if err := decodeBody(r, &req); err != nil || req.Domain == "" || req.Secret == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "domain and secret are required"})
		return
	}

	cred, err := s.vault.Update(r.Context(), userID(r), r.PathValue("id"), req.Domain, req.Username, req.Secret)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toCredentialResponse(cred))
}

func (s *Server) handleDeleteCredential(w http.ResponseWriter, r *http.Request) {

	if err := s.vault.Delete(r.Context(), userID(r), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBackupUpload(w http.ResponseWriter, r *http.Request) {

	key, url, err := s.backup.PresignUpload(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, backupUploadResponse{Key: key, URL: url})
}

func (s *Server) handleBackupDownload(w http.ResponseWriter, r *http.Request) {

	url, err := s.backup.PresignDownload(r.Context(), userID(r), r.PathValue("key"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, backupDownloadResponse{URL: url})
}
