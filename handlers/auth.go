package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"bulletnotes/auth"
	"bulletnotes/middleware"
	"bulletnotes/store"
)

// AuthHandler serves registration, local login and Google login/signup.
type AuthHandler struct {
	Users  *store.UserStore
	Tokens *auth.TokenService
	Google *auth.GoogleVerifier
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type googleRequest struct {
	Token string `json:"token"`
}

// Register creates a local-password account. POST /auth/
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}

	if _, err := h.Users.Create(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			http.Error(w, "username already taken", http.StatusBadRequest)
			return
		}
		http.Error(w, "could not create user", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// Token performs a local password login with form-encoded credentials and
// returns a bearer token. POST /auth/token
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := h.Users.VerifyPassword(r.Context(), username, password)
	if err != nil {
		// Missing user, wrong password and password-less accounts are all
		// the same answer.
		http.Error(w, "incorrect username or password", http.StatusUnauthorized)
		return
	}

	h.writeToken(w, user.ID, user.Username)
}

// GoogleLogin exchanges a Google ID token for a local bearer token, creating
// the account on first login. POST /auth/google
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}

	email, err := h.Google.VerifyIDToken(r.Context(), req.Token)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	user, err := h.Users.GetByUsername(r.Context(), email)
	if errors.Is(err, store.ErrNotFound) {
		user, err = h.Users.CreateExternal(r.Context(), email)
	}
	if err != nil {
		http.Error(w, "could not resolve user", http.StatusInternalServerError)
		return
	}

	h.writeToken(w, user.ID, user.Username)
}

// GoogleSignup creates an account from a Google ID token without issuing a
// token; the caller logs in separately. POST /auth/google-signup
func (h *AuthHandler) GoogleSignup(w http.ResponseWriter, r *http.Request) {
	var req googleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}

	email, err := h.Google.VerifyIDToken(r.Context(), req.Token)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := h.Users.GetByUsername(r.Context(), email); err == nil {
		json.NewEncoder(w).Encode(map[string]string{"message": "already exists, please login"})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		http.Error(w, "could not resolve user", http.StatusInternalServerError)
		return
	}

	if _, err := h.Users.CreateExternal(r.Context(), email); err != nil {
		http.Error(w, "could not create user", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "created"})
}

// CurrentUser echoes the resolved identity. GET /
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(map[string]any{
		"username": identity.Username,
		"id":       identity.UserID,
	})
}

func (h *AuthHandler) writeToken(w http.ResponseWriter, userID int, username string) {
	token, err := h.Tokens.Issue(userID, username)
	if err != nil {
		http.Error(w, "token generation failed", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(tokenResponse{AccessToken: token, TokenType: "bearer"})
}
