package api

import (
	"net/http"
)

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/auth/signup")
		return
	}
	user, err := h.auth.Signup(r.Context(), req.Username, req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		respondServiceError(w, h.log, err, "POST", "/auth/signup")
		return
	}
	respondWithJSON(w, http.StatusCreated, user, "POST", "/auth/signup")
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/auth/login")
		return
	}
	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, h.log, err, "POST", "/auth/login")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "jwt",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	respondWithJSON(w, http.StatusOK, map[string]any{"user": user, "token": token}, "POST", "/auth/login")
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/auth/forgot-password")
		return
	}
	if err := h.auth.RequestReset(r.Context(), req.Email); err != nil {
		respondServiceError(w, h.log, err, "POST", "/auth/forgot-password")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Reset code sent if the account exists."},
		"POST", "/auth/forgot-password")
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"new_password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/auth/reset-password")
		return
	}
	if err := h.auth.CompleteReset(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		respondServiceError(w, h.log, err, "POST", "/auth/reset-password")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Password updated."}, "POST", "/auth/reset-password")
}
