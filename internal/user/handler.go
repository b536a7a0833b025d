package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Service *Service
	log     *zap.Logger
}

func NewHandler(s *Service, log *zap.Logger) *Handler {
	return &Handler{Service: s, log: log}
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("decode signup body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, MessageResponse{Message: "Invalid request body"})
		return
	}

	res, err := h.Service.Signup(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			writeJSON(w, http.StatusBadRequest, MessageResponse{Message: "Username already exists"})
		case errors.Is(err, ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, MessageResponse{Message: "Invalid request body"})
		case errors.Is(err, ErrExternalUnavailable):
			writeJSON(w, http.StatusInternalServerError, MessageResponse{Message: "Error fetching memes from API"})
		default:
			writeJSON(w, http.StatusInternalServerError, MessageResponse{Message: "Internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("decode login body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, MessageResponse{Message: "Invalid request body"})
		return
	}

	res, err := h.Service.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, MessageResponse{Message: "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, MessageResponse{Message: "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) ProfilePicture(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	pic, err := h.Service.GetAvatar(r.Context(), username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, MessageResponse{Message: "user not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, MessageResponse{Message: "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, ProfilePictureResponse{ProfilePicture: pic})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
