package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
	"github.com/AchilleasB/campus-events/event-service/internal/core/services"
)

// RegistrationHandler is the admin user-management API. Roles are never
// submitted: they follow from the email.
type RegistrationHandler struct {
	users    ports.UserService
	resolver *services.RoleResolver
	logger   *zap.Logger
}

func NewRegistrationHandler(users ports.UserService, resolver *services.RoleResolver, logger *zap.Logger) *RegistrationHandler {
	return &RegistrationHandler{users: users, resolver: resolver, logger: logger}
}

type RegistrationRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *RegistrationHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context(), actorFrom(r, h.resolver))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if users == nil {
		users = []domain.AccountView{}
	}
	respondData(w, http.StatusOK, users, h.logger)
}

func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegistrationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	user, err := h.users.Register(r.Context(), actorFrom(r, h.resolver), req.Email, req.Password)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	respondData(w, http.StatusCreated, user, h.logger)
}
