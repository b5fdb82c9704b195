package handler

import (
	"net/http"

	"github.com/AchilleasB/campus-events/event-service/internal/adapters/middleware"
	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/services"
)

// actorFrom resolves the caller of a request from its hydrated session.
func actorFrom(r *http.Request, resolver *services.RoleResolver) domain.Actor {
	return resolver.Actor(middleware.SessionFromContext(r.Context()))
}
