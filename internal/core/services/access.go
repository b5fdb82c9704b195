package services

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

func authorize(actor domain.Actor, perm domain.Permission) error {
	if actor.Role.Allows(perm) {
		return nil
	}
	return domain.NewError(domain.KindPermissionDenied, string(actor.Role)+" may not "+string(perm), nil)
}

// authorizeAny passes when the actor holds at least one of perms.
func authorizeAny(actor domain.Actor, perms ...domain.Permission) error {
	for _, p := range perms {
		if actor.Role.Allows(p) {
			return nil
		}
	}
	return domain.NewError(domain.KindPermissionDenied, string(actor.Role)+" may not perform this action", nil)
}

// ownerFilter scopes f to the actor unless the actor may see everything.
func ownerFilter(actor domain.Actor, f ports.RequestFilter, viewAll domain.Permission) ports.RequestFilter {
	if !actor.Role.Allows(viewAll) {
		f.UserID = actor.UserID
	}
	return f
}

// recordID turns an id that cannot name a stored row into NotFound before
// the store sees it.
func recordID(id string) error {
	if err := uuid.Validate(id); err != nil {
		return domain.NewError(domain.KindNotFound, "no record with id "+strconv.Quote(id), err)
	}
	return nil
}

func decisionStatus(status domain.Status) error {
	if !status.IsDecision() {
		return domain.NewValidationError(domain.KindInvalidRange, "status", "status must be approved or rejected")
	}
	return nil
}

func statusPayload(entity, id, owner string, status domain.Status, actor domain.Actor, at time.Time) ([]byte, error) {
	changedBy := actor.UserID
	if changedBy == "" {
		changedBy = actor.Email
	}
	return json.Marshal(ports.StatusChangedEvent{
		Entity:    entity,
		EntityID:  id,
		OwnerID:   owner,
		Status:    status,
		ChangedBy: changedBy,
		ChangedAt: at.UTC(),
	})
}
