package mocks

import (
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

// TestAccount builds an account whose hash verifies against password.
func TestAccount(id, email, password string) domain.Account {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return domain.Account{
		ID:           id,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// TestEvent builds a pending event request owned by userID.
func TestEvent(id, userID string, status domain.Status) domain.EventRequest {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return domain.EventRequest{
		ID:          id,
		Association: "Robotics Club",
		EventName:   "Hackathon " + id,
		Date:        time.Date(2024, 4, 12, 0, 0, 0, 0, time.UTC),
		Status:      status,
		UserID:      userID,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

// CreateTestStatusEvent returns a sample relay payload.
func CreateTestStatusEvent() ports.StatusChangedEvent {
	return ports.StatusChangedEvent{
		Entity:    ports.TableEvents,
		EntityID:  "event-1",
		OwnerID:   "user-1",
		Status:    domain.StatusApproved,
		ChangedBy: "hod@example.com",
		ChangedAt: time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
	}
}

// Row ids for seeded records. Services reject ids that are not uuids.
const (
	EventID1  = "0b6f3c52-7d1e-4a8b-9f20-4c5d6e7f8a01"
	EventID2  = "0b6f3c52-7d1e-4a8b-9f20-4c5d6e7f8a02"
	EventID3  = "0b6f3c52-7d1e-4a8b-9f20-4c5d6e7f8a03"
	ReportID1 = "9e4d2a17-3c5b-4f68-8a91-2b3c4d5e6f01"
	MissingID = "5a1b2c3d-4e5f-4a6b-8c7d-8e9f0a1b2c3d"
)

// Actors for service tests.
var (
	AssociationActor = domain.Actor{UserID: "user-1", Email: "user1@example.com", Role: domain.RoleAssociation}
	OtherAssociation = domain.Actor{UserID: "user-2", Email: "user2@example.com", Role: domain.RoleAssociation}
	FacultyActor     = domain.Actor{Email: "hod@example.com", Role: domain.RoleFaculty}
	AdminActor       = domain.Actor{UserID: "admin-1", Email: "admin@example.com", Role: domain.RoleAdmin}
	GuestActor       = domain.Actor{Role: domain.RoleGuest}
)

var (
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
)

// TestRSAKey returns a process-wide 2048-bit key for signing session tokens.
func TestRSAKey() *rsa.PrivateKey {
	testKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		testKey = key
	})
	return testKey
}
