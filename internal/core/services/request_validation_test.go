package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/test/mocks"
)

func TestResourceRequestService_Validation(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		resources []domain.ResourceID
		wantKind  domain.ErrorKind
	}{
		{"empty set", "Bot Wars", nil, domain.KindMissingField},
		{"unknown resource", "Bot Wars", []domain.ResourceID{domain.ResourceCCFLab, "moon-base"}, domain.KindInvalidRange},
		{"blank event name", "   ", []domain.ResourceID{domain.ResourceCCFLab}, domain.KindMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockResourceRequestRepository()
			svc := NewResourceRequestService(repo, zap.NewNop())

			_, err := svc.Submit(context.Background(), mocks.AssociationActor, domain.NewResourceRequest{
				EventName: tt.eventName,
				Date:      "2024-05-10",
				Resources: tt.resources,
			})
			assert.Equal(t, tt.wantKind, domain.KindOf(err))
			assert.Empty(t, repo.CreateCalls)
		})
	}
}

func TestResourceRequestService_DeduplicatesInCatalogOrder(t *testing.T) {
	repo := mocks.NewMockResourceRequestRepository()
	svc := NewResourceRequestService(repo, zap.NewNop())

	rr, err := svc.Submit(context.Background(), mocks.AssociationActor, domain.NewResourceRequest{
		EventName: "Bot Wars",
		Date:      "2024-05-10",
		Resources: []domain.ResourceID{domain.ResourcePESField, domain.ResourceAuditorium, domain.ResourcePESField},
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.ResourceID{domain.ResourceAuditorium, domain.ResourcePESField}, rr.Resources)
}

func TestResourceRequestService_DecideIsAdminOnly(t *testing.T) {
	repo := mocks.NewMockResourceRequestRepository()
	svc := NewResourceRequestService(repo, zap.NewNop())
	ctx := context.Background()
	rr, err := svc.Submit(ctx, mocks.AssociationActor, domain.NewResourceRequest{
		EventName: "Bot Wars", Date: "2024-05-10", Resources: []domain.ResourceID{domain.ResourceCCFLab},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Decide(ctx, mocks.FacultyActor, rr.ID, domain.StatusApproved), domain.ErrPermissionDenied)
	require.NoError(t, svc.Decide(ctx, mocks.AdminActor, rr.ID, domain.StatusRejected))
	assert.Len(t, repo.StatusUpdates, 1)
}

func TestBookingService(t *testing.T) {
	start := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	t.Run("end must follow start", func(t *testing.T) {
		repo := mocks.NewMockBookingRepository()
		svc := NewBookingService(repo, zap.NewNop())
		for _, end := range []time.Time{start, start.Add(-time.Hour)} {
			_, err := svc.Book(context.Background(), mocks.AssociationActor, domain.NewBooking{
				ResourceID: domain.ResourceAuditorium, Title: "Talk", Start: start, End: end,
			})
			assert.ErrorIs(t, err, domain.ErrInvalidRange)
		}
		assert.Zero(t, repo.CreateCalls)
	})

	t.Run("overlap is rejected", func(t *testing.T) {
		repo := mocks.NewMockBookingRepository()
		svc := NewBookingService(repo, zap.NewNop())
		ctx := context.Background()

		_, err := svc.Book(ctx, mocks.AssociationActor, domain.NewBooking{
			ResourceID: domain.ResourceAuditorium, Title: "Talk", Start: start, End: start.Add(2 * time.Hour),
		})
		require.NoError(t, err)

		_, err = svc.Book(ctx, mocks.OtherAssociation, domain.NewBooking{
			ResourceID: domain.ResourceAuditorium, Title: "Clash", Start: start.Add(time.Hour), End: start.Add(3 * time.Hour),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRange)

		_, err = svc.Book(ctx, mocks.OtherAssociation, domain.NewBooking{
			ResourceID: domain.ResourceAuditorium, Title: "After", Start: start.Add(2 * time.Hour), End: start.Add(3 * time.Hour),
		})
		require.NoError(t, err)

		day, err := svc.Availability(ctx, mocks.FacultyActor, domain.ResourceAuditorium, start.Add(5*time.Hour))
		require.NoError(t, err)
		assert.Len(t, day, 2)
	})

	t.Run("booking from the previous day still blocks", func(t *testing.T) {
		repo := mocks.NewMockBookingRepository()
		svc := NewBookingService(repo, zap.NewNop())
		ctx := context.Background()
		late := time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC)

		_, err := svc.Book(ctx, mocks.AssociationActor, domain.NewBooking{
			ResourceID: domain.ResourceAuditorium, Title: "Night rehearsal", Start: late, End: late.Add(5 * time.Hour),
		})
		require.NoError(t, err)

		_, err = svc.Book(ctx, mocks.OtherAssociation, domain.NewBooking{
			ResourceID: domain.ResourceAuditorium, Title: "Early", Start: late.Add(3 * time.Hour), End: late.Add(4 * time.Hour),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRange)
		assert.Equal(t, 1, repo.CreateCalls)

		next, err := svc.Availability(ctx, mocks.FacultyActor, domain.ResourceAuditorium, late.Add(24*time.Hour))
		require.NoError(t, err)
		assert.Len(t, next, 1)
	})

	t.Run("store constraint rejects a racing booking", func(t *testing.T) {
		repo := mocks.NewMockBookingRepository()
		repo.CreateError = domain.NewError(domain.KindInvalidRange, "create booking: overlaps an existing record", nil)
		svc := NewBookingService(repo, zap.NewNop())

		_, err := svc.Book(context.Background(), mocks.AssociationActor, domain.NewBooking{
			ResourceID: domain.ResourceAuditorium, Title: "Talk", Start: start, End: start.Add(time.Hour),
		})
		assert.Equal(t, domain.KindInvalidRange, domain.KindOf(err))
		assert.Equal(t, 1, repo.CreateCalls)
	})

	t.Run("blank title", func(t *testing.T) {
		repo := mocks.NewMockBookingRepository()
		svc := NewBookingService(repo, zap.NewNop())

		_, err := svc.Book(context.Background(), mocks.AssociationActor, domain.NewBooking{
			ResourceID: domain.ResourceAuditorium, Title: "   ", Start: start, End: start.Add(time.Hour),
		})
		assert.Equal(t, domain.KindMissingField, domain.KindOf(err))
		assert.Zero(t, repo.CreateCalls)
	})
}

func TestCollaborationService_OnlyApprovedEvents(t *testing.T) {
	events := mocks.NewMockEventRequestRepository()
	events.SeedEvent(mocks.TestEvent(mocks.EventID1, "user-2", domain.StatusApproved))
	events.SeedEvent(mocks.TestEvent(mocks.EventID2, "user-2", domain.StatusPending))
	svc := NewCollaborationService(mocks.NewMockCollaborationRepository(), events, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Request(ctx, mocks.AssociationActor, domain.NewCollaboration{EventID: mocks.EventID2})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	c, err := svc.Request(ctx, mocks.AssociationActor, domain.NewCollaboration{EventID: mocks.EventID1, Message: "count us in"})
	require.NoError(t, err)
	assert.Equal(t, "Hackathon "+mocks.EventID1, c.EventName)

	list, err := svc.List(ctx, mocks.AssociationActor)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUserService(t *testing.T) {
	accounts := mocks.NewMockAccountRepository()
	svc := NewUserService(accounts, NewRoleResolver(DefaultRolePolicy()), zap.NewNop())
	ctx := context.Background()

	_, err := svc.Register(ctx, mocks.FacultyActor, "new@campus.edu", "password123")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	view, err := svc.Register(ctx, mocks.AdminActor, " HOD@campus.edu ", "password123")
	require.NoError(t, err)
	assert.Equal(t, "hod@campus.edu", view.Email)
	assert.Equal(t, domain.RoleFaculty, view.Role)

	_, err = svc.Register(ctx, mocks.AdminActor, "hod@campus.edu", "password123")
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	_, err = svc.Register(ctx, mocks.AdminActor, "not-an-email", "password123")
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	_, err = svc.Register(ctx, mocks.AdminActor, "x@campus.edu", "short")
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	list, err := svc.List(ctx, mocks.AdminActor)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.RoleFaculty, list[0].Role)
}

func TestReportService_Ownership(t *testing.T) {
	svc := NewReportService(mocks.NewMockReportRepository(), zap.NewNop())
	ctx := context.Background()

	r, err := svc.Create(ctx, mocks.AssociationActor, domain.ReportDraft{Title: "Summary", Content: "It went well."})
	require.NoError(t, err)

	_, err = svc.Get(ctx, mocks.OtherAssociation, r.ID)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	updated, err := svc.Update(ctx, mocks.AssociationActor, r.ID, domain.ReportDraft{Title: "Summary v2", Content: "Even better."})
	require.NoError(t, err)
	assert.Equal(t, "Summary v2", updated.Title)

	_, err = svc.Update(ctx, mocks.AssociationActor, r.ID, domain.ReportDraft{Title: "", Content: "x"})
	assert.ErrorIs(t, err, domain.ErrMissingField)
}
