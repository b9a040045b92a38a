package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "roomly/internal/bookings/errors"
	"roomly/internal/bookings/repository"
	"roomly/internal/bookings/validator"
	roomserrors "roomly/internal/rooms/errors"
	roomsrepo "roomly/internal/rooms/repository"
	userserrors "roomly/internal/users/errors"
	usersrepo "roomly/internal/users/repository"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/events"
	"roomly/pkg/model"
	"roomly/pkg/sanitizer"
	"roomly/pkg/timeutil"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	List(ctx context.Context, filter repository.ListFilter, skip int64, limit int) ([]*model.Booking, int64, error)
	Cancel(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.RoomLockRepository
	userRepo  usersrepo.UserRepository
	roomRepo  roomsrepo.RoomRepository
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
	now       func() timeutil.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.RoomLockRepository,
	userRepo usersrepo.UserRepository,
	roomRepo roomsrepo.RoomRepository,
	bookingValidator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		userRepo:  userRepo,
		roomRepo:  roomRepo,
		validator: bookingValidator,
		publisher: publisher,
		cfg:       cfg,
		now:       timeutil.Now,
	}
}

// Create runs the full validation pipeline and persists the booking as
// confirmed. The overlap check and the insert run under a per-room advisory
// lock plus a transaction, so two concurrent overlapping requests for the
// same room cannot both succeed.
func (s *bookingService) Create(ctx context.Context, booking *model.Booking) error {
	booking.ID = ""
	booking.Status = model.StatusConfirmed
	booking.Purpose = sanitizer.NormalizePurpose(booking.Purpose)

	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.checkReferences(ctx, booking); err != nil {
		return err
	}

	if err := s.checkTimes(booking); err != nil {
		return err
	}

	lock, err := s.lockRepo.Acquire(ctx, booking.RoomID, s.cfg.RoomLockTTL)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrLockHeld) {
			return apperrors.Conflict("Room is currently being booked by another request, please retry")
		}
		return apperrors.Internal("Failed to acquire room lock", err)
	}
	defer func() {
		if releaseErr := s.lockRepo.Release(ctx, lock.ID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release room lock", "lock_id", lock.ID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.checkConflict(sessCtx, booking); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.TypeBookingCreated, booking)

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"room_id", booking.RoomID,
		"user_id", booking.UserID,
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
	)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}
	return booking, nil
}

func (s *bookingService) List(ctx context.Context, filter repository.ListFilter, skip int64, limit int) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, filter, skip, limit)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// Cancel flips the booking to cancelled. Cancelled bookings stay stored for
// history but no longer block the room.
func (s *bookingService) Cancel(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapLookupError(err, id)
	}

	if booking.Cancelled() {
		return apperrors.InvalidState("Booking is already cancelled")
	}

	if err := s.repo.UpdateStatus(ctx, id, model.StatusCancelled); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		return apperrors.Internal("Failed to cancel booking", err)
	}

	booking.Status = model.StatusCancelled
	s.publish(ctx, events.TypeBookingCancelled, booking)

	s.cfg.Log.Info("Booking cancelled", "id", id)
	return nil
}

// Delete removes the record unconditionally, bypassing cancellation.
func (s *bookingService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapLookupError(err, id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		return apperrors.Internal("Failed to delete booking", err)
	}

	s.publish(ctx, events.TypeBookingDeleted, booking)

	s.cfg.Log.Info("Booking deleted", "id", id)
	return nil
}

// --- Pipeline steps ---

func (s *bookingService) checkReferences(ctx context.Context, booking *model.Booking) error {
	if _, err := s.userRepo.FindByID(ctx, booking.UserID); err != nil {
		if errors.Is(err, userserrors.ErrNotFound) || errors.Is(err, userserrors.ErrInvalidID) {
			return apperrors.NotFound("User")
		}
		return apperrors.Internal("Failed to look up user", err)
	}

	room, err := s.roomRepo.FindByID(ctx, booking.RoomID)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) || errors.Is(err, roomserrors.ErrInvalidID) {
			return apperrors.NotFound("Room")
		}
		return apperrors.Internal("Failed to look up room", err)
	}

	if !room.IsAvailable {
		return apperrors.InvalidState("Room is not available for booking")
	}

	return nil
}

func (s *bookingService) checkTimes(booking *model.Booking) error {
	// Idempotent re-normalization: values decoded at the boundary are
	// already canonical, values constructed in-process may not be.
	booking.StartTime = timeutil.FromStd(booking.StartTime.Time)
	booking.EndTime = timeutil.FromStd(booking.EndTime.Time)

	if !booking.StartTime.Before(booking.EndTime) {
		return apperrors.InvalidRange("Start time must be strictly before end time")
	}

	// Strictly-past starts are rejected; a start equal to now passes.
	if booking.StartTime.Before(s.now()) {
		return apperrors.PastTime("Cannot book a time in the past")
	}

	return nil
}

// checkConflict runs the overlap test against every non-cancelled booking in
// the room, short-circuiting on the first hit. The booking itself is skipped
// by identity when revalidating an existing record.
func (s *bookingService) checkConflict(ctx context.Context, booking *model.Booking) error {
	existing, err := s.repo.FindByRoom(ctx, booking.RoomID, true)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}

	for _, b := range existing {
		if b.ID != "" && b.ID == booking.ID {
			continue
		}
		if overlaps(b.StartTime, b.EndTime, booking.StartTime, booking.EndTime) {
			return apperrors.Conflict(fmt.Sprintf(
				"Time slot conflicts with an existing booking (%s - %s)",
				b.StartTime.Format(time.RFC3339),
				b.EndTime.Format(time.RFC3339),
			))
		}
	}
	return nil
}

// overlaps reports whether an existing interval [s, e) conflicts with a
// candidate interval [cs, ce). The three clauses are kept explicit to pin
// the boundary behavior: an existing booking ending exactly at the
// candidate's start does not conflict, nor does one starting exactly at the
// candidate's end.
func overlaps(s, e, cs, ce timeutil.Time) bool {
	// existing contains or starts at the candidate's start
	if !s.After(cs) && e.After(cs) {
		return true
	}
	// existing ends inside or exactly at the candidate's end
	if s.Before(ce) && !e.Before(ce) {
		return true
	}
	// existing fully nested inside the candidate
	if !s.Before(cs) && !e.After(ce) {
		return true
	}
	return false
}

func (s *bookingService) mapLookupError(err error, id string) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	return apperrors.Internal("Failed to retrieve booking", err)
}

func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking) {
	if err := s.publisher.Publish(ctx, events.NewBookingEvent(eventType, booking)); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}
