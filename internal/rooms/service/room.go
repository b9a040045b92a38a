package service

import (
	"context"
	"errors"
	"sync"

	bookingsrepo "roomly/internal/bookings/repository"
	roomserrors "roomly/internal/rooms/errors"
	"roomly/internal/rooms/repository"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/model"
	"roomly/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

type RoomService interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	List(ctx context.Context, skip int64, limit int) ([]*model.Room, int64, error)
	Update(ctx context.Context, id string, updates *model.RoomUpdate) (*model.Room, error)
	Delete(ctx context.Context, id string) error
}

type roomService struct {
	repo        repository.RoomRepository
	bookingRepo bookingsrepo.BookingRepository
	validate    *validator.Validate
	cfg         *config.Config
}

func NewRoomService(repo repository.RoomRepository, bookingRepo bookingsrepo.BookingRepository, cfg *config.Config) RoomService {
	return &roomService{
		repo:        repo,
		bookingRepo: bookingRepo,
		validate:    validator.New(),
		cfg:         cfg,
	}
}

func (s *roomService) Create(ctx context.Context, room *model.Room) error {
	room.ID = ""
	room.Name = sanitizer.NormalizeName(room.Name)
	room.Location = sanitizer.TrimAndNormalize(room.Location)
	room.IsAvailable = true

	if err := s.validate.Struct(room); err != nil {
		s.cfg.Log.Warn("Room validation failed", "error", err)
		return apperrors.Validation("Room validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, room); err != nil {
		if errors.Is(err, roomserrors.ErrDuplicateName) {
			return apperrors.Conflict("Room name already exists")
		}
		return apperrors.Internal("Failed to create room", err)
	}

	s.cfg.Log.Info("Room created", "id", room.ID, "name", room.Name)
	return nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}
	return room, nil
}

func (s *roomService) List(ctx context.Context, skip int64, limit int) ([]*model.Room, int64, error) {
	var count int64
	var rooms []*model.Room
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count rooms", "error", errCount)
			errCount = apperrors.Internal("Failed to count rooms", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		rooms, errFind = s.repo.FindAll(ctx, skip, limit)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list rooms", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve rooms", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return rooms, count, nil
}

func (s *roomService) Update(ctx context.Context, id string, updates *model.RoomUpdate) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}
	if err := s.validate.Struct(updates); err != nil {
		s.cfg.Log.Warn("Room update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	if updates.Name != "" {
		room.Name = sanitizer.NormalizeName(updates.Name)
	}
	if updates.Location != "" {
		room.Location = sanitizer.TrimAndNormalize(updates.Location)
	}
	if updates.Capacity != nil {
		room.Capacity = *updates.Capacity
	}
	if updates.Description != nil {
		room.Description = *updates.Description
	}
	if updates.IsAvailable != nil {
		room.IsAvailable = *updates.IsAvailable
	}

	if err := s.repo.Update(ctx, id, room); err != nil {
		if errors.Is(err, roomserrors.ErrDuplicateName) {
			return nil, apperrors.Conflict("Room name already exists")
		}
		if errors.Is(err, roomserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Room", id)
		}
		return nil, apperrors.Internal("Failed to update room", err)
	}

	s.cfg.Log.Info("Room updated", "id", id)
	return room, nil
}

// Delete refuses to remove a room that still has non-cancelled bookings, so
// bookings never end up pointing at a missing room.
func (s *roomService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return s.mapLookupError(err, id)
	}

	active, err := s.bookingRepo.CountActiveByRoom(ctx, id)
	if err != nil {
		return apperrors.Internal("Failed to check room bookings", err)
	}
	if active > 0 {
		return apperrors.InvalidState("Room has active bookings and cannot be deleted")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Room", id)
		}
		return apperrors.Internal("Failed to delete room", err)
	}

	s.cfg.Log.Info("Room deleted", "id", id)
	return nil
}

func (s *roomService) mapLookupError(err error, id string) error {
	if errors.Is(err, roomserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Room", id)
	}
	if errors.Is(err, roomserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid room ID format")
	}
	return apperrors.Internal("Failed to retrieve room", err)
}
