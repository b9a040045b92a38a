package service

import (
	"context"
	"errors"
	"sync"

	bookingsrepo "roomly/internal/bookings/repository"
	userserrors "roomly/internal/users/errors"
	"roomly/internal/users/repository"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/model"
	"roomly/pkg/password"
	"roomly/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

type UserService interface {
	Create(ctx context.Context, payload *model.UserCreate) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context, skip int64, limit int) ([]*model.User, int64, error)
	Delete(ctx context.Context, id string) error
}

type userService struct {
	repo        repository.UserRepository
	bookingRepo bookingsrepo.BookingRepository
	hasher      password.Hasher
	validate    *validator.Validate
	cfg         *config.Config
}

func NewUserService(
	repo repository.UserRepository,
	bookingRepo bookingsrepo.BookingRepository,
	hasher password.Hasher,
	cfg *config.Config,
) UserService {
	return &userService{
		repo:        repo,
		bookingRepo: bookingRepo,
		hasher:      hasher,
		validate:    validator.New(),
		cfg:         cfg,
	}
}

func (s *userService) Create(ctx context.Context, payload *model.UserCreate) (*model.User, error) {
	payload.Username = sanitizer.TrimAndNormalize(payload.Username)
	payload.Email = sanitizer.NormalizeEmail(payload.Email)

	if err := s.validate.Struct(payload); err != nil {
		s.cfg.Log.Warn("User validation failed", "error", err)
		return nil, apperrors.Validation("User validation failed", map[string]any{"error": err.Error()})
	}

	hash, err := s.hasher.Hash(payload.Password)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	user := &model.User{
		Username:     payload.Username,
		Email:        payload.Email,
		Phone:        payload.Phone,
		PasswordHash: hash,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrDuplicateUsername) {
			return nil, apperrors.Conflict("Username already exists")
		}
		if errors.Is(err, userserrors.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("Email already exists")
		}
		return nil, apperrors.Internal("Failed to create user", err)
	}

	s.cfg.Log.Info("User created", "id", user.ID, "username", user.Username)
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, skip int64, limit int) ([]*model.User, int64, error) {
	var count int64
	var users []*model.User
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count users", "error", errCount)
			errCount = apperrors.Internal("Failed to count users", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		users, errFind = s.repo.FindAll(ctx, skip, limit)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list users", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve users", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return users, count, nil
}

// Delete refuses to remove a user that still has non-cancelled bookings.
func (s *userService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("User ID cannot be empty")
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return s.mapLookupError(err, id)
	}

	active, err := s.bookingRepo.CountActiveByUser(ctx, id)
	if err != nil {
		return apperrors.Internal("Failed to check user bookings", err)
	}
	if active > 0 {
		return apperrors.InvalidState("User has active bookings and cannot be deleted")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("User", id)
		}
		return apperrors.Internal("Failed to delete user", err)
	}

	s.cfg.Log.Info("User deleted", "id", id)
	return nil
}

func (s *userService) mapLookupError(err error, id string) error {
	if errors.Is(err, userserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("User", id)
	}
	if errors.Is(err, userserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid user ID format")
	}
	return apperrors.Internal("Failed to retrieve user", err)
}
