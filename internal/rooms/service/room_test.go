package service

import (
	"context"
	"io"
	"testing"

	"roomly/internal/bookings/repository"
	roomserrors "roomly/internal/rooms/errors"
	"roomly/pkg/config"
	mongotx "roomly/pkg/db/mongo"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

const testRoomID = "507f1f77bcf86cd799439012"

type mockRoomRepository struct {
	createFunc   func(ctx context.Context, room *model.Room) error
	findByIDFunc func(ctx context.Context, id string) (*model.Room, error)
	updateFunc   func(ctx context.Context, id string, room *model.Room) error
	deleteFunc   func(ctx context.Context, id string) error
}

func (m *mockRoomRepository) Create(ctx context.Context, room *model.Room) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, room)
	}
	room.ID = testRoomID
	return nil
}

func (m *mockRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Room{ID: id, Name: "Boardroom", Location: "Floor 4", Capacity: 10, IsAvailable: true}, nil
}

func (m *mockRoomRepository) FindByName(ctx context.Context, name string) (*model.Room, error) {
	return nil, roomserrors.ErrNotFound
}

func (m *mockRoomRepository) FindAll(ctx context.Context, skip int64, limit int) ([]*model.Room, error) {
	return []*model.Room{}, nil
}

func (m *mockRoomRepository) Count(ctx context.Context) (int64, error) { return 0, nil }

func (m *mockRoomRepository) Update(ctx context.Context, id string, room *model.Room) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, room)
	}
	return nil
}

func (m *mockRoomRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockRoomRepository) EnsureIndexes(ctx context.Context) error { return nil }

type stubBookingRepository struct {
	activeByRoom int64
}

func (s *stubBookingRepository) Create(ctx context.Context, booking *model.Booking) error { return nil }

func (s *stubBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	return nil, nil
}

func (s *stubBookingRepository) FindAll(ctx context.Context, filter repository.ListFilter, skip int64, limit int) ([]*model.Booking, error) {
	return nil, nil
}

func (s *stubBookingRepository) Count(ctx context.Context, filter repository.ListFilter) (int64, error) {
	return 0, nil
}

func (s *stubBookingRepository) FindByRoom(ctx context.Context, roomID string, excludeCancelled bool) ([]*model.Booking, error) {
	return nil, nil
}

func (s *stubBookingRepository) CountActiveByRoom(ctx context.Context, roomID string) (int64, error) {
	return s.activeByRoom, nil
}

func (s *stubBookingRepository) CountActiveByUser(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

func (s *stubBookingRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	return nil
}

func (s *stubBookingRepository) Delete(ctx context.Context, id string) error { return nil }

func (s *stubBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:  logger.LevelError,
			Format: logger.FormatText,
			Output: io.Discard,
		}),
	}
}

func assertAppError(t *testing.T, err error, wantCode string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", wantCode)
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	if appErr.Code != wantCode {
		t.Fatalf("expected code %s, got %s (%s)", wantCode, appErr.Code, appErr.Message)
	}
}

func TestCreate_NormalizesAndDefaults(t *testing.T) {
	repo := &mockRoomRepository{}
	svc := NewRoomService(repo, &stubBookingRepository{}, testConfig())

	room := &model.Room{
		Name:        "  Boardroom   West ",
		Location:    "Floor  4",
		Capacity:    12,
		IsAvailable: false,
	}
	if err := svc.Create(context.Background(), room); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if room.Name != "Boardroom West" {
		t.Errorf("name not normalized: %q", room.Name)
	}
	if !room.IsAvailable {
		t.Error("new rooms must start available")
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	repo := &mockRoomRepository{
		createFunc: func(ctx context.Context, room *model.Room) error {
			return roomserrors.ErrDuplicateName
		},
	}
	svc := NewRoomService(repo, &stubBookingRepository{}, testConfig())

	err := svc.Create(context.Background(), &model.Room{Name: "Boardroom", Location: "Floor 4", Capacity: 10})
	assertAppError(t, err, apperrors.CodeConflict)
}

func TestCreate_InvalidCapacity(t *testing.T) {
	svc := NewRoomService(&mockRoomRepository{}, &stubBookingRepository{}, testConfig())

	err := svc.Create(context.Background(), &model.Room{Name: "Boardroom", Location: "Floor 4", Capacity: 0})
	assertAppError(t, err, apperrors.CodeValidation)
}

func TestUpdate_MergesOnlyProvidedFields(t *testing.T) {
	repo := &mockRoomRepository{}
	svc := NewRoomService(repo, &stubBookingRepository{}, testConfig())

	capacity := 20
	unavailable := false
	room, err := svc.Update(context.Background(), testRoomID, &model.RoomUpdate{
		Capacity:    &capacity,
		IsAvailable: &unavailable,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if room.Capacity != 20 {
		t.Errorf("capacity not updated: %d", room.Capacity)
	}
	if room.IsAvailable {
		t.Error("availability not updated")
	}
	if room.Name != "Boardroom" {
		t.Errorf("untouched field changed: %q", room.Name)
	}
}

func TestDelete_BlockedByActiveBookings(t *testing.T) {
	svc := NewRoomService(&mockRoomRepository{}, &stubBookingRepository{activeByRoom: 2}, testConfig())

	err := svc.Delete(context.Background(), testRoomID)
	assertAppError(t, err, apperrors.CodeInvalidState)
}

func TestDelete_OKWithoutActiveBookings(t *testing.T) {
	deleted := ""
	repo := &mockRoomRepository{
		deleteFunc: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	svc := NewRoomService(repo, &stubBookingRepository{}, testConfig())

	if err := svc.Delete(context.Background(), testRoomID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != testRoomID {
		t.Errorf("expected delete of %s, got %q", testRoomID, deleted)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo := &mockRoomRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Room, error) {
			return nil, roomserrors.ErrNotFound
		},
	}
	svc := NewRoomService(repo, &stubBookingRepository{}, testConfig())

	_, err := svc.GetByID(context.Background(), testRoomID)
	assertAppError(t, err, apperrors.CodeNotFound)
}
