package service

import (
	"context"
	"io"
	"testing"
	"time"

	bookingserrors "roomly/internal/bookings/errors"
	"roomly/internal/bookings/repository"
	"roomly/internal/bookings/validator"
	roomserrors "roomly/internal/rooms/errors"
	userserrors "roomly/internal/users/errors"
	"roomly/pkg/config"
	mongotx "roomly/pkg/db/mongo"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/events"
	"roomly/pkg/logger"
	"roomly/pkg/model"
	"roomly/pkg/timeutil"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	testUserID    = "507f1f77bcf86cd799439011"
	testRoomID    = "507f1f77bcf86cd799439012"
	testBookingID = "507f1f77bcf86cd799439013"
)

func mustTime(t *testing.T, s string) timeutil.Time {
	t.Helper()
	parsed, err := timeutil.Parse(s)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", s, err)
	}
	return parsed
}

// --- Mocks ---

type mockBookingRepository struct {
	createFunc             func(ctx context.Context, booking *model.Booking) error
	findByIDFunc           func(ctx context.Context, id string) (*model.Booking, error)
	findAllFunc            func(ctx context.Context, filter repository.ListFilter, skip int64, limit int) ([]*model.Booking, error)
	countFunc              func(ctx context.Context, filter repository.ListFilter) (int64, error)
	findByRoomFunc         func(ctx context.Context, roomID string, excludeCancelled bool) ([]*model.Booking, error)
	updateStatusFunc       func(ctx context.Context, id string, status string) error
	deleteFunc             func(ctx context.Context, id string) error
	executeTransactionFunc func(ctx context.Context, fn mongotx.TransactionFunc) error
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	booking.ID = testBookingID
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindAll(ctx context.Context, filter repository.ListFilter, skip int64, limit int) ([]*model.Booking, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, filter, skip, limit)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) Count(ctx context.Context, filter repository.ListFilter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockBookingRepository) FindByRoom(ctx context.Context, roomID string, excludeCancelled bool) ([]*model.Booking, error) {
	if m.findByRoomFunc != nil {
		return m.findByRoomFunc(ctx, roomID, excludeCancelled)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) CountActiveByRoom(ctx context.Context, roomID string) (int64, error) {
	return 0, nil
}

func (m *mockBookingRepository) CountActiveByUser(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockBookingRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if m.executeTransactionFunc != nil {
		return m.executeTransactionFunc(ctx, fn)
	}
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockRoomLockRepository struct {
	acquireFunc  func(ctx context.Context, roomID string, ttl time.Duration) (*model.RoomLock, error)
	releaseFunc  func(ctx context.Context, lockID string) error
	releasedWith string
}

func (m *mockRoomLockRepository) Acquire(ctx context.Context, roomID string, ttl time.Duration) (*model.RoomLock, error) {
	if m.acquireFunc != nil {
		return m.acquireFunc(ctx, roomID, ttl)
	}
	return &model.RoomLock{ID: "room_lock_" + roomID, RoomID: roomID}, nil
}

func (m *mockRoomLockRepository) Release(ctx context.Context, lockID string) error {
	m.releasedWith = lockID
	if m.releaseFunc != nil {
		return m.releaseFunc(ctx, lockID)
	}
	return nil
}

func (m *mockRoomLockRepository) EnsureIndexes(ctx context.Context) error { return nil }

type mockUserRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error { return nil }

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.User{ID: id, Username: "alice", IsActive: true}, nil
}

func (m *mockUserRepository) FindAll(ctx context.Context, skip int64, limit int) ([]*model.User, error) {
	return nil, nil
}

func (m *mockUserRepository) Count(ctx context.Context) (int64, error) { return 0, nil }

func (m *mockUserRepository) Delete(ctx context.Context, id string) error { return nil }

func (m *mockUserRepository) EnsureIndexes(ctx context.Context) error { return nil }

type mockRoomRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Room, error)
}

func (m *mockRoomRepository) Create(ctx context.Context, room *model.Room) error { return nil }

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
	return nil, nil
}

func (m *mockRoomRepository) Count(ctx context.Context) (int64, error) { return 0, nil }

func (m *mockRoomRepository) Update(ctx context.Context, id string, room *model.Room) error {
	return nil
}

func (m *mockRoomRepository) Delete(ctx context.Context, id string) error { return nil }

func (m *mockRoomRepository) EnsureIndexes(ctx context.Context) error { return nil }

type capturePublisher struct {
	published []events.BookingEvent
}

func (p *capturePublisher) Publish(ctx context.Context, event events.BookingEvent) error {
	p.published = append(p.published, event)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

// --- Test fixtures ---

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:  logger.LevelError,
			Format: logger.FormatText,
			Output: io.Discard,
		}),
		RoomLockTTL: time.Second,
	}
}

type fixture struct {
	svc       *bookingService
	repo      *mockBookingRepository
	lockRepo  *mockRoomLockRepository
	userRepo  *mockUserRepository
	roomRepo  *mockRoomRepository
	publisher *capturePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testConfig()
	f := &fixture{
		repo:      &mockBookingRepository{},
		lockRepo:  &mockRoomLockRepository{},
		userRepo:  &mockUserRepository{},
		roomRepo:  &mockRoomRepository{},
		publisher: &capturePublisher{},
	}
	svc := NewBookingService(
		f.repo,
		f.lockRepo,
		f.userRepo,
		f.roomRepo,
		validator.NewBookingValidator(cfg.Log),
		f.publisher,
		cfg,
	)
	f.svc = svc.(*bookingService)
	// Pin the clock so past/future checks are deterministic.
	f.svc.now = func() timeutil.Time { return mustTime(t, "2026-01-01T00:00:00Z") }
	return f
}

func newBooking(t *testing.T, start, end string) *model.Booking {
	t.Helper()
	return &model.Booking{
		UserID:    testUserID,
		RoomID:    testRoomID,
		StartTime: mustTime(t, start),
		EndTime:   mustTime(t, end),
		Purpose:   "Sprint planning",
	}
}

func assertAppError(t *testing.T, err error, wantCode string) *apperrors.AppError {
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
	return appErr
}

// --- Overlap semantics ---

func TestOverlaps(t *testing.T) {
	at := func(s string) timeutil.Time { return mustTime(t, s) }

	tests := []struct {
		name           string
		existingStart  string
		existingEnd    string
		candidateStart string
		candidateEnd   string
		want           bool
	}{
		{"identical intervals", "2026-01-01T10:00:00Z", "2026-01-01T11:00:00Z", "2026-01-01T10:00:00Z", "2026-01-01T11:00:00Z", true},
		{"candidate inside existing", "2026-01-01T10:00:00Z", "2026-01-01T12:00:00Z", "2026-01-01T10:30:00Z", "2026-01-01T11:00:00Z", true},
		{"existing inside candidate", "2026-01-01T10:30:00Z", "2026-01-01T11:00:00Z", "2026-01-01T10:00:00Z", "2026-01-01T12:00:00Z", true},
		{"candidate overlaps start of existing", "2026-01-01T10:00:00Z", "2026-01-01T12:00:00Z", "2026-01-01T09:00:00Z", "2026-01-01T10:30:00Z", true},
		{"candidate overlaps end of existing", "2026-01-01T10:00:00Z", "2026-01-01T12:00:00Z", "2026-01-01T11:30:00Z", "2026-01-01T13:00:00Z", true},
		{"candidate starts exactly at existing end", "2026-01-01T10:00:00Z", "2026-01-01T11:00:00Z", "2026-01-01T11:00:00Z", "2026-01-01T12:00:00Z", false},
		{"candidate ends exactly at existing start", "2026-01-01T10:00:00Z", "2026-01-01T11:00:00Z", "2026-01-01T09:00:00Z", "2026-01-01T10:00:00Z", false},
		{"disjoint before", "2026-01-01T10:00:00Z", "2026-01-01T11:00:00Z", "2026-01-01T08:00:00Z", "2026-01-01T09:00:00Z", false},
		{"disjoint after", "2026-01-01T10:00:00Z", "2026-01-01T11:00:00Z", "2026-01-01T13:00:00Z", "2026-01-01T14:00:00Z", false},
		{"same start different end", "2026-01-01T10:00:00Z", "2026-01-01T11:00:00Z", "2026-01-01T10:00:00Z", "2026-01-01T10:30:00Z", true},
		{"same end different start", "2026-01-01T10:00:00Z", "2026-01-01T11:00:00Z", "2026-01-01T10:30:00Z", "2026-01-01T11:00:00Z", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := overlaps(at(tt.existingStart), at(tt.existingEnd), at(tt.candidateStart), at(tt.candidateEnd))
			if got != tt.want {
				t.Errorf("overlaps(%s-%s vs %s-%s) = %v, want %v",
					tt.existingStart, tt.existingEnd, tt.candidateStart, tt.candidateEnd, got, tt.want)
			}
		})
	}
}

// --- Create pipeline ---

func TestCreate_Success(t *testing.T) {
	f := newFixture(t)
	booking := newBooking(t, "2026-01-02T10:00:00Z", "2026-01-02T11:00:00Z")

	if err := f.svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if booking.Status != model.StatusConfirmed {
		t.Errorf("expected status %s, got %s", model.StatusConfirmed, booking.Status)
	}
	if booking.ID != testBookingID {
		t.Errorf("expected assigned ID %s, got %s", testBookingID, booking.ID)
	}
	if f.lockRepo.releasedWith != "room_lock_"+testRoomID {
		t.Errorf("room lock was not released, got %q", f.lockRepo.releasedWith)
	}
	if len(f.publisher.published) != 1 || f.publisher.published[0].Type != events.TypeBookingCreated {
		t.Errorf("expected one %s event, got %+v", events.TypeBookingCreated, f.publisher.published)
	}
}

func TestCreate_MissingRoomID(t *testing.T) {
	f := newFixture(t)
	booking := newBooking(t, "2026-01-02T10:00:00Z", "2026-01-02T11:00:00Z")
	booking.RoomID = ""

	err := f.svc.Create(context.Background(), booking)
	assertAppError(t, err, apperrors.CodeValidation)
}

func TestCreate_UserNotFound(t *testing.T) {
	f := newFixture(t)
	f.userRepo.findByIDFunc = func(ctx context.Context, id string) (*model.User, error) {
		return nil, userserrors.ErrNotFound
	}
	booking := newBooking(t, "2026-01-02T10:00:00Z", "2026-01-02T11:00:00Z")

	err := f.svc.Create(context.Background(), booking)
	appErr := assertAppError(t, err, apperrors.CodeNotFound)
	if appErr.Message != "User not found" {
		t.Errorf("unexpected message: %s", appErr.Message)
	}
}

func TestCreate_RoomNotFound(t *testing.T) {
	f := newFixture(t)
	f.roomRepo.findByIDFunc = func(ctx context.Context, id string) (*model.Room, error) {
		return nil, roomserrors.ErrNotFound
	}
	booking := newBooking(t, "2026-01-02T10:00:00Z", "2026-01-02T11:00:00Z")

	err := f.svc.Create(context.Background(), booking)
	appErr := assertAppError(t, err, apperrors.CodeNotFound)
	if appErr.Message != "Room not found" {
		t.Errorf("unexpected message: %s", appErr.Message)
	}
}

func TestCreate_RoomUnavailable(t *testing.T) {
	f := newFixture(t)
	f.roomRepo.findByIDFunc = func(ctx context.Context, id string) (*model.Room, error) {
		return &model.Room{ID: id, Name: "Boardroom", Location: "Floor 4", Capacity: 10, IsAvailable: false}, nil
	}
	booking := newBooking(t, "2026-01-02T10:00:00Z", "2026-01-02T11:00:00Z")

	err := f.svc.Create(context.Background(), booking)
	assertAppError(t, err, apperrors.CodeInvalidState)
}

func TestCreate_StartEqualsEnd(t *testing.T) {
	f := newFixture(t)
	booking := newBooking(t, "2026-01-02T10:00:00Z", "2026-01-02T10:00:00Z")

	err := f.svc.Create(context.Background(), booking)
	assertAppError(t, err, apperrors.CodeInvalidRange)
}

func TestCreate_EndBeforeStart(t *testing.T) {
	f := newFixture(t)
	booking := newBooking(t, "2026-01-02T11:00:00Z", "2026-01-02T10:00:00Z")

	err := f.svc.Create(context.Background(), booking)
	assertAppError(t, err, apperrors.CodeInvalidRange)
}

func TestCreate_PastStart(t *testing.T) {
	f := newFixture(t)
	booking := newBooking(t, "2025-12-31T23:59:59Z", "2026-01-02T11:00:00Z")

	err := f.svc.Create(context.Background(), booking)
	assertAppError(t, err, apperrors.CodePastTime)
}

func TestCreate_StartExactlyNow(t *testing.T) {
	f := newFixture(t)
	booking := newBooking(t, "2026-01-01T00:00:00Z", "2026-01-01T01:00:00Z")

	if err := f.svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("a booking starting exactly now should be accepted, got: %v", err)
	}
}

func TestCreate_OverlapConflict(t *testing.T) {
	f := newFixture(t)
	f.repo.findByRoomFunc = func(ctx context.Context, roomID string, excludeCancelled bool) ([]*model.Booking, error) {
		return []*model.Booking{
			{
				ID:        "existing",
				RoomID:    roomID,
				StartTime: mustTime(t, "2026-01-02T10:00:00Z"),
				EndTime:   mustTime(t, "2026-01-02T11:00:00Z"),
				Status:    model.StatusConfirmed,
			},
		}, nil
	}
	booking := newBooking(t, "2026-01-02T10:30:00Z", "2026-01-02T11:30:00Z")

	err := f.svc.Create(context.Background(), booking)
	assertAppError(t, err, apperrors.CodeConflict)

	if len(f.publisher.published) != 0 {
		t.Errorf("no event should be published on conflict, got %d", len(f.publisher.published))
	}
}

func TestCreate_BackToBackAllowed(t *testing.T) {
	f := newFixture(t)
	f.repo.findByRoomFunc = func(ctx context.Context, roomID string, excludeCancelled bool) ([]*model.Booking, error) {
		return []*model.Booking{
			{
				ID:        "existing",
				RoomID:    roomID,
				StartTime: mustTime(t, "2026-01-02T10:00:00Z"),
				EndTime:   mustTime(t, "2026-01-02T11:00:00Z"),
				Status:    model.StatusConfirmed,
			},
		}, nil
	}
	booking := newBooking(t, "2026-01-02T11:00:00Z", "2026-01-02T12:00:00Z")

	if err := f.svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("back-to-back booking should be accepted, got: %v", err)
	}
}

func TestCreate_CancelledBookingsIgnored(t *testing.T) {
	f := newFixture(t)
	var gotExcludeCancelled bool
	f.repo.findByRoomFunc = func(ctx context.Context, roomID string, excludeCancelled bool) ([]*model.Booking, error) {
		gotExcludeCancelled = excludeCancelled
		// The repository filters cancelled bookings out at query time.
		return []*model.Booking{}, nil
	}
	booking := newBooking(t, "2026-01-02T10:00:00Z", "2026-01-02T11:00:00Z")

	if err := f.svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !gotExcludeCancelled {
		t.Error("conflict check must exclude cancelled bookings")
	}
}

func TestCreate_LockHeld(t *testing.T) {
	f := newFixture(t)
	f.lockRepo.acquireFunc = func(ctx context.Context, roomID string, ttl time.Duration) (*model.RoomLock, error) {
		return nil, bookingserrors.ErrLockHeld
	}
	createCalled := false
	f.repo.createFunc = func(ctx context.Context, booking *model.Booking) error {
		createCalled = true
		return nil
	}
	booking := newBooking(t, "2026-01-02T10:00:00Z", "2026-01-02T11:00:00Z")

	err := f.svc.Create(context.Background(), booking)
	assertAppError(t, err, apperrors.CodeConflict)

	if createCalled {
		t.Error("booking must not be persisted while another request holds the room lock")
	}
}

func TestCreate_MarkerlessTimesTreatedAsUTC(t *testing.T) {
	f := newFixture(t)
	booking := newBooking(t, "2026-01-02T10:00:00", "2026-01-02T11:00:00")

	if err := f.svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	want := mustTime(t, "2026-01-02T10:00:00Z")
	if !booking.StartTime.Equal(want) {
		t.Errorf("marker-less start time shifted: got %v, want %v", booking.StartTime, want)
	}
}

// --- Lifecycle ---

func TestGetByID_EmptyID(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetByID(context.Background(), "")
	assertAppError(t, err, apperrors.CodeInvalidInput)
}

func TestGetByID_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetByID(context.Background(), testBookingID)
	assertAppError(t, err, apperrors.CodeNotFound)
}

func TestList_PassesFilter(t *testing.T) {
	f := newFixture(t)
	var gotFilter repository.ListFilter
	f.repo.findAllFunc = func(ctx context.Context, filter repository.ListFilter, skip int64, limit int) ([]*model.Booking, error) {
		gotFilter = filter
		return []*model.Booking{{ID: testBookingID}}, nil
	}
	f.repo.countFunc = func(ctx context.Context, filter repository.ListFilter) (int64, error) {
		return 1, nil
	}

	bookings, total, err := f.svc.List(context.Background(), repository.ListFilter{RoomID: testRoomID}, 0, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || len(bookings) != 1 {
		t.Errorf("expected 1 booking, got total=%d len=%d", total, len(bookings))
	}
	if gotFilter.RoomID != testRoomID {
		t.Errorf("filter not passed through, got %+v", gotFilter)
	}
}

func TestCancel_Success(t *testing.T) {
	f := newFixture(t)
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return &model.Booking{ID: id, RoomID: testRoomID, Status: model.StatusConfirmed}, nil
	}
	var gotStatus string
	f.repo.updateStatusFunc = func(ctx context.Context, id string, status string) error {
		gotStatus = status
		return nil
	}

	if err := f.svc.Cancel(context.Background(), testBookingID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if gotStatus != model.StatusCancelled {
		t.Errorf("expected status update to %s, got %s", model.StatusCancelled, gotStatus)
	}
	if len(f.publisher.published) != 1 || f.publisher.published[0].Type != events.TypeBookingCancelled {
		t.Errorf("expected one %s event, got %+v", events.TypeBookingCancelled, f.publisher.published)
	}
}

func TestCancel_AlreadyCancelled(t *testing.T) {
	f := newFixture(t)
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return &model.Booking{ID: id, RoomID: testRoomID, Status: model.StatusCancelled}, nil
	}

	err := f.svc.Cancel(context.Background(), testBookingID)
	assertAppError(t, err, apperrors.CodeInvalidState)
}

func TestCancel_NotFound(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Cancel(context.Background(), testBookingID)
	assertAppError(t, err, apperrors.CodeNotFound)
}

func TestDelete_Success(t *testing.T) {
	f := newFixture(t)
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return &model.Booking{ID: id, RoomID: testRoomID, Status: model.StatusConfirmed}, nil
	}
	deleted := ""
	f.repo.deleteFunc = func(ctx context.Context, id string) error {
		deleted = id
		return nil
	}

	if err := f.svc.Delete(context.Background(), testBookingID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != testBookingID {
		t.Errorf("expected delete of %s, got %s", testBookingID, deleted)
	}
	if len(f.publisher.published) != 1 || f.publisher.published[0].Type != events.TypeBookingDeleted {
		t.Errorf("expected one %s event, got %+v", events.TypeBookingDeleted, f.publisher.published)
	}
}

func TestDelete_NotFound(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Delete(context.Background(), testBookingID)
	assertAppError(t, err, apperrors.CodeNotFound)
}
