package main

import (
	"context"

	bookingshandler "roomly/internal/bookings/handler"
	bookingsrepo "roomly/internal/bookings/repository"
	bookingsservice "roomly/internal/bookings/service"
	bookingsvalidator "roomly/internal/bookings/validator"
	roomshandler "roomly/internal/rooms/handler"
	roomsrepo "roomly/internal/rooms/repository"
	roomsservice "roomly/internal/rooms/service"
	usershandler "roomly/internal/users/handler"
	usersrepo "roomly/internal/users/repository"
	usersservice "roomly/internal/users/service"
	"roomly/pkg/app"
	"roomly/pkg/config"
	"roomly/pkg/events"
	"roomly/pkg/password"

	"github.com/joho/godotenv"
)

const ServiceName = "server"

func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting reservation service")

	publisher, err := events.NewPublisher(events.LoadConfig(), cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to set up event publisher", "error", err)
	}

	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	lockRepo := bookingsrepo.NewRoomLockRepository(cfg)
	roomRepo := roomsrepo.NewMongoRoomRepository(cfg)
	userRepo := usersrepo.NewMongoUserRepository(cfg)

	ensureIndexes(cfg, lockRepo, roomRepo, userRepo)

	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		lockRepo,
		userRepo,
		roomRepo,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)
	roomService := roomsservice.NewRoomService(roomRepo, bookingRepo, cfg)
	userService := usersservice.NewUserService(
		userRepo,
		bookingRepo,
		password.NewBcryptHasher(cfg.BcryptCost),
		cfg,
	)

	cfg.Log.Info("Reservation service initialized", "database", cfg.MongoDatabaseName)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg,
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
		roomshandler.NewRoomHandler(roomService, cfg.Log),
		usershandler.NewUserHandler(userService, cfg.Log),
	)
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	serverApp.Run()
}

func ensureIndexes(
	cfg *config.Config,
	lockRepo bookingsrepo.RoomLockRepository,
	roomRepo roomsrepo.RoomRepository,
	userRepo usersrepo.UserRepository,
) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()

	if err := lockRepo.EnsureIndexes(ctx); err != nil {
		cfg.Log.Fatal("Failed to create room lock indexes", "error", err)
	}
	if err := roomRepo.EnsureIndexes(ctx); err != nil {
		cfg.Log.Fatal("Failed to create room indexes", "error", err)
	}
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		cfg.Log.Fatal("Failed to create user indexes", "error", err)
	}
}
