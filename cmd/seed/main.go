package main

import (
	"context"
	"errors"

	roomserrors "roomly/internal/rooms/errors"
	roomsrepo "roomly/internal/rooms/repository"
	userserrors "roomly/internal/users/errors"
	usersrepo "roomly/internal/users/repository"
	"roomly/pkg/config"
	"roomly/pkg/model"
	"roomly/pkg/password"

	"github.com/joho/godotenv"
)

const ServiceName = "seed"

// Seeds a handful of demo rooms and users for local development.
// Safe to run repeatedly: duplicates are skipped, not overwritten.
func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()

	roomRepo := roomsrepo.NewMongoRoomRepository(cfg)
	userRepo := usersrepo.NewMongoUserRepository(cfg)

	if err := roomRepo.EnsureIndexes(ctx); err != nil {
		cfg.Log.Fatal("Failed to create room indexes", "error", err)
	}
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		cfg.Log.Fatal("Failed to create user indexes", "error", err)
	}

	seedRooms(ctx, cfg, roomRepo)
	seedUsers(ctx, cfg, userRepo)

	cfg.Log.Info("Seeding complete")
}

func seedRooms(ctx context.Context, cfg *config.Config, repo roomsrepo.RoomRepository) {
	rooms := []*model.Room{
		{Name: "Boardroom", Location: "Floor 4, East Wing", Capacity: 16, Description: "Large room with video conferencing", IsAvailable: true},
		{Name: "Huddle A", Location: "Floor 2, North Wing", Capacity: 4, IsAvailable: true},
		{Name: "Huddle B", Location: "Floor 2, North Wing", Capacity: 4, IsAvailable: true},
		{Name: "Training Room", Location: "Floor 1, South Wing", Capacity: 30, Description: "Projector and whiteboards", IsAvailable: true},
	}

	for _, room := range rooms {
		if err := repo.Create(ctx, room); err != nil {
			if errors.Is(err, roomserrors.ErrDuplicateName) {
				cfg.Log.Info("Room already exists, skipping", "name", room.Name)
				continue
			}
			cfg.Log.Fatal("Failed to seed room", "name", room.Name, "error", err)
		}
		cfg.Log.Info("Room seeded", "id", room.ID, "name", room.Name)
	}
}

func seedUsers(ctx context.Context, cfg *config.Config, repo usersrepo.UserRepository) {
	hasher := password.NewBcryptHasher(cfg.BcryptCost)

	demo := []struct {
		username string
		email    string
		password string
	}{
		{"alice", "alice@example.com", "alice-demo-password"},
		{"bob", "bob@example.com", "bob-demo-password"},
	}

	for _, d := range demo {
		hash, err := hasher.Hash(d.password)
		if err != nil {
			cfg.Log.Fatal("Failed to hash password", "username", d.username, "error", err)
		}

		user := &model.User{
			Username:     d.username,
			Email:        d.email,
			PasswordHash: hash,
			IsActive:     true,
		}
		if err := repo.Create(ctx, user); err != nil {
			if errors.Is(err, userserrors.ErrDuplicateUsername) || errors.Is(err, userserrors.ErrDuplicateEmail) {
				cfg.Log.Info("User already exists, skipping", "username", d.username)
				continue
			}
			cfg.Log.Fatal("Failed to seed user", "username", d.username, "error", err)
		}
		cfg.Log.Info("User seeded", "id", user.ID, "username", user.Username)
	}
}
