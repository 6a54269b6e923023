package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/template-marketplace/config"
	"github.com/oksasatya/template-marketplace/internal/domain/entity"
	"github.com/oksasatya/template-marketplace/internal/domain/repository"
	mongoinfra "github.com/oksasatya/template-marketplace/internal/infrastructure/mongodb"
	"github.com/oksasatya/template-marketplace/pkg/helpers"
)

// seed creates an admin account, or promotes and reactivates an existing one.
func main() {
	email := flag.String("email", "admin@example.com", "admin email")
	password := flag.String("password", "password123", "admin password, used only when the account is created")
	first := flag.String("first", "Admin", "first name")
	last := flag.String("last", "User", "last name")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mc, err := mongoinfra.NewClient(ctx, cfg.MongoURI, cfg.MongoTimeout)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()

	coll := mc.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
	if err := mongoinfra.EnsureIndexes(ctx, coll); err != nil {
		log.Fatalf("failed to ensure indexes: %v", err)
	}
	users := mongoinfra.NewUserRepository(coll)

	existing, err := users.GetByEmail(ctx, *email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		hash, err := helpers.HashPassword(*password, cfg.BcryptCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}
		u := entity.NewUser(*first, *last, *email, hash, time.Now().UTC())
		u.Role = entity.RoleAdmin
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("failed to seed admin: %v", err)
		}
		log.Printf("seeded admin: id=%s email=%s", u.ID, u.Email)
	case err != nil:
		log.Fatalf("lookup failed: %v", err)
	default:
		role, active := entity.RoleAdmin, true
		if _, err := users.Update(ctx, existing.ID, entity.UserPatch{Role: &role, IsActive: &active}); err != nil {
			log.Fatalf("failed to promote %s: %v", existing.Email, err)
		}
		log.Printf("promoted existing account to admin: id=%s email=%s", existing.ID, existing.Email)
	}
}
