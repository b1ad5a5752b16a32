// seed creates the first administrator account when the accounts table is
// empty. Idempotent: does nothing once any account exists.
//
// Email and password come from SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD;
// defaults are for local development only.
package main

import (
	"context"
	"log"
	"os"

	"keai-wms/backend/internal/account"
	accountrepo "keai-wms/backend/internal/account/repository"
	"keai-wms/backend/internal/config"
	"keai-wms/backend/internal/db"
	"keai-wms/backend/internal/security"
)

const adminRoleID = 1

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	email := os.Getenv("SEED_ADMIN_EMAIL")
	if email == "" {
		email = "admin@example.com"
	}
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "admin-password"
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	repo := accountrepo.NewPostgresRepository(conn)

	n, err := repo.Count(ctx)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if n > 0 {
		log.Println("Accounts already exist. Skipping bootstrap.")
		return
	}

	svc := account.NewService(repo, security.NewHasher(cfg.BcryptCost), nil)
	id, err := svc.Create(ctx, email, "Administrator", "", adminRoleID, password)
	if err != nil {
		log.Fatalf("create administrator: %v", err)
	}
	log.Printf("Created administrator %s (%s)", email, id)
}
