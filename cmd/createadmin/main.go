// Command createadmin bootstraps an admin account.
//
//	createadmin -name "Store Admin" -email admin@example.com
//
// The password is read from ADMIN_PASSWORD.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"royalfootwear/internal/clock"
	"royalfootwear/internal/config"
	"royalfootwear/internal/database"
	"royalfootwear/internal/lock"
	"royalfootwear/internal/lockout"
	"royalfootwear/internal/logger"
	"royalfootwear/internal/services"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	name := flag.String("name", "Administrator", "display name")
	email := flag.String("email", "", "admin email")
	flag.Parse()

	if err := run(*name, *email, os.Getenv("ADMIN_PASSWORD")); err != nil {
		logger.Get().Fatalf("createadmin: %v", err)
	}
}

func run(name, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("usage: ADMIN_PASSWORD=... createadmin -email <email> [-name <name>]")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	manager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return err
	}
	defer func() {
		if err := manager.Close(); err != nil {
			logger.Get().Warnf("database close error: %v", err)
		}
	}()

	locker := lock.NewMemoryLocker()
	defer locker.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := services.NewUserService(manager.DB(), locker, lockout.DefaultPolicy(), clock.Real{}, nil)
	admin, err := users.CreateAdmin(ctx, name, email, password)
	if err != nil {
		return err
	}
	logger.Get().Infow("Admin account created", "user_id", admin.ID, "email", admin.Email)
	return nil
}
