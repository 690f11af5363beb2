// Command migrate manages the postgres schema from the migrations directory.
//
//	migrate up          apply all pending migrations
//	migrate down [N]    roll back N migrations (default 1)
//	migrate version     print the current version
//	migrate force V     set the version without migrating, clearing a dirty state
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"royalfootwear/internal/config"
	"royalfootwear/internal/database"
	"royalfootwear/internal/logger"
)

var errUsage = errors.New("usage: migrate <up|down [N]|version|force V>")

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(os.Args[1:]); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	command := args[0]
	arg, err := intArg(command, args[1:])
	if err != nil {
		return err
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

	switch command {
	case "up":
		return manager.RunMigrations()
	case "down":
		return manager.RollbackMigrations(arg)
	case "force":
		return manager.ForceMigrationVersion(arg)
	default:
		version, dirty, err := manager.MigrationVersion()
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		logger.Get().Infow("Schema version", "version", version, "dirty", dirty)
		return nil
	}
}

// intArg validates the command and parses its numeric argument before any
// connection is opened.
func intArg(command string, rest []string) (int, error) {
	switch command {
	case "up", "version":
		return 0, nil
	case "down":
		if len(rest) == 0 {
			return 1, nil
		}
	case "force":
		if len(rest) == 0 {
			return 0, errUsage
		}
	default:
		return 0, fmt.Errorf("unknown command %q: %w", command, errUsage)
	}
	n, err := strconv.Atoi(rest[0])
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", rest[0], err)
	}
	return n, nil
}
