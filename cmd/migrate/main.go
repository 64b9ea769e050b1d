// Command migrate performs the one-time sweep converting legacy plaintext
// credentials to hashed form. Credentials already carrying the hash-scheme
// tag are skipped, so the sweep is safe to re-run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/userhub/userhub/internal/config"
	"github.com/userhub/userhub/internal/credential"
	"github.com/userhub/userhub/internal/infra"
	"github.com/userhub/userhub/internal/logging"
	"github.com/userhub/userhub/internal/user"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report what would be migrated without writing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()
	db, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := user.NewPostgresRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("ensure schema", "error", err)
		os.Exit(1)
	}

	users, err := repo.List(ctx)
	if err != nil {
		logger.Error("list users", "error", err)
		os.Exit(1)
	}

	migrated := 0
	for _, u := range users {
		if u.Password == "" || credential.IsHashed(u.Password) {
			continue
		}

		logger.Info("migrating credential", "user_id", u.ID, "email", u.Email)
		if *dryRun {
			migrated++
			continue
		}

		hashed, err := credential.Hash(u.Password)
		if err != nil {
			logger.Error("hash credential", "user_id", u.ID, "error", err)
			continue
		}
		u.Password = hashed
		if err := repo.Update(ctx, u); err != nil {
			logger.Error("update credential", "user_id", u.ID, "error", err)
			continue
		}
		migrated++
	}

	logger.Info("migration completed", "migrated", migrated, "total", len(users), "dry_run", *dryRun)
}
