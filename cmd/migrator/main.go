package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const (
	migrationUp   = "up"
	migrationDown = "down"
)

func main() {
	var migrationsPath, migrationType string
	flag.StringVar(&migrationsPath, "migrations-path", "migrations", "path to migrations")
	flag.StringVar(&migrationType, "migration-type", migrationUp, "migration type (up|down)")
	flag.Parse()

	dsn := os.Getenv("RESERVE_POSTGRES_DSN")
	if dsn == "" {
		panic("RESERVE_POSTGRES_DSN is required")
	}

	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsPath), fmt.Sprintf("pgx5://%s", stripScheme(dsn)))
	if err != nil {
		panic(err)
	}

	switch migrationType {
	case migrationDown:
		mustApply(m.Down)
	default:
		mustApply(m.Up)
	}
}

func mustApply(apply func() error) {
	if err := apply(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("no migrations to apply")
			return
		}
		panic(err)
	}
	fmt.Println("migrations applied successfully")
}

// stripScheme accepts both postgres://user@host/db and bare user@host/db DSNs.
func stripScheme(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://", "pgx5://"} {
		if len(dsn) > len(prefix) && dsn[:len(prefix)] == prefix {
			return dsn[len(prefix):]
		}
	}
	return dsn
}
