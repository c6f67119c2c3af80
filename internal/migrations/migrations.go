package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"taskFlow/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

//go:embed sql/*.sql
var files embed.FS

func newMigrate(databaseURL string) (*migrate.Migrate, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("подключение к БД: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("драйвер миграций: %w", err)
	}

	source, err := iofs.New(files, "sql")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("источник миграций: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("инициализация миграций: %w", err)
	}
	return m, nil
}

func closeMigrate(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Warn("Migrations: ошибка закрытия источника", zap.Error(srcErr))
	}
	if dbErr != nil {
		logger.Warn("Migrations: ошибка закрытия соединения", zap.Error(dbErr))
	}
}

// Up применяет все недостающие миграции
func Up(databaseURL string) error {
	logger.Info("Migrations: применение миграций")

	m, err := newMigrate(databaseURL)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Migrations: ошибка применения", err)
		return fmt.Errorf("применение миграций: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("версия схемы: %w", err)
	}
	logger.Info("Migrations: схема актуальна", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// Down откатывает steps миграций, при steps <= 0 - все
func Down(databaseURL string, steps int) error {
	logger.Info("Migrations: откат миграций", zap.Int("steps", steps))

	m, err := newMigrate(databaseURL)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	if steps > 0 {
		err = m.Steps(-steps)
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Migrations: ошибка отката", err)
		return fmt.Errorf("откат миграций: %w", err)
	}

	logger.Info("Migrations: откат завершён")
	return nil
}
