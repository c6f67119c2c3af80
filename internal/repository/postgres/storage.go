package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskFlow/internal/logger"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

type Storage struct {
	pool *pgxpool.Pool
}

// PoolOptions - параметры пула, нулевые значения заменяются значениями по умолчанию
type PoolOptions struct {
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
}

func New(ctx context.Context, connString string, opts PoolOptions) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		config.MinConns = opts.MinConns
	}
	if opts.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL",
		zap.Int32("max_conns", config.MaxConns),
		zap.Int32("min_conns", config.MinConns))
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

// warnIfSlow пишет предупреждение, если запрос выполнялся дольше limit
func warnIfSlow(op string, start time.Time, limit time.Duration) {
	if elapsed := time.Since(start); elapsed > limit {
		logger.Warn("Repository: Медленный запрос",
			zap.String("operation", op),
			zap.Duration("ms", elapsed))
	}
}

func pgError(err error, code string) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return pgErr, true
	}
	return nil, false
}
