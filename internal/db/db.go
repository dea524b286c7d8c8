package db

import (
	"context"
	"fmt"
	"time"

	"github.com/senyabanana/repair-quotes/internal/router/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InitDb инициализирует подключение к базе данных и возвращает пул соединений.
func InitDb(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	if cfg.PostgresConn == "" {
		return nil, fmt.Errorf("POSTGRES_CONN is not set")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.PostgresConn)
	if err != nil {
		return nil, fmt.Errorf("invalid database connection string: %v", err)
	}

	dbPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(pingCtx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("database is unreachable: %v", err)
	}

	return dbPool, nil
}
