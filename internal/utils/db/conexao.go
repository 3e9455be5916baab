package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/innexar/afiliados-api/internal/config"
)

// Conectar abre a conexão com o Postgres. Sem usuário/senha na configuração,
// as credenciais vêm do AWS Secrets Manager (DB_SECRET_ID).
func Conectar(ctx context.Context, cfg config.DB) (*gorm.DB, error) {
	username, password := cfg.User, cfg.Password
	if username == "" || password == "" {
		creds, err := BuscarCredenciais(ctx, cfg.SecretID)
		if err != nil {
			return nil, err
		}
		username, password = creds.Username, creds.Password
	}

	var sslMode string
	if cfg.SSLDisable {
		sslMode = " sslmode=disable"
	}
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d%s",
		cfg.Host, username, password, cfg.Name, cfg.Port, sslMode)

	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("conectar ao banco: %w", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping no banco: %w", err)
	}
	return database, nil
}
