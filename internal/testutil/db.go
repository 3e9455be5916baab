// Package testutil abre bancos SQLite em memória para os testes dos repositórios.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NovoDB abre um SQLite em memória exclusivo do teste e aplica as migrações.
// Uma única conexão mantém o banco vivo durante o teste.
func NovoDB(t testing.TB, migracoes ...func(*gorm.DB) error) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=private&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("abrir sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, m := range migracoes {
		if err := m(db); err != nil {
			t.Fatalf("migrar: %v", err)
		}
	}
	return db
}
