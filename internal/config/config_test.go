package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCarregar(t *testing.T) {
	t.Run("lê variáveis de ambiente com defaults", func(t *testing.T) {
		t.Setenv("AFILIADOS_CONFIG_PATH", "")
		t.Setenv("JWT_SECRET", "segredo-de-teste-com-mais-de-32-caracteres")
		t.Setenv("DB_USERNAME", "postgres")
		t.Setenv("DB_PASSWORD", "postgres")
		t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

		cfg, err := Carregar()
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.HTTP.Addr)
		assert.Equal(t, uint(5432), cfg.DB.Port)
		assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTTL)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, 30*time.Second, cfg.Redis.StatsTTL)
	})

	t.Run("lê arquivo YAML", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		yaml := []byte(`
http:
  addr: ":9090"
db:
  host: db.interno
  secret_id: prod/afiliados/db
auth:
  jwt_secret: segredo-de-teste-com-mais-de-32-caracteres
log:
  level: debug
`)
		require.NoError(t, os.WriteFile(path, yaml, 0o600))
		t.Setenv("AFILIADOS_CONFIG_PATH", path)

		cfg, err := Carregar()
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.HTTP.Addr)
		assert.Equal(t, "db.interno", cfg.DB.Host)
		assert.Equal(t, "prod/afiliados/db", cfg.DB.SecretID)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("exige segredo JWT", func(t *testing.T) {
		t.Setenv("AFILIADOS_CONFIG_PATH", "")
		t.Setenv("JWT_SECRET", "")
		t.Setenv("DB_USERNAME", "postgres")

		_, err := Carregar()
		assert.Error(t, err)
	})
}
