package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config agrupa as configurações do serviço. Valores vêm do YAML apontado por
// AFILIADOS_CONFIG_PATH (opcional) e são sobrescritos por variáveis de ambiente.
type Config struct {
	HTTP  HTTP  `yaml:"http"`
	DB    DB    `yaml:"db"`
	Auth  Auth  `yaml:"auth"`
	Redis Redis `yaml:"redis"`
	Kafka Kafka `yaml:"kafka"`
	Log   Log   `yaml:"log"`
}

type HTTP struct {
	Addr           string   `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
	// limite do rastreamento público de visitas, por IP
	VisitasPorSegundo float64 `yaml:"visitas_por_segundo" env:"HTTP_VISITAS_RPS" env-default:"5"`
	VisitasBurst      int     `yaml:"visitas_burst" env:"HTTP_VISITAS_BURST" env-default:"20"`
}

type DB struct {
	Host       string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port       uint   `yaml:"port" env:"DB_PORT" env-default:"5432"`
	Name       string `yaml:"name" env:"DB_NAME" env-default:"afiliados"`
	User       string `yaml:"user" env:"DB_USERNAME"`
	Password   string `yaml:"password" env:"DB_PASSWORD"`
	SecretID   string `yaml:"secret_id" env:"DB_SECRET_ID"`
	SSLDisable bool   `yaml:"ssl_disable" env:"DB_SSL_MODE_DISABLE" env-default:"false"`
	Migrate    bool   `yaml:"migrate" env:"DB_MIGRATE" env-default:"true"`
}

type Auth struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	Issuer    string        `yaml:"issuer" env:"AUTH_ISSUER" env-default:"afiliados-api"`
	Audience  string        `yaml:"audience" env:"AUTH_AUDIENCE" env-default:"afiliados-portal"`
	AccessTTL time.Duration `yaml:"access_ttl" env:"AUTH_ACCESS_TTL" env-default:"24h"`
}

type Redis struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	StatsTTL time.Duration `yaml:"stats_ttl" env:"REDIS_STATS_TTL" env-default:"30s"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"afiliados.eventos"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// Carregar lê .env (se existir), o arquivo YAML opcional e as variáveis de ambiente.
func Carregar() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path := os.Getenv("AFILIADOS_CONFIG_PATH"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("arquivo de configuração não encontrado: %w", err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("falha ao ler configuração: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("falha ao ler variáveis de ambiente: %w", err)
	}

	if err := cfg.validar(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validar() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET não definida")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET deve ter ao menos 32 caracteres")
	}
	if c.DB.User == "" && c.DB.SecretID == "" {
		return fmt.Errorf("defina DB_USERNAME/DB_PASSWORD ou DB_SECRET_ID")
	}
	return nil
}
