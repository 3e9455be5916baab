package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/innexar/afiliados-api/internal/config"
)

// Cache guarda estatísticas já calculadas. ok=false indica ausência.
type Cache interface {
	Get(ctx context.Context, chave string) (valor []byte, ok bool, err error)
	Set(ctx context.Context, chave string, valor []byte, ttl time.Duration) error
	Del(ctx context.Context, chave string) error
}

// CacheRedis implementa Cache sobre go-redis.
type CacheRedis struct {
	Redis *redis.Client
}

// NovoRedis conecta e testa o servidor configurado.
func NovoRedis(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar ao redis: %w", err)
	}
	return client, nil
}

func (c *CacheRedis) Get(ctx context.Context, chave string) ([]byte, bool, error) {
	b, err := c.Redis.Get(ctx, chave).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *CacheRedis) Set(ctx context.Context, chave string, valor []byte, ttl time.Duration) error {
	return c.Redis.Set(ctx, chave, valor, ttl).Err()
}

func (c *CacheRedis) Del(ctx context.Context, chave string) error {
	return c.Redis.Del(ctx, chave).Err()
}
