// Package redis is a kv.Store backed by plain Redis string keys.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/itchan-dev/foro/shared/config"
	"github.com/itchan-dev/foro/shared/kv"
)

type Storage struct {
	client *redis.Client
}

var _ kv.Store = (*Storage)(nil)

// Options builds client options from cfg. Addr may be host:port or a redis:// URL.
func Options(cfg config.Redis) (*redis.Options, error) {
	if strings.Contains(cfg.Addr, "://") {
		opts, err := redis.ParseURL(cfg.Addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url %q: %w", cfg.Addr, err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}, nil
}

// New connects and pings the server.
func New(ctx context.Context, cfg config.Redis) (*Storage, error) {
	opts, err := Options(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", opts.Addr, err)
	}
	return &Storage{client: client}, nil
}

func NewWithClient(client *redis.Client) *Storage {
	return &Storage{client: client}
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return v, true, nil
}

func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	// no expiration: the values outlive restarts like browser storage does
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Close() error {
	return s.client.Close()
}
