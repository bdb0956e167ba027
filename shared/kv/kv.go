// Package kv defines the durable key-value contract the forum state is persisted through,
// plus wrappers shared by every backend.
//
// Values are opaque JSON documents. A missing key is reported as (nil, false, nil), never as
// an error; corrupt values are the caller's concern.
package kv

import (
	"context"
	"errors"
)

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("kv: store closed")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

type prefixed struct {
	Store
	prefix string
}

// WithPrefix namespaces every key with prefix. An empty prefix returns s unchanged.
func WithPrefix(s Store, prefix string) Store {
	if prefix == "" {
		return s
	}
	return &prefixed{Store: s, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.Store.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.Store.Set(ctx, p.prefix+key, value)
}
