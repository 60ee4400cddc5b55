package pdfstore

import (
	"context"
	"strings"
	"time"
)

// Namespace returns a RecordStore view that prefixes every key with the
// given namespace. Logically distinct record families (final metadata,
// pending uploads, rate-limit counters) each get their own namespace even
// when they share one physical store, so their keys cannot collide.
func Namespace(store RecordStore, prefix string) RecordStore {
	return &namespacedStore{store: store, prefix: prefix + ":"}
}

type namespacedStore struct {
	store  RecordStore
	prefix string
}

func (n *namespacedStore) Get(ctx context.Context, key string) ([]byte, error) {
	return n.store.Get(ctx, n.prefix+key)
}

func (n *namespacedStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return n.store.Put(ctx, n.prefix+key, value, ttl)
}

func (n *namespacedStore) Delete(ctx context.Context, key string) error {
	return n.store.Delete(ctx, n.prefix+key)
}

func (n *namespacedStore) List(ctx context.Context, prefix string) ([]string, error) {
	keys, err := n.store.List(ctx, n.prefix+prefix)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, n.prefix))
	}
	return out, nil
}
