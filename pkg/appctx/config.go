// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package appctx carries process wide handles on a context.
package appctx

import (
	"context"

	"github.com/morphinspector/morphinspector/pkg/cache"
	"github.com/morphinspector/morphinspector/pkg/config"
)

type key string

const (
	configKey key = "morphinspector.config.manager"
	cacheKey  key = "morphinspector.cache.store"
)

// WithConfig stores the shared config manager on context.
func WithConfig(ctx context.Context, manager *config.Manager) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, configKey, manager)
}

// Config retrieves the shared config manager from context.
func Config(ctx context.Context) (*config.Manager, bool) {
	if ctx == nil {
		return nil, false
	}
	mgr, ok := ctx.Value(configKey).(*config.Manager)
	return mgr, ok && mgr != nil
}

// WithCache stores the comparison cache on context. A nil store means caching
// is disabled.
func WithCache(ctx context.Context, store *cache.Store) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, cacheKey, store)
}

// Cache retrieves the comparison cache from context.
func Cache(ctx context.Context) (*cache.Store, bool) {
	if ctx == nil {
		return nil, false
	}
	store, ok := ctx.Value(cacheKey).(*cache.Store)
	return store, ok && store != nil
}
