// Package sysconf reads system configuration values from the app
// server's p2system/SysConf service. Values change rarely, so reads go
// through a cache by default; ClearCache drops everything at once and
// single reads can bypass the cache explicitly.
package sysconf

import (
	"context"
	"strings"
	"sync"

	"github.com/erptools/go-applus/soap"
)

// SysConf caches configuration values per module/name/type. It is safe
// for concurrent use.
type SysConf struct {
	client soap.Caller

	mu    sync.Mutex
	cache map[string]any
}

// New creates a SysConf over the given p2system/SysConf client.
func New(client soap.Caller) *SysConf {
	return &SysConf{client: client, cache: map[string]any{}}
}

// ClearCache drops all cached values.
func (s *SysConf) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = map[string]any{}
}

func (s *SysConf) lookup(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache[key]
	return v, ok
}

func (s *SysConf) store(key string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = v
}

func get[T any](ctx context.Context, s *SysConf, ty, op, module, name string, useCache bool,
	call func(ctx context.Context, c soap.Caller, op string, args ...any) (T, error)) (T, error) {
	key := module + "/" + name + "/" + ty
	if useCache {
		if v, ok := s.lookup(key); ok {
			return v.(T), nil
		}
	}
	v, err := call(ctx, s.client, op, module, name)
	if err != nil {
		var zero T
		return zero, err
	}
	s.store(key, v)
	return v, nil
}

// GetString reads a string value.
func (s *SysConf) GetString(ctx context.Context, module, name string, useCache bool) (string, error) {
	return get(ctx, s, "string", "getString", module, name, useCache, soap.CallString)
}

// GetInt reads an integer value.
func (s *SysConf) GetInt(ctx context.Context, module, name string, useCache bool) (int, error) {
	return get(ctx, s, "int", "getInt", module, name, useCache, soap.CallInt)
}

// GetDouble reads a float value.
func (s *SysConf) GetDouble(ctx context.Context, module, name string, useCache bool) (float64, error) {
	return get(ctx, s, "double", "getDouble", module, name, useCache, soap.CallFloat)
}

// GetBoolean reads a boolean value.
func (s *SysConf) GetBoolean(ctx context.Context, module, name string, useCache bool) (bool, error) {
	return get(ctx, s, "boolean", "getBoolean", module, name, useCache, soap.CallBool)
}

// GetList reads a string value and splits it at sep. An empty or
// missing value yields nil.
func (s *SysConf) GetList(ctx context.Context, module, name, sep string, useCache bool) ([]string, error) {
	v, err := s.GetString(ctx, module, name, useCache)
	if err != nil {
		return nil, err
	}
	if v == "" {
		return nil, nil
	}
	return strings.Split(v, sep), nil
}
