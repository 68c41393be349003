package ratelimit

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/api"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/api/apitest"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
)

type memKV struct {
	mu   sync.Mutex
	vals map[string]string
	ttl  map[string]int
}

func newMemKV() *memKV {
	return &memKV{vals: map[string]string{}, ttl: map[string]int{}}
}

func (m *memKV) GetCtx(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vals[key], nil
}

func (m *memKV) SetCtx(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] = value
	return nil
}

func (m *memKV) SetexCtx(_ context.Context, key, value string, seconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] = value
	m.ttl[key] = seconds
	return nil
}

func (m *memKV) DelCtx(_ context.Context, keys ...string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, k := range keys {
		if _, ok := m.vals[k]; ok {
			delete(m.vals, k)
			n++
		}
	}
	return n, nil
}

func (m *memKV) KeysCtx(_ context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var out []string
	for k := range m.vals {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func TestStorage(t *testing.T) {
	client := newMemKV()
	s := newStorage(client)

	got, err := s.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Set("a", []byte("1"), 1500*time.Millisecond))
	require.NoError(t, s.Set("b", []byte("2"), 0))
	require.NoError(t, s.Set("", []byte("x"), 0))
	assert.Equal(t, 2, client.ttl[defaultPrefix+"a"])
	assert.NotContains(t, client.ttl, defaultPrefix+"b")

	got, err = s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)

	require.NoError(t, s.Delete("a"))
	got, _ = s.Get("a")
	assert.Nil(t, got)

	client.vals["other:key"] = "keep"
	require.NoError(t, s.Reset())
	assert.Equal(t, map[string]string{"other:key": "keep"}, client.vals)
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, 1, seconds(time.Millisecond))
	assert.Equal(t, 60, seconds(time.Minute))
	assert.Equal(t, 61, seconds(time.Minute+time.Nanosecond))
}

func newApp(id uuid.UUID, storage fiber.Storage) *fiber.App {
	return apitest.NewApp(auth.Identity{UserID: id}, func(r fiber.Router) {
		r.Use(Writes(Options{Max: 2, Window: time.Minute, Storage: storage}))
		r.Get("/things", func(c *fiber.Ctx) error { return api.OK(c, fiber.Map{}) })
		r.Post("/things", func(c *fiber.Ctx) error { return api.Created(c, fiber.Map{}) })
	})
}

func TestWritesLimitedPerUser(t *testing.T) {
	for name, storage := range map[string]fiber.Storage{"memory": nil, "redis": newStorage(newMemKV())} {
		t.Run(name, func(t *testing.T) {
			app := newApp(uuid.New(), storage)

			for i := 0; i < 2; i++ {
				status, _ := apitest.Do(t, app, http.MethodPost, "/api/things", `{}`)
				require.Equal(t, http.StatusCreated, status)
			}
			status, body := apitest.Do(t, app, http.MethodPost, "/api/things", `{}`)
			assert.Equal(t, http.StatusTooManyRequests, status)
			assert.Equal(t, "too many requests", body["error"])

			for i := 0; i < 5; i++ {
				status, _ = apitest.Do(t, app, http.MethodGet, "/api/things", nil)
				assert.Equal(t, http.StatusOK, status)
			}
		})
	}
}

func TestUsersDoNotShareBudget(t *testing.T) {
	storage := newStorage(newMemKV())
	first := newApp(uuid.New(), storage)
	second := newApp(uuid.New(), storage)

	for i := 0; i < 2; i++ {
		status, _ := apitest.Do(t, first, http.MethodPost, "/api/things", `{}`)
		require.Equal(t, http.StatusCreated, status)
	}
	status, _ := apitest.Do(t, second, http.MethodPost, "/api/things", `{}`)
	assert.Equal(t, http.StatusCreated, status)
}
