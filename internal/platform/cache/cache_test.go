// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

package cache_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvasirlabs/ward/internal/platform/cache"
	"github.com/kvasirlabs/ward/internal/platform/constants"
)

// newCachedHandler wraps a counting JSON handler in the response cache.
func newCachedHandler(t *testing.T, ttl time.Duration) (http.Handler, *atomic.Int64, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	var hits atomic.Int64
	origin := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		writer.WriteHeader(http.StatusOK)
		_, _ = writer.Write([]byte(`{"data":[]}`))
	})

	return cache.Responses(client, ttl)(origin), &hits, server
}

func get(handler http.Handler, target string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, target, nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

/*
TestResponses_MissThenHit: the first read goes to the origin, the second is
served from Redis without touching it.
*/
func TestResponses_MissThenHit(t *testing.T) {
	handler, hits, _ := newCachedHandler(t, cache.DefaultTTL)

	first := get(handler, "/roles")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, int64(1), hits.Load())

	second := get(handler, "/roles")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", second.Header().Get("Content-Type"))
	assert.Equal(t, int64(1), hits.Load(), "origin must not be hit twice")
}

/*
TestResponses_KeyedByURL: different URLs never share entries.
*/
func TestResponses_KeyedByURL(t *testing.T) {
	handler, hits, _ := newCachedHandler(t, cache.DefaultTTL)

	get(handler, "/roles")
	get(handler, "/permissions")

	assert.Equal(t, int64(2), hits.Load())
}

/*
TestResponses_CredentialsSplitKeys: credentialed and anonymous reads of the
same URL live under separate keys.
*/
func TestResponses_CredentialsSplitKeys(t *testing.T) {
	handler, hits, _ := newCachedHandler(t, cache.DefaultTTL)

	get(handler, "/roles")

	request := httptest.NewRequest(http.MethodGet, "/roles", nil)
	request.Header.Set(constants.HeaderAuthorization, "Bearer some-token")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, "MISS", recorder.Header().Get("X-Cache"))
	assert.Equal(t, int64(2), hits.Load())
}

/*
TestResponses_SkipsNonGET: mutating methods bypass the cache entirely.
*/
func TestResponses_SkipsNonGET(t *testing.T) {
	handler, hits, server := newCachedHandler(t, cache.DefaultTTL)

	request := httptest.NewRequest(http.MethodPost, "/roles", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, int64(1), hits.Load())
	assert.Empty(t, recorder.Header().Get("X-Cache"))
	assert.Empty(t, server.Keys())
}

/*
TestResponses_TTLExpiry: entries fall out of Redis after the configured TTL.
*/
func TestResponses_TTLExpiry(t *testing.T) {
	handler, hits, server := newCachedHandler(t, 10*time.Second)

	get(handler, "/roles")
	server.FastForward(11 * time.Second)

	refreshed := get(handler, "/roles")
	assert.Equal(t, "MISS", refreshed.Header().Get("X-Cache"))
	assert.Equal(t, int64(2), hits.Load())
}

/*
TestResponses_RedisDownDegradesToPassThrough: Redis unavailability must never
fail a request.
*/
func TestResponses_RedisDownDegradesToPassThrough(t *testing.T) {
	handler, hits, server := newCachedHandler(t, cache.DefaultTTL)
	server.Close()

	response := get(handler, "/roles")

	require.Equal(t, http.StatusOK, response.Code)
	assert.JSONEq(t, `{"data":[]}`, response.Body.String())
	assert.Equal(t, int64(1), hits.Load())
}
