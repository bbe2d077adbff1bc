// Copyright (c) 2026 Kvasir Labs. All rights reserved.
// Author: ops@kvasirlabs.dev

/*
Package cache provides a bounded, TTL-based read-through response cache for
idempotent GET endpoints.

Entries are keyed by request URL plus a credentials flag and stored in Redis,
so all instances of the service share one cache and eviction is handled by
Redis TTLs rather than in-process state.

# Scope

The middleware is mounted only on admin list reads. It must NEVER wrap token
issuance, refresh, or any endpoint whose response depends on an authorization
decision beyond "is this principal authenticated as an admin".
*/
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kvasirlabs/ward/internal/platform/constants"
	"github.com/kvasirlabs/ward/internal/platform/ctxutil"
)

// DefaultTTL is how long a cached list response stays fresh.
const DefaultTTL = 30 * time.Second

// cachedResponse is the serialized form of a captured response.
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// captureWriter buffers the downstream response so it can be stored.
type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (writer *captureWriter) WriteHeader(code int) {
	writer.status = code
	writer.ResponseWriter.WriteHeader(code)
}

func (writer *captureWriter) Write(payload []byte) (int, error) {
	writer.body.Write(payload)
	return writer.ResponseWriter.Write(payload)
}

// Responses builds the read-through caching middleware.
//
// # Key Shape
//
// cache:response:<credentials-flag>:<url> — the flag separates anonymous
// from credentialed variants of the same URL so the two can never serve
// each other's payloads.
//
// # Failure Mode
//
// Redis unavailability degrades to a pass-through: the request is served
// normally and the miss is logged, never surfaced to the client.
func Responses(client *redis.Client, ttl time.Duration) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// Only idempotent reads are ever cached.
			if request.Method != http.MethodGet {
				next.ServeHTTP(writer, request)
				return
			}

			key := cacheKey(request)
			logger := ctxutil.GetLogger(request.Context())

			// ── 1. Cache Lookup ───────────────────────────────────────────────
			if entry, found := lookup(request.Context(), client, key, logger); found {
				writer.Header().Set("Content-Type", entry.ContentType)
				writer.Header().Set("X-Cache", "HIT")
				writer.WriteHeader(entry.Status)
				_, _ = writer.Write(entry.Body)
				return
			}

			// ── 2. Pass Through & Capture ─────────────────────────────────────
			captured := &captureWriter{ResponseWriter: writer, status: http.StatusOK}
			captured.Header().Set("X-Cache", "MISS")
			next.ServeHTTP(captured, request)

			// ── 3. Store (successful responses only) ──────────────────────────
			if captured.status == http.StatusOK {
				store(request.Context(), client, key, ttl, cachedResponse{
					Status:      captured.status,
					ContentType: captured.Header().Get("Content-Type"),
					Body:        captured.body.Bytes(),
				}, logger)
			}
		})
	}
}

// cacheKey derives the Redis key for a request: URL plus credentials flag.
func cacheKey(request *http.Request) string {
	flag := "anon"
	if request.Header.Get(constants.HeaderAuthorization) != "" {
		flag = "cred"
	}
	return constants.RedisPrefixResponseCache + flag + ":" + request.URL.RequestURI()
}

// lookup fetches and decodes a cached entry. Any failure is a miss.
func lookup(ctx context.Context, client *redis.Client, key string, logger *slog.Logger) (cachedResponse, bool) {
	payload, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("response_cache_lookup_failed", slog.Any("error", err))
		}
		return cachedResponse{}, false
	}

	var entry cachedResponse
	if err := json.Unmarshal(payload, &entry); err != nil {
		return cachedResponse{}, false
	}
	return entry, true
}

// store serializes and writes a cache entry with the configured TTL.
func store(ctx context.Context, client *redis.Client, key string, ttl time.Duration, entry cachedResponse, logger *slog.Logger) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := client.Set(ctx, key, payload, ttl).Err(); err != nil {
		logger.Warn("response_cache_store_failed", slog.Any("error", err))
	}
}
