package services

import (
	"context"
	"log"
	"time"

	"marketlens/backend-go/internal/models"
)

// ComputeFunc produces a fresh envelope for a cache miss.
type ComputeFunc func(ctx context.Context) (models.Envelope, error)

// Cached is the read-through wrapper around every feature handler: look
// the key up, decode on a hit, otherwise compute, encode and store. The
// second return reports whether the envelope came from the cache.
//
// The store is best effort: get failures and undecodable entries fall
// through to compute, and a failed set never fails the request. Exactly
// one write happens on a miss-then-success path; none on a hit or when
// compute fails. An encode failure is a defect and is returned alongside
// the computed envelope.
func Cached(ctx context.Context, store Store, key string, ttl time.Duration, compute ComputeFunc) (models.Envelope, bool, error) {
	if store != nil {
		if b, ok := store.Get(ctx, key); ok {
			if env, err := DecodeEnvelope(b); err == nil {
				return env, true, nil
			}
			log.Printf("cache entry %s undecodable, recomputing", key)
		}
	}

	env, err := compute(ctx)
	if err != nil {
		return models.Envelope{}, false, err
	}

	if store != nil {
		b, err := EncodeEnvelope(env)
		if err != nil {
			return env, false, err
		}
		if err := store.Set(ctx, key, b, ttl); err != nil {
			log.Printf("cache set %s: %v", key, err)
		}
	}
	return env, false, nil
}
