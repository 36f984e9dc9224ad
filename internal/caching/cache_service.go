package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"billledger/internal/logger"
	"billledger/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// BillCache holds stored bill snapshots keyed by id. Derived fields such as
// the effective status are computed by callers after a hit, never cached.
//
// Every invalidation bumps the bill's version. A reader takes Version before
// loading the bill from storage and hands it to SetBill, which stores nothing
// if the bill was invalidated in between.
type BillCache interface {
	GetBill(ctx context.Context, billID uuid.UUID) (*models.Bill, error)
	Version(ctx context.Context, billID uuid.UUID) (int64, error)
	SetBill(ctx context.Context, bill *models.Bill, version int64) error
	InvalidateBill(ctx context.Context, billID uuid.UUID) error
	InvalidateAll(ctx context.Context) error
	Ping(ctx context.Context) error
}

const (
	keyPrefix = "billledger:"
	// versions outlive cached bills so an in-flight reader always sees a bump
	versionTTL = 24 * time.Hour
)

type redisBillCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisBillCache(addr, password string, db int, ttl time.Duration) BillCache {
	parsedAddr := parseAddr(addr)
	log := logger.WithComponent("cache")

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Warn().Err(pingErr).Str("address", parsedAddr).Msg("Redis ping failed on initialization")
	} else {
		log.Debug().Str("address", parsedAddr).Msg("Redis connection established")
	}

	return &redisBillCache{client: client, ttl: ttl}
}

// parseAddr strips a redis:// or rediss:// scheme down to host:port
func parseAddr(addr string) string {
	for _, scheme := range []string{"rediss://", "redis://"} {
		if strings.HasPrefix(addr, scheme) {
			return strings.TrimPrefix(addr, scheme)
		}
	}
	return addr
}

func billKey(billID uuid.UUID) string {
	return fmt.Sprintf("%sbill:%s", keyPrefix, billID.String())
}

func versionKey(billID uuid.UUID) string {
	return fmt.Sprintf("%sversion:%s", keyPrefix, billID.String())
}

// GetBill returns nil, nil on a cache miss
func (r *redisBillCache) GetBill(ctx context.Context, billID uuid.UUID) (*models.Bill, error) {
	data, err := r.client.Get(ctx, billKey(billID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var bill models.Bill
	if err := json.Unmarshal(data, &bill); err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *redisBillCache) Version(ctx context.Context, billID uuid.UUID) (int64, error) {
	version, err := r.client.Get(ctx, versionKey(billID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return version, err
}

// SetBill stores bill only while its version still equals version. The
// version key is watched so a concurrent invalidation aborts the write.
func (r *redisBillCache) SetBill(ctx context.Context, bill *models.Bill, version int64) error {
	data, err := json.Marshal(bill)
	if err != nil {
		return err
	}

	vk := versionKey(bill.ID)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vk).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, billKey(bill.ID), data, r.ttl)
			return nil
		})
		return err
	}, vk)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

func (r *redisBillCache) InvalidateBill(ctx context.Context, billID uuid.UUID) error {
	vk := versionKey(billID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, vk)
		pipe.Expire(ctx, vk, versionTTL)
		pipe.Del(ctx, billKey(billID))
		return nil
	})
	return err
}

// InvalidateAll drops every cached bill. Versions are left alone so readers
// already in flight still lose their race against a later invalidation.
func (r *redisBillCache) InvalidateAll(ctx context.Context) error {
	var keys []string
	iter := r.client.Scan(ctx, 0, keyPrefix+"bill:*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisBillCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// NoopBillCache is used when no Redis address is configured
type NoopBillCache struct{}

func (NoopBillCache) GetBill(context.Context, uuid.UUID) (*models.Bill, error) { return nil, nil }
func (NoopBillCache) Version(context.Context, uuid.UUID) (int64, error)        { return 0, nil }
func (NoopBillCache) SetBill(context.Context, *models.Bill, int64) error       { return nil }
func (NoopBillCache) InvalidateBill(context.Context, uuid.UUID) error          { return nil }
func (NoopBillCache) InvalidateAll(context.Context) error                      { return nil }
func (NoopBillCache) Ping(context.Context) error                               { return nil }
