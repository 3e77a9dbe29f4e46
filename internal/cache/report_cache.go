package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/andresuchdata/bizdash-go/internal/config"
	"github.com/andresuchdata/bizdash-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	reportKeyPrefix  = "dashboard:report"
	scanBatchSize    = 100
	defaultReportTTL = 5 * time.Minute
	pingTimeout      = 5 * time.Second
)

// ReportCache stores serialized dashboard reports keyed by source and
// reference date.
type ReportCache interface {
	Get(ctx context.Context, source, referenceDate string) (*domain.DashboardReport, bool, error)
	Set(ctx context.Context, source, referenceDate string, report *domain.DashboardReport) error
	Invalidate(ctx context.Context) error
	Close() error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

// NewReportCache returns a redis backed cache, or a no-op cache when caching
// is disabled.
func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return NewNoopReportCache(), nil
	}

	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &redisReportCache{client: client, ttl: reportTTL(cfg)}, nil
}

func NewNoopReportCache() ReportCache {
	return noopReportCache{}
}

func (c *redisReportCache) Get(ctx context.Context, source, referenceDate string) (*domain.DashboardReport, bool, error) {
	payload, err := c.client.Get(ctx, reportKey(source, referenceDate)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report domain.DashboardReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("decode report cache: %w", err)
	}
	return &report, true, nil
}

func (c *redisReportCache) Set(ctx context.Context, source, referenceDate string, report *domain.DashboardReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report cache: %w", err)
	}
	if err := c.client.Set(ctx, reportKey(source, referenceDate), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Invalidate drops every cached report.
func (c *redisReportCache) Invalidate(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, reportKeyPrefix+":*", scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis delete failed: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (c *redisReportCache) Close() error {
	return c.client.Close()
}

func (noopReportCache) Get(context.Context, string, string) (*domain.DashboardReport, bool, error) {
	return nil, false, nil
}

func (noopReportCache) Set(context.Context, string, string, *domain.DashboardReport) error {
	return nil
}

func (noopReportCache) Invalidate(context.Context) error { return nil }

func (noopReportCache) Close() error { return nil }

func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func reportTTL(cfg config.CacheConfig) time.Duration {
	ttl := time.Duration(cfg.ReportTTLSeconds) * time.Second
	if ttl <= 0 {
		return defaultReportTTL
	}
	return ttl
}

func reportKey(source, referenceDate string) string {
	raw := strings.ToLower(strings.TrimSpace(source)) + "|" + strings.TrimSpace(referenceDate)
	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s", reportKeyPrefix, hex.EncodeToString(hash[:]))
}
