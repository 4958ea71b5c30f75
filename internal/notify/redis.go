package notify

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/hktproto/hktmcp/internal/logx"
)

// RedisSink publishes notifications to a Redis channel and keeps a capped
// history list next to it (<channel>:recent).
type RedisSink struct {
	client  redis.UniversalClient
	channel string
	history string
	keep    int64
}

// NewRedisSink connects to addr and verifies the connection with PING.
func NewRedisSink(ctx context.Context, addr, channel string, keep int) (*RedisSink, error) {
	opts, err := parseRedisURL(addr)
	if err != nil {
		return nil, err
	}
	if keep <= 0 {
		keep = DefaultCapacity
	}
	c := redis.NewUniversalClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis %s: %w", RedactURL(addr), err)
	}
	logx.Log.Info().Str("redis", RedactURL(addr)).Str("channel", channel).Msg("publishing runtime notifications")
	return &RedisSink{client: c, channel: channel, history: channel + ":recent", keep: int64(keep)}, nil
}

func (r *RedisSink) Name() string { return "redis:" + r.channel }

// Publish sends e on the channel and appends it to the history list.
func (r *RedisSink) Publish(ctx context.Context, e Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Publish(ctx, r.channel, b)
		p.LPush(ctx, r.history, b)
		p.LTrim(ctx, r.history, 0, r.keep-1)
		return nil
	})
	return err
}

func (r *RedisSink) Close() error { return r.client.Close() }

// parseRedisURL parses addr into UniversalOptions supporting single, cluster,
// and sentinel Redis deployments. If no scheme is present, addr is treated as
// a plain host:port string.
func parseRedisURL(addr string) (*redis.UniversalOptions, error) {
	if !strings.Contains(addr, "://") {
		return &redis.UniversalOptions{Addrs: []string{addr}}, nil
	}
	u, err := url.Parse(addr)
	if err != nil {
		return nil, err
	}
	opts := &redis.UniversalOptions{Addrs: strings.Split(u.Host, ",")}
	if u.User != nil {
		opts.Username = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			opts.Password = pw
		}
	}
	q := u.Query()
	db := q.Get("db")
	switch u.Scheme {
	case "redis", "rediss":
		if p := strings.TrimPrefix(u.Path, "/"); p != "" {
			db = p
		}
		if u.Scheme == "rediss" {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
	case "redis-sentinel", "rediss-sentinel":
		opts.MasterName = strings.TrimPrefix(u.Path, "/")
		opts.SentinelUsername = q.Get("sentinel_username")
		opts.SentinelPassword = q.Get("sentinel_password")
		if u.Scheme == "rediss-sentinel" {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
	default:
		return nil, fmt.Errorf("redis: invalid URL scheme: %s", u.Scheme)
	}
	if db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return nil, fmt.Errorf("redis: invalid db: %v", err)
		}
		opts.DB = n
	}
	return opts, nil
}

// RedactURL hides the password of a Redis URL for logging.
func RedactURL(addr string) string {
	u, err := url.Parse(addr)
	if err != nil || !strings.Contains(addr, "://") {
		return addr
	}
	return u.Redacted()
}
