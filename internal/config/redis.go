package config

// This file defines the Redis client constructor.  Redis backs the login and
// video-view rate limiters and the module lookup cache.  Both degrade
// gracefully: when the server cannot be reached the client is nil and
// callers run without limiting or caching.

import (
    "context"
    "crypto/tls"
    "fmt"
    "net"
    "os"
    "time"

    "github.com/redis/go-redis/v9"
)

// NewRedisClient builds a client from REDIS_ADDR (or REDIS_HOST and
// REDIS_PORT, which win when both are set), REDIS_PASSWORD, REDIS_DB and
// REDIS_TLS, then pings it.  On a failed ping the client is closed and nil
// is returned with the error.
func NewRedisClient(ctx context.Context) (*redis.Client, error) {
    addr := envStr("REDIS_ADDR", "localhost:6379")
    if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
        addr = net.JoinHostPort(host, port)
    }
    opts := &redis.Options{
        Addr:     addr,
        Password: os.Getenv("REDIS_PASSWORD"),
        DB:       envInt("REDIS_DB", 0),
    }
    if envBool("REDIS_TLS", false) {
        host, _, err := net.SplitHostPort(addr)
        if err != nil {
            host = addr
        }
        opts.TLSConfig = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
    }

    client := redis.NewClient(opts)
    pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
    defer cancel()
    if err := client.Ping(pingCtx).Err(); err != nil {
        _ = client.Close()
        return nil, fmt.Errorf("redis ping %s: %w", addr, err)
    }
    return client, nil
}
