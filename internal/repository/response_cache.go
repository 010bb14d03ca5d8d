// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-redis/redis/v8"
)

// ResponseCache 是进程级的模型结果备忘录，没有过期与淘汰。
type ResponseCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// NormalizeKey 对缓存键做去空白与大小写折叠。
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

type memoryResponseCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryResponseCache 创建基于内存 map 的缓存，写路径由互斥锁保护。
func NewMemoryResponseCache() ResponseCache {
	return &memoryResponseCache{entries: make(map[string]string)}
}

func (c *memoryResponseCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[NormalizeKey(key)]
	return v, ok, nil
}

func (c *memoryResponseCache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	c.entries[NormalizeKey(key)] = value
	c.mu.Unlock()
	return nil
}

type redisResponseCache struct {
	redisClient *redis.Client
	prefix      string
}

// NewRedisResponseCache 创建基于 Redis 的缓存，条目不设置过期时间。
func NewRedisResponseCache(redisClient *redis.Client, prefix string) ResponseCache {
	return &redisResponseCache{redisClient: redisClient, prefix: prefix}
}

func (c *redisResponseCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.redisClient.Get(ctx, c.prefix+NormalizeKey(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get cache entry: %w", err)
	}
	return v, true, nil
}

func (c *redisResponseCache) Set(ctx context.Context, key, value string) error {
	if err := c.redisClient.Set(ctx, c.prefix+NormalizeKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}
