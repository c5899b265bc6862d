// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"bengkelbot/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CatalogCacheClient caches service catalog lookups.
	CatalogCacheClient *redis.Client
	// PrefsCacheClient holds per-sender conversation preferences.
	PrefsCacheClient *redis.Client
)

// InitCatalogCache initializes the Redis client for catalog caching.
func InitCatalogCache() {
	CatalogCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCatalogDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := CatalogCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Catalog Cache): %v", err)
	}
}

// GetCatalogCacheClient returns the catalog cache client.
func GetCatalogCacheClient() *redis.Client {
	if CatalogCacheClient == nil {
		InitCatalogCache()
	}
	return CatalogCacheClient
}

// InitPrefsCache initializes the Redis client for sender preference caching.
func InitPrefsCache() {
	PrefsCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisPrefsDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := PrefsCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Prefs Cache): %v", err)
	}
}

// GetPrefsCacheClient returns the Redis client for sender preferences.
func GetPrefsCacheClient() *redis.Client {
	if PrefsCacheClient == nil {
		InitPrefsCache()
	}
	return PrefsCacheClient
}
