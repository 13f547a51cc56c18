package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "localhost:6379", config.RedisAddr)
	assert.Equal(t, 0, config.RedisDB)
	assert.Equal(t, 1, config.RedisStreamCount)
	assert.Equal(t, "localhost:11211", config.MemcacheAddr)
	assert.Equal(t, 60*time.Second, config.NavTimeout)
	assert.Equal(t, 5, config.EnrichConcurrency)
	assert.Equal(t, 50, config.MaxLoadMoreRounds)
	assert.Empty(t, config.ProxyServers)

	// Test with environment variables
	os.Setenv("REDIS_ADDR", "redis.example.com:6379")
	os.Setenv("REDIS_DB", "1")
	os.Setenv("MEMCACHE_ADDR", "memcache.example.com:11211")
	os.Setenv("ENRICH_CONCURRENCY", "3")
	os.Setenv("HARVEST_LOCATIONS", "หัวหิน:ประจวบคีรีขันธ์,Pattaya:Chonburi")
	os.Setenv("PROXY_SERVERS", "socks5://10.0.0.1:1080, socks5://10.0.0.2:1080")

	config = LoadConfig()
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)
	assert.Equal(t, 1, config.RedisDB)
	assert.Equal(t, "memcache.example.com:11211", config.MemcacheAddr)
	assert.Equal(t, 3, config.EnrichConcurrency)
	assert.Equal(t, []TargetLocation{
		{Name: "หัวหิน", Province: "ประจวบคีรีขันธ์"},
		{Name: "Pattaya", Province: "Chonburi"},
	}, config.Locations)
	assert.Equal(t, []string{"socks5://10.0.0.1:1080", "socks5://10.0.0.2:1080"}, config.ProxyServers)

	// Clean up
	os.Unsetenv("REDIS_ADDR")
	os.Unsetenv("REDIS_DB")
	os.Unsetenv("MEMCACHE_ADDR")
	os.Unsetenv("ENRICH_CONCURRENCY")
	os.Unsetenv("HARVEST_LOCATIONS")
	os.Unsetenv("PROXY_SERVERS")
}

func TestValidate(t *testing.T) {
	config := LoadConfig()
	assert.NoError(t, config.Validate())

	config.Locations = nil
	assert.Error(t, config.Validate())

	config = LoadConfig()
	config.MinSleep = 10 * time.Second
	config.MaxSleep = 2 * time.Second
	assert.Error(t, config.Validate())
}
