package publisher

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nattapol/villaharvester/internal/listing"
)

func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()
	publisher := NewRedisPublisher(ctx, "localhost:6379", 0, "test_stream_v", 1, 100)
	defer publisher.Close()

	// Create a subscriber to verify the message was published
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   0,
	})
	defer client.Close()

	// Test if Redis is available
	_, err := client.Ping(ctx).Result()
	if err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	err = client.XGroupCreateMkStream(ctx, "test_stream_v:0", "test_group", "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		panic(err)
	}

	messages := make(chan string, 1)

	go func() {
		message, err := client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Streams:  []string{"test_stream_v:0", ">"},
			Group:    "test_group",
			Consumer: "test_consumer",
			Block:    0,
		}).Result()
		assert.NoError(t, err)
		messages <- message[0].Messages[0].Values["b64_villas"].(string)
	}()

	time.Sleep(100 * time.Millisecond)

	snapshot := listing.Snapshot{
		ExternalID: "7711695",
		Slug:       "baan-talay-pool-villa",
		Title:      "Baan Talay Pool Villa",
		Province:   "Phuket",
		PriceDaily: 8500,
	}
	err = publisher.PublishListing(snapshot)
	assert.NoError(t, err)

	select {
	case msg := <-messages:
		decoded, err := base64.StdEncoding.DecodeString(msg)
		require.NoError(t, err)

		var got listing.Snapshot
		require.NoError(t, json.Unmarshal(decoded, &got))
		assert.Equal(t, "baan-talay-pool-villa", got.Slug)
		assert.Equal(t, 8500, got.PriceDaily)
	case <-time.After(1 * time.Second):
		t.Error("Timed out waiting for message")
	}
}
