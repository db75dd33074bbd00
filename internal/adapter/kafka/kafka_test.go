package kafka

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/run-advisory-service/internal/config"
	"github.com/couchcryptid/run-advisory-service/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	n := domain.Notification{
		RunID:   "run-1",
		Topic:   "morning-run",
		Title:   "Run check 2024-04-26 06:00",
		Message: "🔴 Indoor only | Seoul 06:00 | 20.0°C RH 40% wind 18.0km/h | AQI 120 (Unhealthy for Sensitive Groups)",
		Icon:    domain.IconSevere,
	}

	msg, err := serializeToMessage(n)
	require.NoError(t, err)

	assert.Equal(t, "morning-run", msg.Topic)
	assert.Equal(t, []byte("run-1"), msg.Key)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "icon", msg.Headers[0].Key)
	assert.Equal(t, []byte("severe"), msg.Headers[0].Value)
	assert.Equal(t, "title", msg.Headers[1].Key)
	assert.Equal(t, []byte(n.Title), msg.Headers[1].Value)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "severe", decoded["icon"])
	assert.Equal(t, n.Message, decoded["message"])
	assert.Equal(t, "run-1", decoded["run_id"])
}

func TestNewWriter(t *testing.T) {
	cfg := &config.Config{
		KafkaBrokers: []string{"broker1:9092", "broker2:9092"},
		HTTPTimeout:  3 * time.Second,
	}

	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	assert.Empty(t, w.writer.Topic, "topic comes from each message")
	assert.Equal(t, "broker1:9092,broker2:9092", w.writer.Addr.String())
	assert.Equal(t, 3*time.Second, w.writer.WriteTimeout)
}
