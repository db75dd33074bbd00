//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kafkaadapter "github.com/couchcryptid/run-advisory-service/internal/adapter/kafka"
	mqttadapter "github.com/couchcryptid/run-advisory-service/internal/adapter/mqtt"
	"github.com/couchcryptid/run-advisory-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/run-advisory-service/internal/advisor"
	"github.com/couchcryptid/run-advisory-service/internal/config"
	"github.com/couchcryptid/run-advisory-service/internal/domain"
	"github.com/couchcryptid/run-advisory-service/internal/observability"
)

const wantMessage = "🟡 Caution | Seoul 06:00 | 30.0°C RH 50% wind 36.0km/h | AQI 40 (Good)"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// forecastServer serves the recorded Open-Meteo fixtures for both APIs.
func forecastServer(t *testing.T) *httptest.Server {
	t.Helper()
	files := map[string]string{
		"/v1/forecast":    "../adapter/openmeteo/testdata/forecast.json",
		"/v1/air-quality": "../adapter/openmeteo/testdata/air_quality.json",
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := os.ReadFile(files[r.URL.Path])
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newAdvisor(t *testing.T, topic string, notifier advisor.Notifier) *advisor.Advisor {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, 4, 25, 21, 10, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	zone, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	srv := forecastServer(t)
	metrics := observability.NewMetricsForTesting()
	client := openmeteo.NewClient(srv.URL, srv.URL, 10*time.Second, metrics, discardLogger())

	settings := advisor.Settings{
		Location:   domain.Location{Name: "Seoul", Lat: 37.5665, Lon: 126.978, TimeZone: zone},
		TargetHour: -1,
		AQIMode:    domain.AQIModeAuto,
		Topic:      topic,
	}
	return advisor.New(settings, client, client, notifier, nil, discardLogger(), metrics)
}

// TestAdvisorToKafka runs a full advisory against recorded forecasts and
// reads the notification back from the topic.
func TestAdvisorToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	topic := uniqueName("run-advisory")
	createTopic(t, broker, topic)

	writer := kafkaadapter.NewWriter(&config.Config{
		KafkaBrokers: []string{broker},
		HTTPTimeout:  10 * time.Second,
	}, discardLogger())
	defer writer.Close()

	a := newAdvisor(t, topic, writer)
	report, err := a.Run(ctx)
	require.NoError(t, err)
	require.True(t, report.OK)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1e6,
	})
	defer consumer.Close()

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read notification")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var payload map[string]string
	require.NoError(t, json.Unmarshal(msg.Value, &payload))

	assert.Equal(t, report.RunID, string(msg.Key))
	assert.Equal(t, "moderate", headers["icon"])
	assert.Equal(t, "Run check 2024-04-26 06:00", headers["title"])
	assert.Equal(t, wantMessage, payload["message"])
	assert.Equal(t, topic, payload["topic"])
}

// TestAdvisorToMQTT delivers the same advisory through an MQTT broker.
func TestAdvisorToMQTT(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	host, port := startMosquitto(ctx, t)
	topic := "runs/" + uniqueName("seoul")

	received := make(chan []byte, 1)
	sub := pahomqtt.NewClient(pahomqtt.NewClientOptions().
		AddBroker("tcp://" + net.JoinHostPort(host, strconv.Itoa(port))).
		SetClientID(uniqueName("subscriber")))
	token := sub.Connect()
	require.True(t, token.WaitTimeout(10*time.Second))
	require.NoError(t, token.Error())
	defer sub.Disconnect(250)

	token = sub.Subscribe(topic, 1, func(_ pahomqtt.Client, m pahomqtt.Message) {
		received <- m.Payload()
	})
	require.True(t, token.WaitTimeout(10*time.Second))
	require.NoError(t, token.Error())

	publisher := mqttadapter.NewPublisher(&config.Config{
		MQTTBroker:   host,
		MQTTPort:     port,
		MQTTClientID: uniqueName("publisher"),
		HTTPTimeout:  10 * time.Second,
	}, discardLogger())
	defer publisher.Close()

	report, err := newAdvisor(t, topic, publisher).Run(ctx)
	require.NoError(t, err)

	select {
	case body := <-received:
		var payload map[string]string
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, report.RunID, payload["run_id"])
		assert.Equal(t, wantMessage, payload["message"])
		assert.Equal(t, "moderate", payload["icon"])
	case <-ctx.Done():
		t.Fatal("no message received")
	}
}
