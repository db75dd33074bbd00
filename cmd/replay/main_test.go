package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	forecastFile = "../../internal/adapter/openmeteo/testdata/forecast.json"
	airFile      = "../../internal/adapter/openmeteo/testdata/air_quality.json"
)

type replayReport struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Reading struct {
		AQISource string `json:"aqi_source"`
		AQITime   string `json:"aqi_time"`
	} `json:"reading"`
	Verdict struct {
		Icon string `json:"icon"`
		Text string `json:"text"`
	} `json:"verdict"`
}

func replay(t *testing.T, args ...string) replayReport {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, run(append([]string{"-weather", forecastFile, "-air", airFile}, args...), &out))

	var r replayReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &r))
	return r
}

func TestReplay_Fixtures(t *testing.T) {
	r := replay(t, "-at", "2024-04-26T06:10:00+09:00")

	assert.True(t, r.OK)
	assert.Equal(t, "moderate", r.Verdict.Icon)
	assert.Equal(t, "Caution", r.Verdict.Text)
	assert.Equal(t, "🟡 Caution | Seoul 06:00 | 30.0°C RH 50% wind 36.0km/h | AQI 40 (Good)", r.Message)
	assert.Equal(t, "2024-04-26T05:00", r.Reading.AQITime)
	assert.Equal(t, "index", r.Reading.AQISource)
}

func TestReplay_ClockInUTC(t *testing.T) {
	r := replay(t, "-at", "2024-04-25T21:10:00Z")

	assert.Contains(t, r.Message, "Seoul 06:00")
}

func TestReplay_MissingFlags(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-weather", forecastFile}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required flags")
}

func TestReplay_InvalidInputs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad time", []string{"-at", "06:10"}},
		{"bad zone", []string{"-at", "2024-04-26T06:10:00+09:00", "-tz", "Mars/Olympus"}},
		{"bad mode", []string{"-at", "2024-04-26T06:10:00+09:00", "-mode", "guess"}},
		{"bad hour", []string{"-at", "2024-04-26T06:10:00+09:00", "-hour", "24"}},
		{"missing file", []string{"-at", "2024-04-26T06:10:00+09:00", "-air", "testdata/none.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			args := append([]string{"-weather", forecastFile, "-air", airFile}, tt.args...)
			assert.Error(t, run(args, &out))
		})
	}
}
