// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-vault/pkg/types"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"chatty", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, types.LoggingConfig{Level: "info", Format: "json"})
	scan := WithComponent(logger, "scan")
	scan.Info().Int("scored", 3).Msg("done")
	logger.Debug().Msg("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "scan", entry["component"])
	assert.Equal(t, "research-vault", entry["service"])
	assert.Equal(t, float64(3), entry["scored"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Scored(true)
		m.Skipped("filtered", 2)
		m.Citation("APA", "full")
		m.Incomplete()
		m.StyleFallback()
		m.ObserveRequest("/healthz", "200", 0.01)
	})
}

func TestMetricsCount(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.Scored(true)
	m.Scored(false)
	m.Skipped("known", 3)
	m.Skipped("known", 0)
	m.Citation("MLA", "full")
	m.Citation("MLA", "full")
	m.StyleFallback()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EntriesScored))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AcademicEntries))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.EntriesSkipped.WithLabelValues("known")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CitationsGenerated.WithLabelValues("MLA", "full")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StyleFallbacks))
}
