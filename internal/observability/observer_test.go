package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/generation"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/llm"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

var (
	_ generation.Observer = (*LogObserver)(nil)
	_ generation.Observer = (*MetricsObserver)(nil)
)

func successOutcome() *types.UnitOutcome {
	return &types.UnitOutcome{
		Unit:     types.UnitAbout,
		Status:   types.StatusSuccess,
		Content:  &types.AboutSection{Title: "About"},
		Usage:    types.UsageRecord{PromptTokens: 120, CompletionTokens: 30},
		Attempts: 2,
		Duration: 1500 * time.Millisecond,
	}
}

func failedOutcome(unit types.UnitType) *types.UnitOutcome {
	return &types.UnitOutcome{
		Unit:   unit,
		Status: types.StatusFailed,
		Failure: &types.Failure{
			Reason:      types.ReasonSchemaInvalid,
			Message:     "schema validation failed",
			FieldErrors: []types.FieldError{{Field: "items", Message: "too short"}},
		},
		Attempts: 1,
	}
}

func TestLogObserver_OnUnitOutcome(t *testing.T) {
	tests := []struct {
		name      string
		outcome   *types.UnitOutcome
		wantLevel zapcore.Level
		wantMsg   string
	}{
		{name: "success", outcome: successOutcome(), wantLevel: zapcore.InfoLevel, wantMsg: "unit generated"},
		{name: "required failure", outcome: failedOutcome(types.UnitTestimonials), wantLevel: zapcore.ErrorLevel, wantMsg: "unit failed"},
		{name: "optional failure", outcome: failedOutcome(types.UnitTeam), wantLevel: zapcore.WarnLevel, wantMsg: "optional unit failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			obs := NewLogObserver(zap.New(core))

			obs.OnUnitOutcome(tt.outcome.Unit, tt.outcome)

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantLevel, entries[0].Level)
			assert.Equal(t, tt.wantMsg, entries[0].Message)
			fields := entries[0].ContextMap()
			assert.Equal(t, tt.outcome.Unit.String(), fields["unit"])
			assert.Equal(t, "generation", fields["component"])
		})
	}
}

func TestLogObserver_RepairAndRetry(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	obs := NewLogObserver(zap.New(core))

	obs.OnRepairApplied(types.UnitContact, types.RepairBracketClosing)
	obs.OnTransportRetry(types.UnitContact, 1, &llm.TransportError{Kind: llm.KindRateLimited, Message: "quota", HTTPStatus: 429})

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "bracket_closing", entries[0].ContextMap()["step"])
	assert.Equal(t, "rate_limited", entries[1].ContextMap()["kind"])
	assert.Equal(t, int64(429), entries[1].ContextMap()["http_status"])
}

func TestNewLogObserver_NilLogger(t *testing.T) {
	obs := NewLogObserver(nil)

	assert.NotPanics(t, func() { obs.OnUnitOutcome(types.UnitAbout, successOutcome()) })
}

func TestMetricsObserver(t *testing.T) {
	m := NewMetricsObserver()

	m.OnUnitOutcome(types.UnitAbout, successOutcome())
	m.OnUnitOutcome(types.UnitTeam, failedOutcome(types.UnitTeam))
	m.OnRepairApplied(types.UnitContact, types.RepairBracketClosing)
	m.OnRepairApplied(types.UnitContact, types.RepairBracketClosing)
	m.OnTransportRetry(types.UnitAbout, 1, &llm.TransportError{Kind: llm.KindTimeout})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.unitOutcomes.WithLabelValues("about", "success", "none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.unitOutcomes.WithLabelValues("team", "failed", "schema_invalid")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.repairsApplied.WithLabelValues("contact", "bracket_closing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transportRetries.WithLabelValues("about", "timeout")))
	assert.Equal(t, 120.0, testutil.ToFloat64(m.tokensUsed.WithLabelValues("about", "prompt")))
	assert.Equal(t, 30.0, testutil.ToFloat64(m.tokensUsed.WithLabelValues("about", "completion")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.unitDuration))

	expected := `
# HELP sitegen_repairs_applied_total Total number of structural repairs applied to model output
# TYPE sitegen_repairs_applied_total counter
sitegen_repairs_applied_total{step="bracket_closing",unit="contact"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "sitegen_repairs_applied_total"))
}

func TestMetricsObserver_WriteTextfile(t *testing.T) {
	m := NewMetricsObserver()
	m.OnUnitOutcome(types.UnitAbout, successOutcome())
	path := filepath.Join(t.TempDir(), "sitegen.prom")

	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `sitegen_unit_outcomes_total{reason="none",status="success",unit="about"} 1`)
}

func TestNewLogger(t *testing.T) {
	for _, mode := range []string{"dev", "prod", "production", ""} {
		t.Run(mode, func(t *testing.T) {
			log, err := NewLogger(mode)
			require.NoError(t, err)
			require.NotNil(t, log)
		})
	}

	prod, err := NewLogger("prod")
	require.NoError(t, err)
	assert.False(t, prod.Core().Enabled(zapcore.DebugLevel))

	dev, err := NewLogger("dev")
	require.NoError(t, err)
	assert.True(t, dev.Core().Enabled(zapcore.DebugLevel))
}
