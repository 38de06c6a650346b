package observability

import (
	"go.uber.org/zap"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/llm"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

// LogObserver writes generation events to a zap logger.
type LogObserver struct {
	log *zap.Logger
}

// NewLogObserver returns an observer logging through log. A nil log discards events.
func NewLogObserver(log *zap.Logger) *LogObserver {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogObserver{log: log.With(zap.String("component", "generation"))}
}

// OnUnitOutcome logs one line per finished unit. Failures of required units
// are logged at error level, optional failures at warn level.
func (o *LogObserver) OnUnitOutcome(unit types.UnitType, outcome *types.UnitOutcome) {
	fields := []zap.Field{
		zap.String("unit", unit.String()),
		zap.String("status", string(outcome.Status)),
		zap.Int("attempts", outcome.Attempts),
		zap.Int64("prompt_tokens", outcome.Usage.PromptTokens),
		zap.Int64("completion_tokens", outcome.Usage.CompletionTokens),
		zap.Duration("duration", outcome.Duration),
	}
	if len(outcome.Repairs) > 0 {
		fields = append(fields, zap.Int("repairs", len(outcome.Repairs)))
	}
	if len(outcome.Fixes) > 0 {
		fields = append(fields, zap.Int("fixes", len(outcome.Fixes)))
	}
	if outcome.Truncated {
		fields = append(fields, zap.Bool("truncated", true))
	}

	if outcome.Failure == nil {
		o.log.Info("unit generated", fields...)
		return
	}

	fields = append(fields,
		zap.String("reason", string(outcome.Failure.Reason)),
		zap.String("error", outcome.Failure.Message),
	)
	for _, fe := range outcome.Failure.FieldErrors {
		fields = append(fields, zap.String("field."+fe.Field, fe.Message))
	}
	if unit.IsRequired() {
		o.log.Error("unit failed", fields...)
	} else {
		o.log.Warn("optional unit failed", fields...)
	}
}

// OnRepairApplied logs each structural repair at debug level.
func (o *LogObserver) OnRepairApplied(unit types.UnitType, step types.RepairStep) {
	o.log.Debug("repair applied", zap.String("unit", unit.String()), zap.String("step", string(step)))
}

// OnTransportRetry logs a retried transport failure.
func (o *LogObserver) OnTransportRetry(unit types.UnitType, attempt int, err *llm.TransportError) {
	o.log.Warn("retrying transport call",
		zap.String("unit", unit.String()),
		zap.Int("attempt", attempt),
		zap.String("kind", string(err.Kind)),
		zap.Int("http_status", err.HTTPStatus),
		zap.Error(err),
	)
}
