package generation

import (
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/llm"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

// Observer receives generation events. Section units run concurrently, so
// implementations must be safe for concurrent use.
type Observer interface {
	// OnUnitOutcome is called once per GenerateUnit call with its final outcome.
	OnUnitOutcome(unit types.UnitType, outcome *types.UnitOutcome)
	// OnRepairApplied is called for each structural repair step a unit needed.
	OnRepairApplied(unit types.UnitType, step types.RepairStep)
	// OnTransportRetry is called before a failed transport call is retried.
	OnTransportRetry(unit types.UnitType, attempt int, err *llm.TransportError)
}

// NopObserver ignores every event.
type NopObserver struct{}

// OnUnitOutcome implements Observer.
func (NopObserver) OnUnitOutcome(types.UnitType, *types.UnitOutcome) {}

// OnRepairApplied implements Observer.
func (NopObserver) OnRepairApplied(types.UnitType, types.RepairStep) {}

// OnTransportRetry implements Observer.
func (NopObserver) OnTransportRetry(types.UnitType, int, *llm.TransportError) {}

type multiObserver []Observer

// Observers fans events out to every non-nil observer in order.
func Observers(observers ...Observer) Observer {
	var out multiObserver
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	switch len(out) {
	case 0:
		return NopObserver{}
	case 1:
		return out[0]
	}
	return out
}

func (m multiObserver) OnUnitOutcome(unit types.UnitType, outcome *types.UnitOutcome) {
	for _, o := range m {
		o.OnUnitOutcome(unit, outcome)
	}
}

func (m multiObserver) OnRepairApplied(unit types.UnitType, step types.RepairStep) {
	for _, o := range m {
		o.OnRepairApplied(unit, step)
	}
}

func (m multiObserver) OnTransportRetry(unit types.UnitType, attempt int, err *llm.TransportError) {
	for _, o := range m {
		o.OnTransportRetry(unit, attempt, err)
	}
}
