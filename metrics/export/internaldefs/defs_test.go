package internaldefs

import (
	"testing"

	goGuard "github.com/MrEthical07/goGuard"
)

func TestCounterDefsCoverEveryMetricInOrder(t *testing.T) {
	for i, def := range CounterDefs {
		if def.ID != goGuard.MetricID(i) {
			t.Fatalf("def %d is %s, want MetricID %d", i, def.Name, i)
		}
	}
	if got := goGuard.NewMetrics(goGuard.MetricsConfig{Enabled: true}).Snapshot(); len(got.Counters) != len(CounterDefs) {
		t.Fatalf("%d counters but %d defs", len(got.Counters), len(CounterDefs))
	}
}

func TestCounterDefsMatchTheirInstrument(t *testing.T) {
	byName := make(map[string]Instrument, len(Instruments))
	for _, ins := range Instruments {
		byName[ins.Name] = ins
	}

	seen := make(map[string]bool)
	for _, def := range CounterDefs {
		ins, ok := byName[def.Instrument]
		if !ok {
			t.Fatalf("%s names unknown instrument %q", def.Name, def.Instrument)
		}
		if (ins.AttrKey == "") != (def.AttrValue == "") {
			t.Fatalf("%s attribute value %q does not fit instrument %s", def.Name, def.AttrValue, ins.Name)
		}
		key := def.Instrument + "/" + def.AttrValue
		if seen[key] {
			t.Fatalf("%s duplicates series %s", def.Name, key)
		}
		seen[key] = true
	}
}
