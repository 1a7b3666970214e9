package otel

import (
	"context"
	"errors"
	"fmt"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

// MetricsSource supplies observed values. *goGuard.Authority satisfies it.
type MetricsSource interface {
	MetricsSnapshot() goGuard.MetricsSnapshot
	AuditDropped() uint64
}

// series is one counter observed on its instrument with a fixed attribute
// set.
type series struct {
	id         goGuard.MetricID
	instrument metric.Int64ObservableCounter
	opts       []metric.ObserveOption
}

// Exporter observes a [MetricsSource] on every collection cycle.
type Exporter struct {
	source       MetricsSource
	registration metric.Registration
	series       []series
	auditDropped metric.Int64ObservableCounter
}

// NewExporter creates one counter per entry of internaldefs.Instruments
// plus the audit drop count, and registers a callback reading source.
func NewExporter(meter metric.Meter, source MetricsSource) (*Exporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	instruments := make(map[string]metric.Int64ObservableCounter, len(internaldefs.Instruments))
	attrKeys := make(map[string]attribute.Key, len(internaldefs.Instruments))
	observables := make([]metric.Observable, 0, len(internaldefs.Instruments)+1)
	for _, in := range internaldefs.Instruments {
		ins, err := meter.Int64ObservableCounter(in.Name, metric.WithDescription(in.Help), metric.WithUnit("{event}"))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", in.Name, err)
		}
		instruments[in.Name] = ins
		attrKeys[in.Name] = attribute.Key(in.AttrKey)
		observables = append(observables, ins)
	}

	exporter := &Exporter{
		source: source,
		series: make([]series, 0, len(internaldefs.CounterDefs)),
	}
	for _, def := range internaldefs.CounterDefs {
		ins, ok := instruments[def.Instrument]
		if !ok {
			return nil, fmt.Errorf("counter %s: unknown instrument %q", def.Name, def.Instrument)
		}
		s := series{id: def.ID, instrument: ins}
		if key := attrKeys[def.Instrument]; key != "" {
			s.opts = []metric.ObserveOption{metric.WithAttributeSet(attribute.NewSet(key.String(def.AttrValue)))}
		}
		exporter.series = append(exporter.series, s)
	}

	auditDropped, err := meter.Int64ObservableCounter(
		internaldefs.AuditDroppedInstrument,
		metric.WithDescription(internaldefs.AuditDroppedHelp),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create audit dropped counter: %w", err)
	}
	exporter.auditDropped = auditDropped
	observables = append(observables, auditDropped)

	registration, err := meter.RegisterCallback(exporter.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}

	exporter.registration = registration
	return exporter, nil
}

// observe reads one snapshot. Disabled metrics report only the drop count.
func (e *Exporter) observe(_ context.Context, observer metric.Observer) error {
	snapshot := e.source.MetricsSnapshot()
	if len(snapshot.Counters) > 0 {
		for _, s := range e.series {
			observer.ObserveInt64(s.instrument, int64(snapshot.Counters[s.id]), s.opts...)
		}
	}
	observer.ObserveInt64(e.auditDropped, int64(e.source.AuditDropped()))
	return nil
}

// Close unregisters the callback.
func (e *Exporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
