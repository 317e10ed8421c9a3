package state

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/litescript/ls-spiral/internal/state"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics counts diagnostics. Without an installed SDK the global meter is a
// no-op.
type Metrics struct {
	mismatches metric.Int64Counter
	unmatched  metric.Int64Counter
	fallbacks  metric.Int64Counter
	animations metric.Int64Counter
}

// NewMetrics registers the counters on the global meter provider.
func NewMetrics() (*Metrics, error) {
	m := meter()
	var (
		mt  Metrics
		err error
	)

	mt.mismatches, err = m.Int64Counter(
		"spiral.house.mismatch",
		metric.WithDescription("Planets whose upstream house disagreed with the derived house"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating mismatch counter: %w", err)
	}

	mt.unmatched, err = m.Int64Counter(
		"spiral.aspect.unmatched",
		metric.WithDescription("Planet pairs with no aspect table match"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating unmatched counter: %w", err)
	}

	mt.fallbacks, err = m.Int64Counter(
		"spiral.layout.fallback",
		metric.WithDescription("Mappings that used the seeded placeholder layout"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fallback counter: %w", err)
	}

	mt.animations, err = m.Int64Counter(
		"spiral.camera.animations",
		metric.WithDescription("Camera animations started"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating animation counter: %w", err)
	}

	return &mt, nil
}

func (mt *Metrics) recordMapping(mismatches, unmatched int, fallback bool) {
	if mt == nil {
		return
	}
	ctx := context.Background()
	if mismatches > 0 {
		mt.mismatches.Add(ctx, int64(mismatches))
	}
	if unmatched > 0 {
		mt.unmatched.Add(ctx, int64(unmatched))
	}
	if fallback {
		mt.fallbacks.Add(ctx, 1)
	}
}

// AnimationStarted counts one camera animation of the given mode.
func (mt *Metrics) AnimationStarted(mode string) {
	if mt == nil {
		return
	}
	mt.animations.Add(context.Background(), 1, metric.WithAttributes(attribute.String("mode", mode)))
}
