package sweep

import (
	"time"

	"github.com/peregrinescode/keithley2614B/tsp"
)

// PointOverhead approximates the fixed per-point cost on top of the
// configured settle time: source step, range settling and one NPLC-10
// integration. Empirically tuned against a 2614B on a LAN socket; recalibrate
// when changing NPLC or transport.
const PointOverhead = 150 * time.Millisecond

// Completion safety margin added on top of the estimate before the engine
// declares an operation complete.
const (
	completionMarginFraction = 0.10
	minCompletionMargin      = 2 * time.Second
)

// EstimateDuration predicts how long the instrument will take to execute the
// sweep: per-pass point count × (settle time + per-point overhead), doubled
// for the forward+backward passes of a repeated sweep and multiplied by the
// repeat count.
//
// The device reports nothing mid-sweep, so this estimate is the engine's only
// completion signal; it deliberately errs on the generous side.
func EstimateDuration(spec *tsp.SweepSpec) time.Duration {
	perPoint := spec.SettleTime + PointOverhead
	total := time.Duration(spec.Points()) * perPoint

	if spec.Variant == tsp.LinearRepeated {
		total *= 2 // forward and backward pass per repeat
		total *= time.Duration(max(spec.Repeats, 1))
	}

	return total
}

// completionMargin returns the safety margin for the awaiting-completion
// wait: a fraction of the estimate with an absolute floor.
func completionMargin(estimate time.Duration) time.Duration {
	margin := time.Duration(float64(estimate) * completionMarginFraction)
	if margin < minCompletionMargin {
		return minCompletionMargin
	}
	return margin
}
