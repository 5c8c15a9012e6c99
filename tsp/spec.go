package tsp

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Compliance exponent limits. The compliance current limit is 1×10^exp A,
// so the permitted range covers 1 nA through 100 mA.
const (
	MinComplianceExp = -9
	MaxComplianceExp = -1
)

// Default measurement setup values, matching the instrument defaults used by
// the measurement routines.
const (
	DefaultNPLC        = 10.0
	DefaultDelayFactor = 1.0
)

// ErrInvalidSpec indicates that a sweep specification violates one of its
// invariants and cannot be translated into a script.
var ErrInvalidSpec = errors.New("tsp: invalid sweep spec")

// Variant selects the sweep trajectory generated for a SweepSpec.
type Variant uint8

const (
	// Linear is a monotonic staircase ramp from StartV to StopV.
	Linear Variant = iota
	// LinearRepeated ramps from 0 V to StartV, performs Repeats alternating
	// forward/backward sweeps with polarity inversion after each full cycle,
	// then ramps back to 0 V.
	LinearRepeated
	// ListDriven applies an explicit ordered voltage list with a fixed settle
	// time per point.
	ListDriven
	// SquareHold alternates holds at +V/-V for HoldPoints measured points per
	// level, Cycles times per magnitude, across VoltageList.
	SquareHold
)

// String returns string representation of the sweep variant.
func (v Variant) String() string {
	switch v {
	case Linear:
		return "linear"
	case LinearRepeated:
		return "linear-repeated"
	case ListDriven:
		return "list-driven"
	case SquareHold:
		return "square-hold"
	default:
		return "unknown"
	}
}

// SweepSpec declaratively describes a voltage sweep with current measurement.
//
// Which fields are consulted depends on Variant; Validate reports the exact
// requirements. All variants share SettleTime and ComplianceExp.
type SweepSpec struct {
	Variant Variant

	// StartV, StopV and StepV define the staircase for Linear and
	// LinearRepeated sweeps. StepV is a magnitude and must be positive;
	// sweep direction is determined by the sign of StopV-StartV.
	StartV float64
	StopV  float64
	StepV  float64

	// SettleTime is the delay after stepping the source and before each
	// measurement.
	SettleTime time.Duration

	// ComplianceExp sets the compliance current limit to 1×10^ComplianceExp A.
	ComplianceExp int

	// Repeats is the number of forward/backward cycles for LinearRepeated.
	// Zero means a single pass.
	Repeats int

	// VoltageList is the ordered trajectory for ListDriven, or the list of
	// hold magnitudes for SquareHold.
	VoltageList []float64

	// HoldPoints is the number of measured points per voltage level for
	// SquareHold.
	HoldPoints int

	// Cycles is the number of +V/-V alternations per magnitude for SquareHold.
	Cycles int

	// NPLC and DelayFactor tune the measurement integration. Zero selects
	// DefaultNPLC and DefaultDelayFactor.
	NPLC        float64
	DelayFactor float64
}

// Validate checks the spec invariants for the selected variant.
// It returns an error wrapping ErrInvalidSpec on the first violation found.
func (s *SweepSpec) Validate() error {
	if s.SettleTime < 0 {
		return fmt.Errorf("%w: settle time %v is negative", ErrInvalidSpec, s.SettleTime)
	}
	if s.ComplianceExp < MinComplianceExp || s.ComplianceExp > MaxComplianceExp {
		return fmt.Errorf("%w: compliance exponent %d out of range [%d, %d]",
			ErrInvalidSpec, s.ComplianceExp, MinComplianceExp, MaxComplianceExp)
	}
	if s.Repeats < 0 {
		return fmt.Errorf("%w: repeats %d is negative", ErrInvalidSpec, s.Repeats)
	}

	switch s.Variant {
	case Linear, LinearRepeated:
		if s.StepV <= 0 {
			return fmt.Errorf("%w: step voltage %g must be positive", ErrInvalidSpec, s.StepV)
		}
		if s.StartV == s.StopV {
			// Equal endpoints leave the sweep direction undefined; fail fast
			// rather than generating a script that errors on the instrument.
			return fmt.Errorf("%w: start and stop voltage are both %g, sweep direction undefined",
				ErrInvalidSpec, s.StartV)
		}
	case ListDriven:
		if len(s.VoltageList) < 2 {
			return fmt.Errorf("%w: voltage list needs at least 2 points, got %d",
				ErrInvalidSpec, len(s.VoltageList))
		}
	case SquareHold:
		if len(s.VoltageList) == 0 {
			return fmt.Errorf("%w: square hold needs at least one voltage magnitude", ErrInvalidSpec)
		}
		if s.HoldPoints <= 0 {
			return fmt.Errorf("%w: hold points %d must be positive", ErrInvalidSpec, s.HoldPoints)
		}
		if s.Cycles <= 0 {
			return fmt.Errorf("%w: cycles %d must be positive", ErrInvalidSpec, s.Cycles)
		}
	default:
		return fmt.Errorf("%w: unknown variant %d", ErrInvalidSpec, s.Variant)
	}

	return nil
}

// Points returns the number of buffer entries recorded by a single pass of
// the sweep trajectory. For Linear and LinearRepeated this is the staircase
// point count between the endpoints; ramp-up and ramp-down points of
// LinearRepeated are excluded since they are overhead, not trajectory.
func (s *SweepSpec) Points() int {
	switch s.Variant {
	case Linear, LinearRepeated:
		return int(math.Ceil(math.Abs(s.StopV-s.StartV)/s.StepV)) + 1
	case ListDriven:
		return len(s.VoltageList)
	case SquareHold:
		return len(s.VoltageList) * 2 * s.HoldPoints * s.Cycles
	default:
		return 0
	}
}

// nplc returns the configured NPLC, falling back to the default.
func (s *SweepSpec) nplc() float64 {
	if s.NPLC > 0 {
		return s.NPLC
	}
	return DefaultNPLC
}

// delayFactor returns the configured delay factor, falling back to the default.
func (s *SweepSpec) delayFactor() float64 {
	if s.DelayFactor > 0 {
		return s.DelayFactor
	}
	return DefaultDelayFactor
}

// holdTrajectory expands a SquareHold spec into the explicit voltage list the
// generated script iterates: for each magnitude, HoldPoints points at +V then
// HoldPoints points at -V, repeated Cycles times.
func (s *SweepSpec) holdTrajectory() []float64 {
	points := make([]float64, 0, s.Points())
	for _, v := range s.VoltageList {
		for c := 0; c < s.Cycles; c++ {
			for i := 0; i < s.HoldPoints; i++ {
				points = append(points, v)
			}
			for i := 0; i < s.HoldPoints; i++ {
				points = append(points, -v)
			}
		}
	}

	return points
}
