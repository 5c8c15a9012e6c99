package tsp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validLinearSpec() *SweepSpec {
	return &SweepSpec{
		Variant:       Linear,
		StartV:        0,
		StopV:         10,
		StepV:         0.5,
		SettleTime:    100 * time.Millisecond,
		ComplianceExp: -6,
	}
}

func TestSweepSpecValidate(t *testing.T) {
	require := require.New(t)

	t.Run("valid linear", func(t *testing.T) {
		require.NoError(validLinearSpec().Validate())
	})

	t.Run("equal endpoints", func(t *testing.T) {
		spec := validLinearSpec()
		spec.StartV = 5
		spec.StopV = 5
		require.ErrorIs(spec.Validate(), ErrInvalidSpec)
	})

	t.Run("non-positive step", func(t *testing.T) {
		spec := validLinearSpec()
		spec.StepV = 0
		require.ErrorIs(spec.Validate(), ErrInvalidSpec)

		spec.StepV = -0.1
		require.ErrorIs(spec.Validate(), ErrInvalidSpec)
	})

	t.Run("compliance exponent range", func(t *testing.T) {
		spec := validLinearSpec()
		spec.ComplianceExp = 0
		require.ErrorIs(spec.Validate(), ErrInvalidSpec)

		spec.ComplianceExp = -10
		require.ErrorIs(spec.Validate(), ErrInvalidSpec)

		spec.ComplianceExp = -9
		require.NoError(spec.Validate())
		spec.ComplianceExp = -1
		require.NoError(spec.Validate())
	})

	t.Run("negative repeats", func(t *testing.T) {
		spec := validLinearSpec()
		spec.Variant = LinearRepeated
		spec.Repeats = -1
		require.ErrorIs(spec.Validate(), ErrInvalidSpec)
	})

	t.Run("negative settle time", func(t *testing.T) {
		spec := validLinearSpec()
		spec.SettleTime = -time.Second
		require.ErrorIs(spec.Validate(), ErrInvalidSpec)
	})

	t.Run("list too short", func(t *testing.T) {
		spec := &SweepSpec{
			Variant:       ListDriven,
			SettleTime:    time.Second,
			ComplianceExp: -3,
			VoltageList:   []float64{1.0},
		}
		require.ErrorIs(spec.Validate(), ErrInvalidSpec)

		spec.VoltageList = []float64{1.0, 2.0}
		require.NoError(spec.Validate())
	})

	t.Run("square hold", func(t *testing.T) {
		spec := &SweepSpec{
			Variant:       SquareHold,
			SettleTime:    500 * time.Millisecond,
			ComplianceExp: -2,
			VoltageList:   []float64{10, 20},
			HoldPoints:    30,
			Cycles:        2,
		}
		require.NoError(spec.Validate())

		spec.HoldPoints = 0
		require.ErrorIs(spec.Validate(), ErrInvalidSpec)

		spec.HoldPoints = 30
		spec.Cycles = 0
		require.ErrorIs(spec.Validate(), ErrInvalidSpec)

		spec.Cycles = 2
		spec.VoltageList = nil
		require.ErrorIs(spec.Validate(), ErrInvalidSpec)
	})

	t.Run("unknown variant", func(t *testing.T) {
		spec := validLinearSpec()
		spec.Variant = Variant(200)
		require.ErrorIs(spec.Validate(), ErrInvalidSpec)
	})
}

func TestSweepSpecPoints(t *testing.T) {
	require := require.New(t)

	t.Run("linear staircase count", func(t *testing.T) {
		// ceil((stop-start)/step)+1
		spec := validLinearSpec()
		require.Equal(21, spec.Points())

		spec.StopV = 10.1
		require.Equal(22, spec.Points())

		// descending sweeps count the same number of points
		spec.StartV = 10
		spec.StopV = -10
		spec.StepV = 1
		require.Equal(21, spec.Points())
	})

	t.Run("list driven", func(t *testing.T) {
		spec := &SweepSpec{Variant: ListDriven, VoltageList: []float64{0, 1, 2, 1, 0}}
		require.Equal(5, spec.Points())
	})

	t.Run("square hold", func(t *testing.T) {
		spec := &SweepSpec{
			Variant:     SquareHold,
			VoltageList: []float64{10, 20},
			HoldPoints:  30,
			Cycles:      2,
		}
		// 2 magnitudes x 2 polarities x 30 points x 2 cycles
		require.Equal(240, spec.Points())
	})
}

func TestHoldTrajectory(t *testing.T) {
	require := require.New(t)

	spec := &SweepSpec{
		Variant:     SquareHold,
		VoltageList: []float64{5},
		HoldPoints:  2,
		Cycles:      2,
	}

	want := []float64{5, 5, -5, -5, 5, 5, -5, -5}
	require.Equal(want, spec.holdTrajectory())
	require.Len(spec.holdTrajectory(), spec.Points())
}

func TestVariantString(t *testing.T) {
	require := require.New(t)

	require.Equal("linear", Linear.String())
	require.Equal("linear-repeated", LinearRepeated.String())
	require.Equal("list-driven", ListDriven.String())
	require.Equal("square-hold", SquareHold.String())
	require.Equal("unknown", Variant(99).String())
}
