// Package tsp generates TSP (Test Script Processor) control scripts for the
// Keithley 2614B source-measure unit.
//
// A sweep is described declaratively by a [SweepSpec] and translated into the
// instrument's on-board Lua dialect by [Build]. Script generation is pure: it
// performs no I/O and touches no instrument state. The generated script
// configures buffer collection (source values and readings appended in
// lockstep, ASCII encoded), applies the compliance current limit, performs the
// sweep trajectory and terminates with waitcomplete() so the host can
// synchronize on completion.
//
// Supported trajectories:
//
//   - Linear: a monotonic staircase ramp between two voltages.
//   - LinearRepeated: ramp to the start voltage, then alternating
//     forward/backward sweeps with polarity inversion after each full cycle,
//     then a ramp back to zero.
//   - ListDriven: an explicit ordered voltage list with a fixed settle time
//     per point, allowing non-monotonic and non-uniform trajectories.
//   - SquareHold: alternating holds at +V/-V for a fixed number of measured
//     points per level, cycled across a list of voltage magnitudes.
package tsp
