package tsp

import (
	"fmt"
	"strconv"
	"strings"
)

// Script is an immutable device control script with a logical name.
// The body is the final expanded text; no further parameter substitution
// happens downstream.
type Script struct {
	Name string
	Body string
}

// Lines splits the script body into individual lines for upload over the
// line-oriented command channel. Empty lines are preserved.
func (s Script) Lines() []string {
	return strings.Split(s.Body, "\n")
}

// Build translates a sweep spec into a TSP script. It validates the spec
// first and returns an error wrapping ErrInvalidSpec on violation; for a
// valid spec it always succeeds.
func Build(spec *SweepSpec) (Script, error) {
	if err := spec.Validate(); err != nil {
		return Script{}, err
	}

	var w scriptWriter
	switch spec.Variant {
	case Linear:
		buildLinear(&w, spec)
	case LinearRepeated:
		buildLinearRepeated(&w, spec)
	case ListDriven:
		buildList(&w, spec, spec.VoltageList)
	case SquareHold:
		buildList(&w, spec, spec.holdTrajectory())
	}

	return Script{Name: "iv-" + spec.Variant.String(), Body: w.String()}, nil
}

// buildLinear emits a monotonic staircase ramp between the spec endpoints.
// The direction is fixed at build time by the sign of StopV-StartV, so only
// the needed loop is generated.
func buildLinear(w *scriptWriter, spec *SweepSpec) {
	writePreamble(w, spec)

	w.line("-- Staircase sweep")
	w.linef("V = %s", fmtV(spec.StartV))
	w.line("smua.source.output = smua.OUTPUT_ON")
	w.line("smua.source.levelv = V")
	if spec.StartV < spec.StopV {
		w.linef("while V <= %s do", fmtV(spec.StopV))
		writeMeasurePoint(w, spec)
		w.linef("    V = V + %s", fmtV(spec.StepV))
		w.line("end")
	} else {
		w.linef("while V >= %s do", fmtV(spec.StopV))
		writeMeasurePoint(w, spec)
		w.linef("    V = V - %s", fmtV(spec.StepV))
		w.line("end")
	}
	w.line("smua.source.output = smua.OUTPUT_OFF")
	w.blank()
	w.line("waitcomplete()")
}

// buildLinearRepeated emits Repeats alternating forward/backward sweeps
// between the endpoints with a polarity inversion after each full cycle.
// The trajectory endpoints change sign at runtime, so the sweep direction is
// resolved in-script by the sweepTo helper rather than at build time.
func buildLinearRepeated(w *scriptWriter, spec *SweepSpec) {
	writePreamble(w, spec)

	w.line("-- Sweep parameters")
	w.linef("Vstart = %s", fmtV(spec.StartV))
	w.linef("Vend = %s", fmtV(spec.StopV))
	w.linef("Vstep = %s", fmtV(spec.StepV))
	w.linef("repeats = %d", max(spec.Repeats, 1))
	w.blank()

	w.line("-- Staircase from vfrom to vto, measuring each point")
	w.line("function sweepTo(vfrom, vto)")
	w.line("    local V = vfrom")
	w.line("    if vfrom < vto then")
	w.line("        while V <= vto do")
	writeMeasurePointIndent(w, spec, "            ")
	w.line("            V = V + Vstep")
	w.line("        end")
	w.line("    else")
	w.line("        while V >= vto do")
	writeMeasurePointIndent(w, spec, "            ")
	w.line("            V = V - Vstep")
	w.line("        end")
	w.line("    end")
	w.line("end")
	w.blank()

	w.line("-- Ramp up from 0 V to the start voltage")
	w.line("smua.source.output = smua.OUTPUT_ON")
	w.line("sweepTo(0, Vstart)")
	w.blank()

	w.line("-- Alternating forward/backward sweeps; polarity inverts only after")
	w.line("-- a completed forward+backward cycle, never mid-sweep")
	w.line("i = 1")
	w.line("while i <= repeats do")
	w.line("    sweepTo(Vstart, Vend)")
	w.line("    sweepTo(Vend, Vstart)")
	w.line("    Vstart = -1 * Vstart")
	w.line("    Vend = -1 * Vend")
	w.line("    i = i + 1")
	w.line("end")
	w.blank()

	w.line("-- Ramp down from the last applied voltage back to 0 V")
	w.line("sweepTo(-1 * Vstart, 0)")
	w.line("smua.source.output = smua.OUTPUT_OFF")
	w.blank()
	w.line("waitcomplete()")
}

// buildList emits a single factory-routine call iterating an explicit ordered
// voltage list with a fixed settle time per point.
func buildList(w *scriptWriter, spec *SweepSpec, points []float64) {
	writePreamble(w, spec)

	w.line("-- List sweep")
	w.linef("SweepVListMeasureI(smua, %s, %s, %d)",
		fmtVList(points), fmtV(spec.SettleTime.Seconds()), len(points))
	w.blank()
	w.line("waitcomplete()")
}

// writePreamble resets the channel, arms buffer collection and applies the
// measurement setup common to all sweep variants.
func writePreamble(w *scriptWriter, spec *SweepSpec) {
	w.line("-- Restore Series 2600B defaults")
	w.line("reset()")
	w.line("display.clear()")
	w.blank()
	w.line("-- Prepare buffers")
	w.line("smua.nvbuffer1.clear()")
	w.line("smua.nvbuffer1.collectsourcevalues = 1")
	w.line("smua.nvbuffer1.collecttimestamps = 1")
	w.line("smua.nvbuffer1.appendmode = 1")
	w.line("format.data = format.ASCII")
	w.line("smua.measure.count = 1")
	w.blank()
	w.line("-- Measurement setup")
	w.linef("smua.measure.delayfactor = %s", fmtV(spec.delayFactor()))
	w.linef("smua.measure.nplc = %s", fmtV(spec.nplc()))
	w.line("smua.source.func = smua.OUTPUT_DCVOLTS")
	w.line("smua.sense = smua.SENSE_LOCAL")
	w.line("smua.source.autorangev = smua.AUTORANGE_ON")
	w.linef("smua.source.limiti = %s", fmtCompliance(spec.ComplianceExp))
	w.blank()
	w.line("-- Display settings")
	w.line("display.screen = display.SMUA")
	w.line("display.smua.measure.func = display.MEASURE_DCAMPS")
	w.blank()
}

// writeMeasurePoint emits the per-point source/settle/measure sequence at
// loop-body indentation.
func writeMeasurePoint(w *scriptWriter, spec *SweepSpec) {
	writeMeasurePointIndent(w, spec, "    ")
}

func writeMeasurePointIndent(w *scriptWriter, spec *SweepSpec, indent string) {
	w.line(indent + "smua.source.levelv = V")
	w.linef("%sdelay(%s)", indent, fmtV(spec.SettleTime.Seconds()))
	w.line(indent + "smua.measure.i(smua.nvbuffer1)")
}

// fmtV formats a voltage or time value as a locale-independent decimal
// literal with no rounding beyond float64 precision.
func fmtV(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// fmtVList formats a voltage list as a TSP table literal, e.g. {1, 2.5, -3}.
func fmtVList(points []float64) string {
	parts := make([]string, len(points))
	for i, v := range points {
		parts[i] = fmtV(v)
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

// fmtCompliance renders the compliance limit 1×10^exp A as a literal the
// instrument parses directly, e.g. 1e-6.
func fmtCompliance(exp int) string {
	return fmt.Sprintf("1e%d", exp)
}

// scriptWriter accumulates script lines. The zero value is ready to use.
type scriptWriter struct {
	sb strings.Builder
}

func (w *scriptWriter) line(s string) {
	w.sb.WriteString(s)
	w.sb.WriteByte('\n')
}

func (w *scriptWriter) linef(format string, args ...any) {
	fmt.Fprintf(&w.sb, format, args...)
	w.sb.WriteByte('\n')
}

func (w *scriptWriter) blank() {
	w.sb.WriteByte('\n')
}

func (w *scriptWriter) String() string {
	return strings.TrimSuffix(w.sb.String(), "\n")
}
