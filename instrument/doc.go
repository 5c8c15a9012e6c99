// Package instrument implements the command channel to a Keithley 2614B
// source-measure unit over a line-oriented text transport.
//
// A [Session] owns exactly one physical connection, addressed by a VISA-style
// resource string (TCPIP socket or ASRL serial). Commands are
// newline-terminated ASCII lines; queries are a write of the command followed
// by a read of a single newline-terminated response line. The physical
// instrument serializes commands, so a Session must never be shared between
// concurrent logical operations; the sweep engine enforces one active
// operation at its API boundary.
//
// The package also implements the script upload protocol (loadscript /
// endscript framing plus script.anonymous.run()) and decoding of the
// instrument's measurement buffer into paired source/reading records.
//
// Error classification:
//
//   - [ErrConnection]: the transport could not be established or broke; the
//     session is unusable and must be reopened.
//   - [ErrNotConnected]: an operation was attempted on a closed session.
//   - [ErrTimeout]: no response within the query timeout; the device may
//     merely be slow, so the caller may retry the query on the same session.
package instrument
