package instrument

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peregrinescode/keithley2614B/tsp"
)

// Script upload framing. The firmware buffers every line between the two
// markers as source of the anonymous script.
const (
	scriptStartMarker = "loadscript"
	scriptEndMarker   = "endscript"

	// runScriptCommand executes the most recently loaded anonymous script.
	// The instrument does not acknowledge execution; completion is the
	// caller's responsibility via timing or buffer inspection.
	runScriptCommand = "script.anonymous.run()"
)

// LoadScript uploads a script into the instrument's volatile script store:
// one start-marker line, the body lines verbatim, one end-marker line.
//
// The upload is all-or-nothing. A failure mid-upload leaves the instrument in
// an undefined script-edit state that only a device reset clears; callers
// must not attempt to resume a partial upload.
func (s *Session) LoadScript(script tsp.Script) error {
	if err := s.WriteLine(scriptStartMarker); err != nil {
		return fmt.Errorf("uploading %s: %w", script.Name, err)
	}

	for _, line := range script.Lines() {
		if err := s.WriteLine(line); err != nil {
			return fmt.Errorf("uploading %s: %w", script.Name, err)
		}
	}

	if err := s.WriteLine(scriptEndMarker); err != nil {
		return fmt.Errorf("uploading %s: %w", script.Name, err)
	}

	s.logger.Debug("script uploaded", "script", script.Name, "lines", len(script.Lines()))

	return nil
}

// LoadScriptFile reads a TSP script from disk and uploads it. It fails with
// an error wrapping ErrScriptSource if the file cannot be read.
func (s *Session) LoadScriptFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrScriptSource, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	return s.LoadScript(tsp.Script{
		Name: name,
		Body: strings.TrimRight(string(data), "\n"),
	})
}

// RunScript triggers execution of the most recently loaded script. It does
// not block until the script finishes.
func (s *Session) RunScript() error {
	return s.WriteLine(runScriptCommand)
}
