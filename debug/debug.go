// debug.go — cold-path logging without heap pressure.
//
// The harness logs only infrequent events: phase changes, configuration,
// final stats, failures.  Messages are assembled by plain concatenation
// and written straight to stderr, so nothing here drags fmt or an
// allocator into timing-sensitive runs.
//
// Never call these in hot loops.

package debug

import "os"

// DropMessage writes a tagged one-line message to stderr.
func DropMessage(prefix, message string) {
	os.Stderr.WriteString(prefix + ": " + message + "\n")
}

// DropError writes a tagged error to stderr; a nil error logs the prefix
// alone.
func DropError(prefix string, err error) {
	if err != nil {
		os.Stderr.WriteString(prefix + ": " + err.Error() + "\n")
		return
	}
	os.Stderr.WriteString(prefix + "\n")
}
