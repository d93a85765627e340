package logging

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// sink is the writer every logger shares. Swapping its target reaches
// loggers that were created earlier, including package-level ones.
type sink struct {
	mu sync.RWMutex
	w  io.Writer
}

func (s *sink) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.w.Write(p)
}

var output = &sink{w: os.Stdout}

// SetLevel sets the global level from a name such as "debug" or "warn".
// Unknown names fall back to info.
func SetLevel(name string) {
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// SetOutput redirects every logger, existing or future, to w. Tests use it
// to silence or capture output.
func SetOutput(w io.Writer) {
	output.mu.Lock()
	defer output.mu.Unlock()
	output.w = w
}

// New returns a JSON logger tagged with the given component.
func New(component string) zerolog.Logger {
	return zerolog.New(output).With().Timestamp().Str("component", component).Logger()
}
