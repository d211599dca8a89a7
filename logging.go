package resolve

import "time"

// ResolutionLogEvent describes one Get call for logging.
type ResolutionLogEvent struct {
	Key       string
	Source    Kind
	FromCache bool
	Forced    bool
	Found     bool
	Duration  time.Duration
}

// ResolutionLogger records resolution events.
type ResolutionLogger interface {
	LogResolution(ResolutionLogEvent)
}

// ResolutionLoggerFunc adapts a function to ResolutionLogger.
type ResolutionLoggerFunc func(ResolutionLogEvent)

// LogResolution implements ResolutionLogger.
func (f ResolutionLoggerFunc) LogResolution(event ResolutionLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopResolutionLogger struct{}

func (noopResolutionLogger) LogResolution(ResolutionLogEvent) {}

// WithLogger attaches a resolution logger to the context.
func WithLogger(logger ResolutionLogger) Option {
	return func(cfg *contextConfig) {
		if logger == nil {
			cfg.logger = noopResolutionLogger{}
			return
		}
		cfg.logger = logger
	}
}
