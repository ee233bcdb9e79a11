package scenario

// Declaration event kinds reported to the DeclarationLogger.
const (
	DeclarationKindScenario = "scenario"
	DeclarationKindSkipped  = "scenario.skipped"
	DeclarationKindTest     = "test"
)

// DeclarationLogEvent describes a declaration attempt for logging.
type DeclarationLogEvent struct {
	Kind      string
	Name      string
	Keys      []string
	Collision bool
	Err       error
}

// DeclarationLogger records declaration events.
type DeclarationLogger interface {
	LogDeclaration(DeclarationLogEvent)
}

// DeclarationLoggerFunc adapts a function to DeclarationLogger.
type DeclarationLoggerFunc func(DeclarationLogEvent)

// LogDeclaration implements DeclarationLogger.
func (f DeclarationLoggerFunc) LogDeclaration(event DeclarationLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopDeclarationLogger struct{}

func (noopDeclarationLogger) LogDeclaration(DeclarationLogEvent) {}

// WithDeclarationLogger attaches a declaration logger to the Builder.
func WithDeclarationLogger(logger DeclarationLogger) Option {
	return func(cfg *builderConfig) {
		if logger == nil {
			cfg.logger = noopDeclarationLogger{}
			return
		}
		cfg.logger = logger
	}
}
