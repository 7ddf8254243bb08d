package contracts

// Clock returns the current time in milliseconds, matching the unit of the
// timestamps exchanged with the host transport. Overridable for tests.
type Clock func() float64

// ClientOptions defines the configuration options for ports created by this
// library.
type ClientOptions struct {
	Logger       Logger    // Logger for logging events and errors.
	LogLevel     LogLevel  // Level of logging to use.
	ClientName   string    // Name under which we register with the host subsystem.
	NrpnEvents   bool      // Assemble RPN/NRPN control-change runs into parameter events.
	Transport    Transport // Explicit transport; when nil the host driver for the OS is used.
	PortName     string    // Host port to bind to; "" binds to the first available port.
	OctaveOffset int       // Default octave offset applied to note name resolution.
	Clock        Clock     // Time source for timestamp resolution.
}

// Option is a function that modifies ClientOptions.
type Option func(*ClientOptions)

// WithLogger sets the logger for the port.
func WithLogger(l Logger) Option {
	return func(opts *ClientOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the port.
func WithLogLevel(level LogLevel) Option {
	return func(opts *ClientOptions) {
		opts.LogLevel = level
	}
}

// WithClientName sets the name used when registering with the host subsystem.
func WithClientName(name string) Option {
	return func(opts *ClientOptions) {
		opts.ClientName = name
	}
}

// WithPortName selects the host port to bind to by name. The default is the
// first available port of the requested direction.
func WithPortName(name string) Option {
	return func(opts *ClientOptions) {
		opts.PortName = name
	}
}

// WithNrpnEvents enables assembly of RPN/NRPN control-change runs into
// parameter events on input channels.
func WithNrpnEvents(enabled bool) Option {
	return func(opts *ClientOptions) {
		opts.NrpnEvents = enabled
	}
}

// WithTransport injects an explicit host transport instead of the default
// driver selected for the operating system.
func WithTransport(t Transport) Option {
	return func(opts *ClientOptions) {
		opts.Transport = t
	}
}

// WithOctaveOffset sets the default octave offset for note name resolution.
func WithOctaveOffset(offset int) Option {
	return func(opts *ClientOptions) {
		opts.OctaveOffset = offset
	}
}

// WithClock overrides the time source used for timestamp resolution.
func WithClock(c Clock) Option {
	return func(opts *ClientOptions) {
		opts.Clock = c
	}
}
