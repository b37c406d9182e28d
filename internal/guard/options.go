package guard

// Defaults used when an exercise carries no override.
const (
	DefaultTopLockLines   = 2
	DefaultBottomSentinel = "println!"
)

// Options configures window computation.
type Options struct {
	// TopLockLines is the number of leading lines locked when no fixed top
	// block is configured.
	TopLockLines int

	// BottomSentinel marks the bottom boundary when no fixed bottom block is
	// configured. The window ends on the first line containing it, so that
	// line stays editable and only the lines after it are protected. An
	// empty sentinel disables the scan.
	BottomSentinel string

	// TabWidth is the tab expansion width used when comparing lines.
	TabWidth int
}

// DefaultOptions returns the default window options.
func DefaultOptions() Options {
	return Options{
		TopLockLines:   DefaultTopLockLines,
		BottomSentinel: DefaultBottomSentinel,
		TabWidth:       DefaultTabWidth,
	}
}

// Option is a functional option for configuring a Computer or Session.
type Option func(*Options)

// WithTopLockLines sets the fallback count of locked top lines.
func WithTopLockLines(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.TopLockLines = n
		}
	}
}

// WithBottomSentinel sets the fallback bottom sentinel substring.
func WithBottomSentinel(s string) Option {
	return func(o *Options) {
		o.BottomSentinel = s
	}
}

// WithTabWidth sets the tab expansion width.
func WithTabWidth(width int) Option {
	return func(o *Options) {
		if width > 0 {
			o.TabWidth = width
		}
	}
}

// WithOptions replaces all options at once.
func WithOptions(opts Options) Option {
	return func(o *Options) {
		*o = opts
		if o.TopLockLines < 0 {
			o.TopLockLines = 0
		}
		if o.TabWidth <= 0 {
			o.TabWidth = DefaultTabWidth
		}
	}
}
