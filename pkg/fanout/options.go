package fanout

import "time"

// Option configures a Runner.
type Option func(*Runner)

// WithMaxConcurrency bounds how many targets connect or stream at once.
// Zero or a negative value means unbounded.
func WithMaxConcurrency(n int) Option {
	return func(r *Runner) {
		if n < 0 {
			n = 0
		}
		r.maxConcurrency = n
	}
}

// WithTimeout applies a deadline to the whole run, connect phase included.
// Zero disables the deadline.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d < 0 {
			d = 0
		}
		r.timeout = d
	}
}
