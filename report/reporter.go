package report

import "sync"

// Reporter is responsible for reporting errors, warnings, and other kinds of
// messages to the user during program execution.  The reporter respects the
// set log level and is synchronized: its methods can be safely called from
// multiple goroutines.  It also collects every diagnostic it handles so that
// later phases (and tests) can inspect what was reported.
type Reporter struct {
	// The mutex used to synchonize different error method calls.
	m *sync.Mutex

	// The selected log level of the reporter.  This must be one of the
	// enumerated log levels below.
	logLevel int

	// Indicates whether or not an error has been detected.
	isErr bool

	// The list of diagnostics collected so far, in report order.
	diagnostics []*Diagnostic
}

// Enumeration of the different possible log levels.
const (
	LogLevelSilent  = iota // Displays no output.
	LogLevelError          // Displays only errors to the user.
	LogLevelWarn           // Displays only warnings and errors to the user.
	LogLevelVerbose        // Displays all compilation messages to the user (default).
)

// rep is the global reporter instance.
var rep *Reporter

// InitReporter initializes the global error reporter to the given log level.
// If the reporter has already been initialized, this function does nothing.
func InitReporter(logLevel int) {
	if rep == nil {
		rep = &Reporter{
			m:        &sync.Mutex{},
			logLevel: logLevel,
			isErr:    false,
		}
	}
}

// ResetReporter discards the current global reporter and installs a fresh one.
// A single process may run many independent compilations (notably the test
// harness), and errors from one must not bleed into the next.
func ResetReporter(logLevel int) {
	rep = nil
	InitReporter(logLevel)
}

// AnyErrors returns whether or not any errors were detected.
func AnyErrors() bool {
	return rep.isErr
}

// ShouldProceed returns whether compilation should continue past the current
// phase: ie. whether no errors have been detected so far.
func ShouldProceed() bool {
	return !rep.isErr
}

// Diagnostics returns the diagnostics collected so far.
func Diagnostics() []*Diagnostic {
	rep.m.Lock()
	defer rep.m.Unlock()

	return rep.diagnostics
}
