package report

import (
	"fmt"
	"os"
)

// ErrorKind classifies the semantic errors the middle-end distinguishes.  It
// must be one of the enumerated error kinds below.
type ErrorKind int

// Enumeration of error kinds.
const (
	KindGeneral               = ErrorKind(iota) // Errors with no finer classification.
	KindUnresolvedName                          // Name lookup produced zero candidates.
	KindAmbiguousType                           // Multiple type candidates with no tiebreak.
	KindAmbiguousCall                           // Multiple call candidates with no tiebreak.
	KindCircularDependency                      // A pass recursed into itself.
	KindIllegalBase                             // Base kind incompatible with derived kind.
	KindDuplicateDefinition                     // Conflicting definitions of one name.
	KindSignatureConflict                       // Same-named members with identical signatures.
	KindMissingImplementation                   // Concrete type with unfilled vtable slots.
	KindMissingInit                             // Private field lacks a default value.
	KindConversionError                         // A required implicit conversion is impossible.
	KindLayoutConflict                          // Union layout differs between pointer widths.
	KindNotSingular                             // Code generation on an unbound template.
)

var errorKindNames = map[ErrorKind]string{
	KindGeneral:               "error",
	KindUnresolvedName:        "unresolved name",
	KindAmbiguousType:         "ambiguous type",
	KindAmbiguousCall:         "ambiguous call",
	KindCircularDependency:    "circular dependency",
	KindIllegalBase:           "illegal base",
	KindDuplicateDefinition:   "duplicate definition",
	KindSignatureConflict:     "signature conflict",
	KindMissingImplementation: "missing implementation",
	KindMissingInit:           "missing initializer",
	KindConversionError:       "conversion error",
	KindLayoutConflict:        "layout conflict",
	KindNotSingular:           "not singular",
}

func (ek ErrorKind) String() string {
	return errorKindNames[ek]
}

// Diagnostic is a single structured diagnostic record: the unit the reporter
// collects and displays.
type Diagnostic struct {
	// The classification of the diagnostic.
	Kind ErrorKind

	// Whether the diagnostic is an error as opposed to a warning.
	IsError bool

	// The absolute and representative paths of the source file the diagnostic
	// refers to.  Both may be empty for diagnostics with no file context.
	AbsPath, ReprPath string

	// The primary span of the diagnostic.  May be nil.
	Span *TextSpan

	// The diagnostic message.
	Message string

	// Messages describing related definitions: eg. the earlier definition a
	// duplicate conflicts with.  Displayed indented below the main message.
	Related []string
}

/* -------------------------------------------------------------------------- */

// LocalCompileError is a compilation error that occurs in a context in which
// the file is known by the error handler and thus doesn't need to be passed
// along with the error.
type LocalCompileError struct {
	// The classification of the error.
	Kind ErrorKind

	// The error message.
	Message string

	// The span over which the error occurs.
	Span *TextSpan

	// Messages describing related definitions.
	Related []string
}

func (lce *LocalCompileError) Error() string {
	return lce.Message
}

// Raise creates a new local compile error with no finer classification.
func Raise(span *TextSpan, msg string, args ...interface{}) *LocalCompileError {
	return &LocalCompileError{Kind: KindGeneral, Message: fmt.Sprintf(msg, args...), Span: span}
}

// RaiseKind creates a new local compile error of a specific kind.
func RaiseKind(kind ErrorKind, span *TextSpan, msg string, args ...interface{}) *LocalCompileError {
	return &LocalCompileError{Kind: kind, Message: fmt.Sprintf(msg, args...), Span: span}
}

/* -------------------------------------------------------------------------- */

// ReportICE reports an internal compiler error.  These are errors that
// specifically result from a bug or unexpected condition occurring within the
// compiler: they are not intended to ever happen.  These errors are always
// displayed regardless of log level.
func ReportICE(message string, args ...interface{}) {
	rep.m.Lock()
	defer rep.m.Unlock()

	displayICE(fmt.Sprintf(message, args...))

	os.Exit(-1)
}

// ReportFatal reports a fatal error.  These are errors that should cause all
// compilation to stop immediately.  However, they are expected errors that
// generally result from invalid configuration of some form: a missing module
// file, an unreadable output directory, etc.
func ReportFatal(message string, args ...interface{}) {
	if rep.logLevel > LogLevelSilent {
		rep.m.Lock()
		defer rep.m.Unlock()

		displayFatal(fmt.Sprintf(message, args...))
	}

	os.Exit(1)
}

// ReportCompileError reports a compilation error: ie. erroneous input code.
// The absPath is the absolute path to the erroneous source file.  The reprPath
// is the representative path to the erroneous source file.  The span may be
// nil in which case no position information will be printed.
func ReportCompileError(kind ErrorKind, absPath, reprPath string, span *TextSpan, message string, args ...interface{}) {
	handleDiagnostic(&Diagnostic{
		Kind:     kind,
		IsError:  true,
		AbsPath:  absPath,
		ReprPath: reprPath,
		Span:     span,
		Message:  fmt.Sprintf(message, args...),
	})
}

// ReportCompileWarning reports a compilation warning.  The arguments are of
// the same form as those to ReportCompileError.
func ReportCompileWarning(absPath, reprPath string, span *TextSpan, message string, args ...interface{}) {
	handleDiagnostic(&Diagnostic{
		Kind:     KindGeneral,
		IsError:  false,
		AbsPath:  absPath,
		ReprPath: reprPath,
		Span:     span,
		Message:  fmt.Sprintf(message, args...),
	})
}

// ReportDiagnostic reports a fully-populated diagnostic record.  Used by
// callers which need to attach related-definition notes.
func ReportDiagnostic(d *Diagnostic) {
	handleDiagnostic(d)
}

// ReportStdError reports a non-fatal, standard Go error.
func ReportStdError(reprPath string, err error) {
	handleDiagnostic(&Diagnostic{
		Kind:     KindGeneral,
		IsError:  true,
		ReprPath: reprPath,
		Message:  err.Error(),
	})
}

// handleDiagnostic records a diagnostic and displays it if the log level
// admits it.
func handleDiagnostic(d *Diagnostic) {
	rep.m.Lock()
	defer rep.m.Unlock()

	if d.IsError {
		rep.isErr = true
	}

	rep.diagnostics = append(rep.diagnostics, d)

	if d.IsError {
		if rep.logLevel > LogLevelSilent {
			displayDiagnostic(d)
		}
	} else if rep.logLevel >= LogLevelWarn {
		displayDiagnostic(d)
	}
}

/* -------------------------------------------------------------------------- */

// CatchErrors catches any errors thrown by a `panic` during a stage of
// compilation.  In effect, this handler determines when any errors
// "unrecoverable" within a given subsection of the compiler should stop
// bubbling.
// NB: This function must ALWAYS be deferred.
func CatchErrors(absPath, reprPath string) {
	if x := recover(); x != nil {
		if cerr, ok := x.(*LocalCompileError); ok {
			ReportDiagnostic(&Diagnostic{
				Kind:     cerr.Kind,
				IsError:  true,
				AbsPath:  absPath,
				ReprPath: reprPath,
				Span:     cerr.Span,
				Message:  cerr.Message,
				Related:  cerr.Related,
			})
		} else if serr, ok := x.(error); ok {
			ReportStdError(reprPath, serr)
		} else {
			ReportFatal("%s", x)
		}
	}
}
