package depm

// Pass identifies one analysis pass over a definition.  This must be one of
// the enumerated passes below.
type Pass int

// Enumeration of analysis passes, in dependency order.
const (
	PassScopeCreation = Pass(iota)
	PassBaseTypes
	PassAttributes
	PassNamingConflict
	PassConverter
	PassMemberType
	PassField
	PassConstructor
	PassMethod
	PassOverloading
	PassFieldType
	PassCompletion

	PassCount
)

var passNames = [...]string{
	"ScopeCreation",
	"BaseTypes",
	"Attributes",
	"NamingConflict",
	"Converter",
	"MemberType",
	"Field",
	"Constructor",
	"Method",
	"Overloading",
	"FieldType",
	"Completion",
}

func (p Pass) String() string {
	return passNames[p]
}

// PassSet is a bitset of analysis passes.
type PassSet uint16

// PassSetOf builds a pass set from the given passes.
func PassSetOf(passes ...Pass) PassSet {
	var ps PassSet
	for _, p := range passes {
		ps = ps.Add(p)
	}

	return ps
}

// Contains returns whether the set contains the given pass.
func (ps PassSet) Contains(p Pass) bool {
	return ps&(1<<uint(p)) != 0
}

// Add returns the set with the given pass added.
func (ps PassSet) Add(p Pass) PassSet {
	return ps | 1<<uint(p)
}

// Remove returns the set with the given pass removed.
func (ps PassSet) Remove(p Pass) PassSet {
	return ps &^ (1 << uint(p))
}

// RemoveAll returns the set with every pass of the other set removed.
func (ps PassSet) RemoveAll(other PassSet) PassSet {
	return ps &^ other
}

// Empty returns whether the set contains no passes.
func (ps PassSet) Empty() bool {
	return ps == 0
}

// Each visits the passes of the set in dependency order.
func (ps PassSet) Each(visit func(p Pass) bool) {
	for p := Pass(0); p < PassCount; p++ {
		if ps.Contains(p) {
			if !visit(p) {
				return
			}
		}
	}
}

/* -------------------------------------------------------------------------- */

// Passes is the analysis state of one definition: the set of finished passes
// and the set of currently-running passes.  A finished pass is never
// retracted; a pass that failed is marked finished with the failure flag so
// dependents do not retry it.
type Passes struct {
	finished PassSet
	running  PassSet
	failed   PassSet
}

// Begin attempts to start the given pass.  It returns false if the pass has
// already finished.  Re-entry of a running pass is a circular dependency:
// Begin reports it through the returned circular flag unless allowReentry is
// set, in which case a running pass is simply skipped.
func (ps *Passes) Begin(p Pass, allowReentry bool) (ok, circular bool) {
	if ps.finished.Contains(p) {
		return false, false
	}

	if ps.running.Contains(p) {
		if allowReentry {
			return false, false
		}

		return false, true
	}

	ps.running = ps.running.Add(p)
	return true, false
}

// Finish moves the given pass from running to finished.
func (ps *Passes) Finish(p Pass) {
	ps.running = ps.running.Remove(p)
	ps.finished = ps.finished.Add(p)
}

// FinishFailed marks the pass finished with the failure flag.
func (ps *Passes) FinishFailed(p Pass) {
	ps.Finish(p)
	ps.failed = ps.failed.Add(p)
}

// IsFinished returns whether the given pass has finished.
func (ps *Passes) IsFinished(p Pass) bool {
	return ps.finished.Contains(p)
}

// IsRunning returns whether the given pass is currently running.
func (ps *Passes) IsRunning(p Pass) bool {
	return ps.running.Contains(p)
}

// HasFailed returns whether the given pass finished with the failure flag.
func (ps *Passes) HasFailed(p Pass) bool {
	return ps.failed.Contains(p)
}

// Finished returns the set of finished passes.
func (ps *Passes) Finished() PassSet {
	return ps.finished
}

/* -------------------------------------------------------------------------- */

// AnalysisTask names a degree of preparation a caller may request for a
// definition.  This must be one of the enumerated tasks below.
type AnalysisTask int

// Enumeration of analysis tasks.
const (
	TaskPrepTypeComparison = AnalysisTask(iota)
	TaskPrepMemberLookup
	TaskPrepConstruction
	TaskPrepConversion
	TaskPrepEvaluation
	TaskPrepTypeGeneration
	TaskPrepCodeGeneration
)

// TaskPasses maps each analysis task to the ordered set of passes it
// requires.
func TaskPasses(task AnalysisTask) PassSet {
	switch task {
	case TaskPrepTypeComparison:
		return PassSetOf(PassScopeCreation, PassBaseTypes)
	case TaskPrepMemberLookup:
		return PassSetOf(PassScopeCreation, PassBaseTypes, PassAttributes)
	case TaskPrepConstruction:
		return PassSetOf(PassScopeCreation, PassBaseTypes, PassAttributes,
			PassNamingConflict, PassConstructor)
	case TaskPrepConversion:
		return PassSetOf(PassScopeCreation, PassBaseTypes, PassAttributes,
			PassNamingConflict, PassConverter)
	case TaskPrepEvaluation:
		return PassSetOf(PassScopeCreation, PassBaseTypes, PassAttributes,
			PassNamingConflict, PassConverter, PassMemberType, PassField,
			PassMethod, PassOverloading)
	case TaskPrepTypeGeneration:
		return PassSetOf(PassScopeCreation, PassBaseTypes, PassAttributes,
			PassNamingConflict, PassField, PassFieldType)
	default:
		return PassSetOf(PassScopeCreation, PassBaseTypes, PassAttributes,
			PassNamingConflict, PassConverter, PassConstructor, PassMemberType,
			PassField, PassMethod, PassOverloading, PassFieldType, PassCompletion)
	}
}
