package types

import "fmt"

// TypeVariable represents a template type parameter: an undetermined type
// belonging to a template signature.  Type variables are identified by their
// own identity, never interned.
type TypeVariable struct {
	// The unique ID of the type variable within its owning signature.
	ID int

	// The name of the type variable.
	Name string

	// The optional upper-bound constraint declared on the variable.
	UpperBound Type

	// The deduced concrete type for the type variable during inference, if
	// any.  Bound values are recorded on assignments during solving; this
	// field is only set when a binding environment substitutes the variable
	// permanently.
	Value Type
}

func (tv *TypeVariable) equals(other Type) bool {
	if otv, ok := other.(*TypeVariable); ok {
		return tv == otv
	}

	return false
}

func (tv *TypeVariable) Repr() string {
	if tv.Value != nil {
		return tv.Value.Repr()
	}

	return tv.Name
}

/* -------------------------------------------------------------------------- */

// ConstraintKind identifies how a constraint bounds a type assignment.  This
// must be one of the enumerated constraint kinds below.
type ConstraintKind int

// Enumeration of constraint kinds.
const (
	ConstraintExact = ConstraintKind(iota)
	ConstraintLowerBound
	ConstraintUpperBound
)

// ProvisionSet is a guard on a constraint: a bitset over the overload
// candidates of the call being inferred.  A constraint applies only while at
// least one of its guarding candidates is still live.  The zero value guards
// nothing and always applies.
type ProvisionSet uint64

// Applies returns whether the constraint guarded by this provision set is
// enabled given the set of live candidates.
func (ps ProvisionSet) Applies(live ProvisionSet) bool {
	return ps == 0 || ps&live != 0
}

// ProvisionFor returns the provision set containing only candidate i.
func ProvisionFor(i int) ProvisionSet {
	return ProvisionSet(1) << uint(i)
}

// Constraint is a single bound applied to a type assignment during
// inference.
type Constraint struct {
	// The kind of the constraint.
	Kind ConstraintKind

	// The bounding value.  May itself contain unsolved assignments.
	Value Type

	// The guard on the constraint.
	Provisions ProvisionSet
}

// accepts returns whether a candidate solution satisfies the constraint.
func (c *Constraint) accepts(solution Type) bool {
	value := DerefAssignment(c.Value)
	if _, ok := value.(*TypeAssignment); ok {
		// An unsolved assignment cannot reject a candidate.
		return true
	}

	switch c.Kind {
	case ConstraintExact:
		return Equals(solution, value)
	case ConstraintLowerBound:
		// The solution must be a supertype of the bound.
		return IsSubtype(value, solution)
	default:
		// The solution must be a subtype of the bound.
		return IsSubtype(solution, value)
	}
}

/* -------------------------------------------------------------------------- */

// TypeAssignment is a type variable in the process of being solved: it holds
// the variable's accumulated constraints and, eventually, the inferred value.
// Assignments are identified by their own identity, never interned.
type TypeAssignment struct {
	// The type variable being solved.
	Target *TypeVariable

	// The inference scope the assignment belongs to, identified by an opaque
	// tag supplied by the inference engine.
	Scope interface{}

	// The sequence number distinguishing assignments of the same variable in
	// nested inferences.
	SequenceNum int

	// The ordered constraint list.
	Constraints []*Constraint

	// The set of live overload candidates guarding constraint applicability.
	LiveProvisions ProvisionSet

	// The current solution value, or nil while unsolved.
	Value Type
}

func (ta *TypeAssignment) equals(other Type) bool {
	if ota, ok := other.(*TypeAssignment); ok {
		return ta == ota
	}

	return false
}

func (ta *TypeAssignment) Repr() string {
	if ta.Value != nil {
		return ta.Value.Repr()
	}

	return fmt.Sprintf("%s.%d", ta.Target.Name, ta.SequenceNum)
}

// AddConstraint appends a constraint to the assignment.  Adding a constraint
// invalidates any previously found solution.
func (ta *TypeAssignment) AddConstraint(c *Constraint) {
	ta.Constraints = append(ta.Constraints, c)
	ta.Value = nil
}

// enabled returns the constraints whose provisions currently apply.
func (ta *TypeAssignment) enabled() []*Constraint {
	var cs []*Constraint
	for _, c := range ta.Constraints {
		if c.Provisions.Applies(ta.LiveProvisions) {
			cs = append(cs, c)
		}
	}

	return cs
}

// FindSingularSolution attempts to deduce a single concrete type satisfying
// every enabled constraint.  It returns nil if no such type exists.  The
// deduction runs in three passes: exact constraints are intersected first;
// failing that, lower bounds are folded upward through common bases; failing
// that, the tightest upper bound is taken.  Whatever candidate emerges must
// then satisfy every remaining enabled constraint.
func (ta *TypeAssignment) FindSingularSolution() Type {
	enabled := ta.enabled()

	// First check all the EXACT constraints.
	ta.Value = nil
	for _, c := range enabled {
		if c.Kind != ConstraintExact {
			continue
		}

		ty := DerefAssignment(c.Value)
		if ta.Value == nil {
			ta.Value = ty
		} else if !Equals(ta.Value, ty) {
			ta.Value = nil
			return nil
		}
	}

	if ta.Value != nil {
		return ta.verify(enabled, ConstraintExact)
	}

	// There was no EXACT solution, so next fold the LOWER_BOUND constraints:
	// the solution must be a supertype of every lower bound.
	for _, c := range enabled {
		if c.Kind != ConstraintLowerBound {
			continue
		}

		ty := DerefAssignment(c.Value)
		if ta.Value == nil {
			ta.Value = ty
		} else if IsSubtype(ty, ta.Value) {
			continue
		} else if IsSubtype(ta.Value, ty) {
			ta.Value = ty
		} else {
			ta.Value = CommonBase(ta.Value, ty)
			if ta.Value == nil {
				return nil
			}
		}
	}

	if ta.Value != nil {
		return ta.verify(enabled, ConstraintLowerBound)
	}

	// There were no LOWER_BOUND constraints, so take the tightest UPPER_BOUND.
	for _, c := range enabled {
		if c.Kind != ConstraintUpperBound {
			continue
		}

		ty := DerefAssignment(c.Value)
		if ta.Value == nil {
			ta.Value = ty
		} else if IsSubtype(ty, ta.Value) {
			ta.Value = ty
		} else if !IsSubtype(ta.Value, ty) {
			ta.Value = nil
			return nil
		}
	}

	return ta.Value
}

// verify checks the candidate solution against every enabled constraint of a
// kind other than the one that produced it.
func (ta *TypeAssignment) verify(enabled []*Constraint, producedBy ConstraintKind) Type {
	for _, c := range enabled {
		if c.Kind != producedBy && !c.accepts(ta.Value) {
			ta.Value = nil
			return nil
		}
	}

	return ta.Value
}

// DerefAssignment follows solved type assignments until it reaches a type
// that is not a solved assignment.
func DerefAssignment(in Type) Type {
	for {
		ta, ok := in.(*TypeAssignment)
		if !ok || ta.Value == nil {
			return in
		}

		in = ta.Value
	}
}
