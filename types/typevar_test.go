package types

import "testing"

func newAssignment(r *Registry, name string) *TypeAssignment {
	tv := r.TypeVar(name, nil)
	return r.TypeAssign(tv, nil)
}

func TestExactConstraintAgreement(t *testing.T) {
	r := NewRegistry()
	ta := newAssignment(r, "T")

	ta.AddConstraint(&Constraint{Kind: ConstraintExact, Value: Int32Type})
	ta.AddConstraint(&Constraint{Kind: ConstraintExact, Value: Int32Type})

	if got := ta.FindSingularSolution(); !Equals(got, Int32Type) {
		t.Errorf("solution = %v, want int32", got)
	}
}

func TestExactConstraintConflict(t *testing.T) {
	r := NewRegistry()
	ta := newAssignment(r, "T")

	ta.AddConstraint(&Constraint{Kind: ConstraintExact, Value: Int32Type})
	ta.AddConstraint(&Constraint{Kind: ConstraintExact, Value: BoolType})

	if got := ta.FindSingularSolution(); got != nil {
		t.Errorf("conflicting exact constraints should have no solution, got %s", got.Repr())
	}
}

func TestLowerBoundFold(t *testing.T) {
	r := NewRegistry()

	object := newTestClass(r, "Object", nil)
	base := newTestClass(r, "Base", object)
	left := newTestClass(r, "Left", base)
	right := newTestClass(r, "Right", base)

	ta := newAssignment(r, "T")
	ta.AddConstraint(&Constraint{Kind: ConstraintLowerBound, Value: left})
	ta.AddConstraint(&Constraint{Kind: ConstraintLowerBound, Value: right})

	// The solution must be a supertype of both lower bounds: their common
	// base.
	if got := ta.FindSingularSolution(); !Equals(got, base) {
		t.Errorf("lower-bound fold = %v, want Base", got)
	}
}

func TestUpperBoundTightest(t *testing.T) {
	r := NewRegistry()

	object := newTestClass(r, "Object", nil)
	base := newTestClass(r, "Base", object)

	ta := newAssignment(r, "T")
	ta.AddConstraint(&Constraint{Kind: ConstraintUpperBound, Value: object})
	ta.AddConstraint(&Constraint{Kind: ConstraintUpperBound, Value: base})

	// With only upper bounds, the tightest one wins.
	if got := ta.FindSingularSolution(); !Equals(got, base) {
		t.Errorf("upper-bound fold = %v, want Base", got)
	}
}

func TestExactVerifiedAgainstUpperBound(t *testing.T) {
	r := NewRegistry()

	object := newTestClass(r, "Object", nil)
	base := newTestClass(r, "Base", object)
	other := newTestClass(r, "Other", object)

	ta := newAssignment(r, "T")
	ta.AddConstraint(&Constraint{Kind: ConstraintExact, Value: other})
	ta.AddConstraint(&Constraint{Kind: ConstraintUpperBound, Value: base})

	// The exact value violates the upper bound.
	if got := ta.FindSingularSolution(); got != nil {
		t.Errorf("exact solution violating an upper bound should fail, got %s", got.Repr())
	}
}

func TestProvisionGating(t *testing.T) {
	r := NewRegistry()
	ta := newAssignment(r, "T")

	ta.AddConstraint(&Constraint{Kind: ConstraintExact, Value: Int32Type, Provisions: ProvisionFor(0)})
	ta.AddConstraint(&Constraint{Kind: ConstraintExact, Value: BoolType, Provisions: ProvisionFor(1)})

	// With only candidate 0 live, the bool constraint is disabled.
	ta.LiveProvisions = ProvisionFor(0)
	if got := ta.FindSingularSolution(); !Equals(got, Int32Type) {
		t.Errorf("candidate-0 solution = %v, want int32", got)
	}

	// With only candidate 1 live, the int constraint is disabled.
	ta.LiveProvisions = ProvisionFor(1)
	if got := ta.FindSingularSolution(); !Equals(got, BoolType) {
		t.Errorf("candidate-1 solution = %v, want bool", got)
	}

	// With both live, the constraints conflict.
	ta.LiveProvisions = ProvisionFor(0) | ProvisionFor(1)
	if got := ta.FindSingularSolution(); got != nil {
		t.Errorf("conflicting live constraints should fail, got %s", got.Repr())
	}
}

func TestAssignmentDereferencing(t *testing.T) {
	r := NewRegistry()
	ta := newAssignment(r, "T")

	ta.AddConstraint(&Constraint{Kind: ConstraintExact, Value: Int32Type})
	if ta.FindSingularSolution() == nil {
		t.Fatalf("solution should exist")
	}

	if !Equals(ta, Int32Type) {
		t.Errorf("solved assignment should compare equal to its value")
	}

	if Dealias(ta) != Int32Type {
		t.Errorf("Dealias should reach the assignment's solution")
	}
}
