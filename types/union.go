package types

import (
	"sort"
	"strings"
)

// UnionType represents a disjoint union of member types.  The member list is
// canonical: dealiased, free of duplicates and of members subsumed by other
// members, and sorted by the fixed lexical ordering.  Two unions are equal
// exactly when their canonical member sets are equal.
type UnionType struct {
	// The canonical member list.
	Members []Type

	// Category counts over the members.  The invariant
	// NumValueTypes + NumReferenceTypes + (HasVoid?1:0) + (HasNull?1:0)
	// always equals len(Members).
	NumValueTypes     int
	NumReferenceTypes int
	HasVoid           bool
	HasNull           bool
}

// canonicaliseUnion produces the canonical member list for the given raw
// members: dealias each; drop a candidate subsumed by an existing member and
// drop existing members subsumed by the candidate; flatten nested unions;
// sort the survivors.
func canonicaliseUnion(members []Type) []Type {
	var combined []Type

	var add func(typ Type)
	add = func(typ Type) {
		typ = Dealias(typ)

		if ut, ok := typ.(*UnionType); ok {
			for _, member := range ut.Members {
				add(member)
			}

			return
		}

		addNew := true
		kept := combined[:0]
		for _, m := range combined {
			if unionSubsumes(m, typ) {
				addNew = false
				kept = append(kept, m)
			} else if !unionSubsumes(typ, m) {
				kept = append(kept, m)
			}
		}
		combined = kept

		if addNew {
			combined = append(combined, typ)
		}
	}

	for _, member := range members {
		add(member)
	}

	sort.SliceStable(combined, func(i, j int) bool {
		return LexicalLess(combined[i], combined[j])
	})

	return combined
}

// unionSubsumes returns whether the member general makes the member specific
// redundant within a union.  Equal types and widened primitives are
// subsumed; distinct reference types are NOT, even when one derives the
// other: the union must still distinguish them at runtime, so both members
// stay.
func unionSubsumes(general, specific Type) bool {
	if general.equals(specific) {
		return true
	}

	gpt, gOk := general.(*PrimitiveType)
	spt, sOk := specific.(*PrimitiveType)
	if gOk && sOk && spt.Kind != PrimNull && spt.Kind != PrimVoid {
		return primitiveMoreGeneral(spt.Kind, gpt.Kind)
	}

	return false
}

// newUnionType builds a union over an already-canonical member list and
// counts its member categories.
func newUnionType(members []Type) *UnionType {
	ut := &UnionType{Members: members}

	for _, member := range members {
		switch {
		case IsVoid(member):
			ut.HasVoid = true
		case IsNull(member):
			ut.HasNull = true
		case IsReferenceType(member):
			ut.NumReferenceTypes++
		default:
			ut.NumValueTypes++
		}
	}

	return ut
}

func (ut *UnionType) equals(other Type) bool {
	out, ok := other.(*UnionType)
	if !ok || len(ut.Members) != len(out.Members) {
		return false
	}

	// Both member lists are canonical, so set equality is pointwise equality.
	for i, member := range ut.Members {
		if !Equals(member, out.Members[i]) {
			return false
		}
	}

	return true
}

func (ut *UnionType) Repr() string {
	sb := strings.Builder{}

	for i, member := range ut.Members {
		if i != 0 {
			sb.WriteString(" or ")
		}

		sb.WriteString(member.Repr())
	}

	return sb.String()
}

// HasRefTypesOnly returns whether every member of the union is a reference
// type, optionally including null.
func (ut *UnionType) HasRefTypesOnly() bool {
	return ut.NumValueTypes == 0 && !ut.HasVoid
}

// IsSingleOptionalType returns whether the union is an "optional" of exactly
// one interesting member: one reference member with null, or one value member
// with void.
func (ut *UnionType) IsSingleOptionalType() bool {
	if ut.NumValueTypes == 0 {
		return ut.HasNull && !ut.HasVoid && ut.NumReferenceTypes == 1
	} else if ut.NumReferenceTypes == 0 {
		return ut.HasVoid && !ut.HasNull && ut.NumValueTypes == 1
	}

	return false
}

// FirstNonVoidType returns the first member that is neither void nor null.
func (ut *UnionType) FirstNonVoidType() Type {
	for _, member := range ut.Members {
		if !IsVoid(member) && !IsNull(member) {
			return member
		}
	}

	return nil
}

// Includes returns whether the union can hold a value of the given type: ie.
// whether some member is a supertype of it.
func (ut *UnionType) Includes(typ Type) bool {
	for _, member := range ut.Members {
		if IsSubtype(typ, member) {
			return true
		}
	}

	return false
}

// TypeIndex returns the discriminator index of the given member type, or -1
// if the type is not a member.  Reference-only unions discriminate by
// subclass test rather than by index, so every member maps to index 0.
func (ut *UnionType) TypeIndex(typ Type) int {
	typ = Dealias(typ)

	if ut.HasRefTypesOnly() {
		return 0
	}

	for i, member := range ut.Members {
		if Equals(typ, member) {
			return i
		}
	}

	return -1
}
