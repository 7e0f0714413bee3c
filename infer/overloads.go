package infer

import (
	"fmt"
	"strings"

	"lumenc/depm"
	"lumenc/types"
)

// Candidate is one overload under consideration for a call.
type Candidate struct {
	// The candidate's definition.
	Defn *depm.Defn

	// The candidate's signature.  For template candidates this is the opened
	// signature with assignments in place of the variables.
	Signature *types.FunctionType
}

// Resolution is the outcome of a successful overload resolution.
type Resolution struct {
	// The index of the winning candidate in the input list.
	Index int

	// The winning candidate.
	Candidate Candidate

	// The conversion applied to each argument; nil entries are identical
	// conversions.
	ArgCasts []*types.Cast

	// The candidate's score: the pointwise minimum conversion rank over the
	// arguments.
	Rank types.ConversionRank
}

// NoMatchError reports that no candidate accepts the argument types.
type NoMatchError struct {
	Name     string
	ArgTypes []types.Type
}

func (e *NoMatchError) Error() string {
	reprs := make([]string, len(e.ArgTypes))
	for i, at := range e.ArgTypes {
		reprs[i] = at.Repr()
	}

	return fmt.Sprintf("no overload of `%s` accepts arguments of type (%s)",
		e.Name, strings.Join(reprs, ", "))
}

// AmbiguousCallError reports that two or more candidates tie after every
// tiebreak.
type AmbiguousCallError struct {
	Name       string
	Candidates []Candidate
}

func (e *AmbiguousCallError) Error() string {
	return fmt.Sprintf("ambiguous call to `%s`: %d candidates remain after overload resolution",
		e.Name, len(e.Candidates))
}

/* -------------------------------------------------------------------------- */

// scored pairs a candidate with its per-argument conversion outcome.
type scored struct {
	index    int
	cand     Candidate
	casts    []*types.Cast
	minRank  types.ConversionRank
	numExact int
}

// RankOverloads picks the best candidate for a call with the given argument
// types.  Each candidate is scored by the pointwise minimum conversion rank
// over its arguments; higher minima win.  Equal minima are broken by the
// number of Identical/Exact positions, then by specificity: a candidate whose
// parameter tuple is a subtype of another's is preferred.  Remaining ties
// fail with an AmbiguousCallError.
func RankOverloads(name string, candidates []Candidate, argTypes []types.Type, options int) (*Resolution, error) {
	var viable []scored

	for i, cand := range candidates {
		params := cand.Signature.Params
		if !arityMatches(params, argTypes) {
			continue
		}

		minRank := types.IdenticalTypes
		numExact := 0
		casts := make([]*types.Cast, len(argTypes))
		ok := true

		for j, argType := range argTypes {
			paramType := paramTypeAt(params, j)

			rank, cast := types.Convert(argType, paramType, options)
			if rank == types.Incompatible {
				ok = false
				break
			}

			if rank >= types.ExactConversion {
				numExact++
			}

			if rank < minRank {
				minRank = rank
			}

			casts[j] = cast
		}

		if ok {
			viable = append(viable, scored{index: i, cand: cand, casts: casts, minRank: minRank, numExact: numExact})
		}
	}

	if len(viable) == 0 {
		return nil, &NoMatchError{Name: name, ArgTypes: argTypes}
	}

	// Keep only the candidates with the best minimum rank.
	best := viable[:0]
	bestRank := types.Incompatible
	for _, s := range viable {
		if s.minRank > bestRank {
			bestRank = s.minRank
			best = viable[:0]
		}

		if s.minRank == bestRank {
			best = append(best, s)
		}
	}

	// Tiebreak 1: cardinality of Identical/Exact positions.
	if len(best) > 1 {
		maxExact := -1
		kept := best[:0]
		for _, s := range best {
			if s.numExact > maxExact {
				maxExact = s.numExact
				kept = kept[:0]
			}

			if s.numExact == maxExact {
				kept = append(kept, s)
			}
		}

		best = kept
	}

	// Tiebreak 2: specificity.
	if len(best) > 1 {
		kept := best[:0]
		for _, s := range best {
			dominated := false
			for _, other := range best {
				if s.index != other.index &&
					moreSpecific(other.cand.Signature, s.cand.Signature) &&
					!moreSpecific(s.cand.Signature, other.cand.Signature) {
					dominated = true
					break
				}
			}

			if !dominated {
				kept = append(kept, s)
			}
		}

		best = kept
	}

	if len(best) > 1 {
		remaining := make([]Candidate, len(best))
		for i, s := range best {
			remaining[i] = s.cand
		}

		return nil, &AmbiguousCallError{Name: name, Candidates: remaining}
	}

	winner := best[0]
	return &Resolution{
		Index:     winner.index,
		Candidate: winner.cand,
		ArgCasts:  winner.casts,
		Rank:      winner.minRank,
	}, nil
}

// arityMatches returns whether the given argument count satisfies the
// parameter list, accounting for variadic tails and defaulted keyword
// parameters.
func arityMatches(params []types.Param, argTypes []types.Type) bool {
	required := 0
	variadic := false
	for _, p := range params {
		if p.Variadic {
			variadic = true
		} else if !p.Keyword {
			required++
		}
	}

	if variadic {
		return len(argTypes) >= required
	}

	return len(argTypes) >= required && len(argTypes) <= len(params)
}

// paramTypeAt returns the parameter type consumed by argument position j,
// mapping positions past a variadic parameter onto it.
func paramTypeAt(params []types.Param, j int) types.Type {
	if j < len(params) && !params[j].Variadic {
		return params[j].Type
	}

	for i := len(params) - 1; i >= 0; i-- {
		if params[i].Variadic {
			return params[i].Type
		}
	}

	return params[len(params)-1].Type
}

// moreSpecific returns whether candidate a's parameter tuple is a pointwise
// subtype of candidate b's.
func moreSpecific(a, b *types.FunctionType) bool {
	if len(a.Params) != len(b.Params) {
		return false
	}

	for i, ap := range a.Params {
		if !types.IsSubtype(ap.Type, b.Params[i].Type) {
			return false
		}
	}

	return true
}
