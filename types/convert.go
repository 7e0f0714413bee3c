package types

// ConversionRank orders implicit conversions from best to worst.  Higher
// values are better conversions.
type ConversionRank int

// Enumeration of conversion ranks.
const (
	Incompatible = ConversionRank(iota)
	Truncation
	IntegerToBool
	PrecisionLoss
	SignedUnsigned
	NonPreferred
	ExactConversion
	IdenticalTypes
)

func (cr ConversionRank) String() string {
	switch cr {
	case Incompatible:
		return "Incompatible"
	case Truncation:
		return "Truncation"
	case IntegerToBool:
		return "IntegerToBool"
	case PrecisionLoss:
		return "PrecisionLoss"
	case SignedUnsigned:
		return "SignedUnsigned"
	case NonPreferred:
		return "NonPreferred"
	case ExactConversion:
		return "ExactConversion"
	default:
		return "IdenticalTypes"
	}
}

// IsConversionWarning returns whether the rank indicates a lossy conversion
// that should be surfaced to the user when applied implicitly.
func IsConversionWarning(rank ConversionRank) bool {
	return rank > Incompatible && rank < NonPreferred
}

// Conversion option flags.
const (
	// ConvertCoerce allows declared `coerce` methods on the destination
	// composite to be tried as a two-hop conversion.
	ConvertCoerce = 1 << iota

	// ConvertExplicit marks the conversion as a user-written cast, admitting
	// lossy primitive conversions without warnings.
	ConvertExplicit
)

/* -------------------------------------------------------------------------- */

// CastKind identifies the operation the emitter must perform to realize a
// conversion.  This must be one of the enumerated cast kinds below.
type CastKind int

// Enumeration of cast kinds.
const (
	CastBit = CastKind(iota)     // Bit-identical reinterpretation.
	CastIntWiden                 // Integer widening.
	CastIntNarrow                // Integer truncation.
	CastIntToFloat               // Integer to floating point.
	CastFloatToInt               // Floating point to integer.
	CastFloatExtend              // Float widening.
	CastFloatTrunc               // Float narrowing.
	CastIntToBool                // Integer compared against zero.
	CastBoolToInt                // Bool zero-extension.
	CastUpcast                   // Derived reference to base reference.
	CastUnionCtor                // Wrap a member value into a union.
	CastCheckedUnionMember       // Checked extraction of a union member.
	CastEnumToInt                // Enum to its base integer type.
	CastCoerce                   // Call of a declared coerce method.
)

// Cast describes the conversion operation chosen by Convert.  It is the
// "optional cast expression" handed outward to the emitter.
type Cast struct {
	// The kind of cast.
	Kind CastKind

	// The destination type.
	To Type

	// For union casts, the discriminator index of the member involved.
	TypeIndex int

	// For coercions, the coerce method to call.
	Coercer *MethodSlot

	// For two-hop coercions, the conversion into the coercer's parameter.
	Inner *Cast
}

/* -------------------------------------------------------------------------- */

// Convert computes the rank of converting a value of type from into type to,
// along with the cast operation that realizes the conversion.  Conversion
// dispatches first to the source type (so a union may produce a checked
// member cast), then to the destination.  If direct conversion is
// Incompatible and the ConvertCoerce option is set, declared coerce methods
// on a destination composite are tried as a two-hop conversion.
func Convert(from, to Type, options int) (ConversionRank, *Cast) {
	from = Dealias(from)
	to = Dealias(to)

	// The sentinel type converts to and from everything so that a failed
	// definition doesn't cascade into spurious conversion errors.
	if IsBad(from) || IsBad(to) {
		return ExactConversion, &Cast{Kind: CastBit, To: to}
	}

	if Equals(from, to) {
		return IdenticalTypes, nil
	}

	// Source-side conversions first.
	if rank, cast := convertFrom(from, to); rank != Incompatible {
		return rank, cast
	}

	rank, cast := convertImpl(from, to)

	if rank == Incompatible && options&ConvertCoerce != 0 {
		if ct, ok := to.(*CompositeType); ok {
			return convertViaCoercers(from, ct)
		}
	}

	return rank, cast
}

// convertFrom implements the conversions the *source* type knows about.
func convertFrom(from, to Type) (ConversionRank, *Cast) {
	switch v := from.(type) {
	case *UnionType:
		// A single-optional union converts to a reference type by a checked
		// member cast.
		if v.IsSingleOptionalType() && IsReferenceType(to) {
			member := v.FirstNonVoidType()
			rank, _ := Convert(member, to, 0)
			if rank == Incompatible {
				return Incompatible, nil
			}

			if rank == IdenticalTypes {
				rank = ExactConversion
			}

			return rank, &Cast{Kind: CastCheckedUnionMember, To: to, TypeIndex: v.TypeIndex(member)}
		}
	case *EnumType:
		// Enums convert to their base integer type and onward.
		if rank, _ := Convert(v.Base, to, 0); rank != Incompatible {
			if rank > NonPreferred {
				rank = NonPreferred
			}

			return rank, &Cast{Kind: CastEnumToInt, To: to}
		}
	}

	return Incompatible, nil
}

// convertImpl implements the conversions the *destination* type knows about.
func convertImpl(from, to Type) (ConversionRank, *Cast) {
	switch v := to.(type) {
	case *PrimitiveType:
		return convertToPrimitive(from, v)
	case *CompositeType:
		if v.Kind == KindProtocol {
			if v.SupportedBy(from) {
				return ExactConversion, &Cast{Kind: CastUpcast, To: to}
			}

			return Incompatible, nil
		}

		if IsNull(from) && (v.Kind == KindClass || v.Kind == KindInterface) {
			return ExactConversion, &Cast{Kind: CastBit, To: to}
		}

		if IsSubtype(from, to) {
			return ExactConversion, &Cast{Kind: CastUpcast, To: to}
		}

		return Incompatible, nil
	case *UnionType:
		return convertToUnion(from, v)
	case *AddressType:
		if IsNull(from) {
			return ExactConversion, &Cast{Kind: CastBit, To: to}
		}

		return Incompatible, nil
	case *TupleType:
		if ftt, ok := from.(*TupleType); ok && len(ftt.Members) == len(v.Members) {
			worst := IdenticalTypes
			for i, member := range ftt.Members {
				rank, _ := Convert(member, v.Members[i], 0)
				if rank < worst {
					worst = rank
				}
			}

			if worst > Incompatible {
				if worst == IdenticalTypes {
					worst = ExactConversion
				}

				return worst, &Cast{Kind: CastBit, To: to}
			}
		}

		return Incompatible, nil
	default:
		return Incompatible, nil
	}
}

// convertToUnion finds the best-converting member of the destination union
// and wraps the value with a union constructor cast.
func convertToUnion(from Type, to *UnionType) (ConversionRank, *Cast) {
	bestRank := Incompatible
	var bestType Type

	for _, member := range to.Members {
		rank, _ := Convert(from, member, 0)
		if rank > bestRank {
			bestRank = rank
			bestType = member
		}
	}

	if bestType == nil {
		return Incompatible, nil
	}

	// Converting to a union is never identical: the representation changes.
	if bestRank == IdenticalTypes {
		bestRank = ExactConversion
	}

	index := to.TypeIndex(bestType)
	if index < 0 {
		return Incompatible, nil
	}

	return bestRank, &Cast{Kind: CastUnionCtor, To: to, TypeIndex: index}
}

// convertViaCoercers tries each declared coerce method on the destination as
// a two-hop conversion and takes the best rank.  The converter pass must have
// gathered the coercers before this runs.
func convertViaCoercers(from Type, to *CompositeType) (ConversionRank, *Cast) {
	if !to.ConvertersReady {
		panic("conversion with the coerce option before the converter pass has run")
	}

	bestRank := Incompatible
	var bestCast *Cast

	for _, coercer := range to.Coercers {
		paramType := coercer.Signature.Params[0].Type

		inRank, inCast := Convert(from, paramType, 0)
		outRank, _ := Convert(coercer.Signature.Return, to, 0)

		rank := inRank
		if outRank < rank {
			rank = outRank
		}

		if rank > bestRank {
			bestRank = rank
			bestCast = &Cast{Kind: CastCoerce, To: to, Coercer: coercer, Inner: inCast}
		}
	}

	return bestRank, bestCast
}

/* -------------------------------------------------------------------------- */

// convertToPrimitive ranks a conversion into a primitive destination.
func convertToPrimitive(from Type, to *PrimitiveType) (ConversionRank, *Cast) {
	fpt, ok := DerefEnum(from).(*PrimitiveType)
	if !ok {
		return Incompatible, nil
	}

	if fpt.Kind == to.Kind {
		return IdenticalTypes, nil
	}

	// Unsized integer constants convert exactly into any numeric type.
	if fpt.Kind == PrimUnsizedInt {
		if to.IsIntegral() {
			return ExactConversion, &Cast{Kind: CastBit, To: to}
		} else if to.IsFloating() {
			return ExactConversion, &Cast{Kind: CastIntToFloat, To: to}
		}

		return Incompatible, nil
	}

	switch {
	case to.IsIntegral() && fpt.IsIntegral():
		return convertIntToInt(fpt, to)
	case to.IsFloating() && fpt.IsIntegral():
		// Integers convert exactly into a float with a wider mantissa.
		if to.Kind == PrimDouble && fpt.NumBits() <= 32 {
			return ExactConversion, &Cast{Kind: CastIntToFloat, To: to}
		}

		return PrecisionLoss, &Cast{Kind: CastIntToFloat, To: to}
	case to.IsFloating() && fpt.IsFloating():
		if to.Kind == PrimDouble {
			return ExactConversion, &Cast{Kind: CastFloatExtend, To: to}
		}

		return PrecisionLoss, &Cast{Kind: CastFloatTrunc, To: to}
	case to.IsIntegral() && fpt.IsFloating():
		return Truncation, &Cast{Kind: CastFloatToInt, To: to}
	case to.Kind == PrimBool && fpt.IsIntegral():
		return IntegerToBool, &Cast{Kind: CastIntToBool, To: to}
	case to.IsIntegral() && fpt.Kind == PrimBool:
		return NonPreferred, &Cast{Kind: CastBoolToInt, To: to}
	default:
		return Incompatible, nil
	}
}

// convertIntToInt ranks an integer-to-integer conversion.
func convertIntToInt(from, to *PrimitiveType) (ConversionRank, *Cast) {
	fromBits, toBits := from.NumBits(), to.NumBits()

	if from.IsSigned() == to.IsSigned() {
		if toBits > fromBits {
			return ExactConversion, &Cast{Kind: CastIntWiden, To: to}
		} else if toBits == fromBits {
			// Same width, same signedness, different kind: char vs uint32.
			return ExactConversion, &Cast{Kind: CastBit, To: to}
		}

		return Truncation, &Cast{Kind: CastIntNarrow, To: to}
	}

	// Unsigned widens exactly into a strictly larger signed type.
	if !from.IsSigned() && to.IsSigned() && toBits > fromBits {
		return ExactConversion, &Cast{Kind: CastIntWiden, To: to}
	}

	if toBits < fromBits {
		return Truncation, &Cast{Kind: CastIntNarrow, To: to}
	}

	return SignedUnsigned, &Cast{Kind: CastBit, To: to}
}
