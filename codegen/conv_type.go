package codegen

import (
	"lumenc/report"
	"lumenc/types"

	lltypes "github.com/llir/llvm/ir/types"
)

// convType lowers a semantic type to its LLVM value type: the type a value of
// it has when held in a register or passed by value.  Reference types lower
// to pointers at their body type.
func (g *Generator) convType(typ types.Type) lltypes.Type {
	typ = types.Dealias(typ)
	llTyp := g.pureConvType(typ)

	if llTyp != nil && types.IsReferenceType(typ) {
		if _, ok := llTyp.(*lltypes.PointerType); !ok {
			return lltypes.NewPointer(llTyp)
		}
	}

	return llTyp
}

// convParamType lowers a semantic type to its parameter-passing type: large
// values pass by pointer.
func (g *Generator) convParamType(typ types.Type) lltypes.Type {
	llTyp := g.convType(typ)

	if types.ShapeOf(typ) == types.ShapeLargeValue {
		return lltypes.NewPointer(llTyp)
	}

	return llTyp
}

func (g *Generator) pureConvType(typ types.Type) lltypes.Type {
	switch v := typ.(type) {
	case *types.PrimitiveType:
		return g.convPrimType(v)
	case *types.CompositeType:
		return g.compositeBodyType(v)
	case *types.EnumType:
		return g.convPrimType(v.Base)
	case *types.FunctionType:
		params := make([]lltypes.Type, 0, len(v.Params)+1)
		if v.Self != nil {
			params = append(params, g.convParamType(v.Self))
		}

		for _, param := range v.Params {
			paramType := g.convParamType(param.Type)
			if param.ByRef {
				paramType = lltypes.NewPointer(g.convType(param.Type))
			}

			params = append(params, paramType)
		}

		return lltypes.NewFunc(g.convParamType(v.Return), params...)
	case *types.TupleType:
		members := make([]lltypes.Type, len(v.Members))
		for i, member := range v.Members {
			members[i] = g.convType(member)
		}

		return lltypes.NewStruct(members...)
	case *types.UnionType:
		return g.convUnionType(v)
	case *types.AddressType:
		return lltypes.NewPointer(g.convType(v.Pointee))
	case *types.NativeArrayType:
		return lltypes.NewArray(uint64(v.Length), g.convType(v.Elem))
	case *types.TypeLiteralType:
		// Type literals lower to opaque reflection handles.
		return lltypes.I8Ptr
	default:
		report.ReportICE("cannot lower type %s to LLVM", typ.Repr())
		return nil
	}
}

func (g *Generator) convPrimType(pt *types.PrimitiveType) lltypes.Type {
	switch pt.Kind {
	case types.PrimBool:
		return lltypes.I1
	case types.PrimInt8, types.PrimUint8:
		return lltypes.I8
	case types.PrimInt16, types.PrimUint16:
		return lltypes.I16
	case types.PrimInt32, types.PrimUint32, types.PrimChar:
		return lltypes.I32
	case types.PrimInt64, types.PrimUint64, types.PrimUnsizedInt:
		return lltypes.I64
	case types.PrimFloat:
		return lltypes.Float
	case types.PrimDouble:
		return lltypes.Double
	case types.PrimVoid:
		return lltypes.Void
	case types.PrimNull:
		return lltypes.I8Ptr
	default:
		// The sentinel type only survives failed compilations; give it some
		// representation so IR dumping still works.
		return lltypes.I8
	}
}

// compositeBodyType returns the struct body of a composite: the embedded
// super value followed by the declared fields.  Bodies are cached as named
// type defs in the module so recursive types terminate.
func (g *Generator) compositeBodyType(ct *types.CompositeType) lltypes.Type {
	if existing, ok := g.globalTypes[ct]; ok {
		return existing
	}

	// Publish the named type before lowering the fields so recursive
	// references find it.
	named := g.mod.NewTypeDef(types.LinkageName(ct), lltypes.NewStruct())
	g.globalTypes[ct] = named

	var fields []lltypes.Type
	for _, field := range ct.InstanceFields {
		if field == nil {
			fields = append(fields, g.pureConvType(types.Dealias(ct.Super())))
		} else {
			fields = append(fields, g.convType(field.Type))
		}
	}

	if structType, ok := named.(*lltypes.StructType); ok {
		structType.Fields = fields
	}

	return named
}

// convUnionType lowers a union according to its layout plan: a bare pointer
// for reference-only unions, otherwise a (discriminator, payload) pair.
func (g *Generator) convUnionType(ut *types.UnionType) lltypes.Type {
	layout, err := ut.Layout()
	if err != nil {
		report.ReportCompileError(report.KindLayoutConflict, g.pkg.AbsPath, g.pkg.ReprPath, nil, "%s", err)
		return lltypes.I8Ptr
	}

	if layout.DiscriminatorBits == 0 {
		return g.convType(layout.LargestMember)
	}

	var discType lltypes.Type
	switch layout.DiscriminatorBits {
	case 1:
		discType = lltypes.I1
	case 8:
		discType = lltypes.I8
	case 16:
		discType = lltypes.I16
	default:
		discType = lltypes.I32
	}

	return lltypes.NewStruct(discType, g.convType(layout.LargestMember))
}
