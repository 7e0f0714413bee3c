package types

import (
	"strconv"
	"strings"
)

// LinkageName returns the stable mangled name of a type for linkage purposes.
// Named types use their definition's linkage name, which embeds template
// instance arguments in bracketed form; structural types are spelled out.
func LinkageName(typ Type) string {
	sb := strings.Builder{}
	writeLinkageName(&sb, typ)
	return sb.String()
}

func writeLinkageName(sb *strings.Builder, typ Type) {
	switch v := Dealias(typ).(type) {
	case *PrimitiveType:
		sb.WriteString(v.Repr())
	case *CompositeType:
		sb.WriteString(v.Defn().DefnLinkageName())
	case *EnumType:
		sb.WriteString(v.Defn().DefnLinkageName())
	case *FunctionType:
		sb.WriteString("fn")

		if v.Self != nil {
			sb.WriteRune(':')
			writeLinkageName(sb, v.Self)
		}

		if len(v.Params) > 0 {
			sb.WriteRune('(')
			for i, param := range v.Params {
				if i != 0 {
					sb.WriteRune(',')
				}

				writeLinkageName(sb, param.Type)
				if param.Variadic {
					sb.WriteString("...")
				}
			}
			sb.WriteRune(')')
		}

		if !IsVoid(v.Return) {
			sb.WriteString("->")
			writeLinkageName(sb, v.Return)
		}
	case *TupleType:
		sb.WriteRune('(')
		for i, member := range v.Members {
			if i != 0 {
				sb.WriteRune(',')
			}

			writeLinkageName(sb, member)
		}
		sb.WriteRune(')')
	case *UnionType:
		for i, member := range v.Members {
			if i != 0 {
				sb.WriteRune('|')
			}

			writeLinkageName(sb, member)
		}
	case *AddressType:
		writeLinkageName(sb, v.Pointee)
		sb.WriteRune('^')
	case *NativeArrayType:
		sb.WriteString("NativeArray[")
		writeLinkageName(sb, v.Elem)
		sb.WriteRune(',')
		sb.WriteString(strconv.Itoa(v.Length))
		sb.WriteRune(']')
	case *TypeLiteralType:
		sb.WriteString("lumen.reflect.Type")
	case *TypeVariable:
		sb.WriteString(v.Name)
	default:
		sb.WriteString(v.Repr())
	}
}
