package infer

import (
	"lumenc/types"
	"lumenc/util"
)

// Substitute rewrites a type, replacing every type variable with the result
// of the lookup function.  Variables the lookup leaves nil are kept as-is.
// Structural types containing substituted variables are re-interned through
// the registry so handle identity is preserved.
func Substitute(reg *types.Registry, typ types.Type, lookup func(*types.TypeVariable) types.Type) types.Type {
	switch v := types.Dealias(typ).(type) {
	case *types.TypeVariable:
		if repl := lookup(v); repl != nil {
			return repl
		}

		return v
	case *types.FunctionType:
		params := util.Map(v.Params, func(p types.Param) types.Param {
			p.Type = Substitute(reg, p.Type, lookup)
			return p
		})

		var self types.Type
		if v.Self != nil {
			self = Substitute(reg, v.Self, lookup)
		}

		return reg.Function(Substitute(reg, v.Return, lookup), params, self, v.Static)
	case *types.TupleType:
		return reg.Tuple(util.Map(v.Members, func(m types.Type) types.Type {
			return Substitute(reg, m, lookup)
		}))
	case *types.UnionType:
		return reg.Union(util.Map(v.Members, func(m types.Type) types.Type {
			return Substitute(reg, m, lookup)
		}))
	case *types.AddressType:
		return reg.Address(Substitute(reg, v.Pointee, lookup))
	case *types.NativeArrayType:
		return reg.NativeArray(Substitute(reg, v.Elem, lookup), v.Length)
	case *types.TypeLiteralType:
		return reg.TypeLiteral(Substitute(reg, v.Referent, lookup))
	default:
		return v
	}
}
