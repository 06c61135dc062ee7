package resolve

import (
	"github.com/funvibe/nomlc/internal/diag"
	"github.com/funvibe/nomlc/internal/tree"
)

// resolveType walks a surface type, resolving Named references via scope
// lookup and auto-binding Universal ('a) variables the first time they're
// seen within the current scope: a type annotation's 'a is only required
// to be pre-declared when it occurs inside a data declaration's
// constructor bodies, where only the explicitly declared parameters are
// in scope.
func (r *Resolver) resolveType(t *tree.ParsedType) *tree.ResolvedType {
	switch n := t.Node.(type) {
	case tree.PTInvalid:
		return &tree.ResolvedType{Span: t.Span, Node: tree.RTInvalid{Err: n.Err}}

	case tree.PTWildcard:
		return &tree.ResolvedType{Span: t.Span, Node: tree.RTWildcard{}}

	case tree.PTNamed:
		if name, ok := r.lookupType(n.Name); ok {
			return &tree.ResolvedType{Span: t.Span, Node: tree.RTNamed{Name: name}}
		}
		id := r.Errors.Record(diag.PhaseResolver, diag.CodeUnknownName, diag.SeverityError, t.Span, r.Names.GetIdent(n.Name))
		return &tree.ResolvedType{Span: t.Span, Node: tree.RTInvalid{Err: id}}

	case tree.PTUniversal:
		if name, ok := r.lookupType(n.Name); ok {
			return &tree.ResolvedType{Span: t.Span, Node: tree.RTUniversal{Name: name}}
		}
		name := r.defineType(n.Name, t.Span)
		return &tree.ResolvedType{Span: t.Span, Node: tree.RTUniversal{Name: name}}

	case tree.PTFunction:
		param := r.resolveType(n.Param)
		result := r.resolveType(n.Result)
		return &tree.ResolvedType{Span: t.Span, Node: tree.RTFunction{Param: param, Result: result}}

	case tree.PTRecord:
		fields := make([]tree.ResolvedTypeField, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = tree.ResolvedTypeField{Label: f.Label, Type: r.resolveType(f.Type)}
		}
		return &tree.ResolvedType{Span: t.Span, Node: tree.RTRecord{Fields: fields}}

	case tree.PTApply:
		fn := r.resolveType(n.Fn)
		arg := r.resolveType(n.Arg)
		return &tree.ResolvedType{Span: t.Span, Node: tree.RTApply{Fn: fn, Arg: arg}}

	case tree.PTGroup:
		return &tree.ResolvedType{Span: t.Span, Node: tree.RTGroup{Type: r.resolveType(n.Type)}}

	default:
		return &tree.ResolvedType{Span: t.Span, Node: tree.RTWildcard{}}
	}
}

// resolveTypeInData resolves a constructor parameter type where only the
// explicitly declared data parameters are legal Universals: any other 'x
// raises implicit_type_var_in_data instead of silently auto-binding it.
func (r *Resolver) resolveTypeInData(t *tree.ParsedType) *tree.ResolvedType {
	switch n := t.Node.(type) {
	case tree.PTUniversal:
		if name, ok := r.lookupType(n.Name); ok {
			return &tree.ResolvedType{Span: t.Span, Node: tree.RTUniversal{Name: name}}
		}
		id := r.Errors.Record(diag.PhaseResolver, diag.CodeImplicitTypeVarInData, diag.SeverityError, t.Span, r.Names.GetIdent(n.Name))
		return &tree.ResolvedType{Span: t.Span, Node: tree.RTInvalid{Err: id}}

	case tree.PTFunction:
		param := r.resolveTypeInData(n.Param)
		result := r.resolveTypeInData(n.Result)
		return &tree.ResolvedType{Span: t.Span, Node: tree.RTFunction{Param: param, Result: result}}

	case tree.PTRecord:
		fields := make([]tree.ResolvedTypeField, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = tree.ResolvedTypeField{Label: f.Label, Type: r.resolveTypeInData(f.Type)}
		}
		return &tree.ResolvedType{Span: t.Span, Node: tree.RTRecord{Fields: fields}}

	case tree.PTApply:
		fn := r.resolveTypeInData(n.Fn)
		arg := r.resolveTypeInData(n.Arg)
		return &tree.ResolvedType{Span: t.Span, Node: tree.RTApply{Fn: fn, Arg: arg}}

	case tree.PTGroup:
		return &tree.ResolvedType{Span: t.Span, Node: tree.RTGroup{Type: r.resolveTypeInData(n.Type)}}

	default:
		return r.resolveType(t)
	}
}
