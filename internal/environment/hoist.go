package environment

import (
	"github.com/solarframe/ecmawalk/internal/jsast"
	"github.com/solarframe/ecmawalk/internal/symbols"
	"github.com/solarframe/ecmawalk/internal/values"
)

// Hoister walks a function or program body once before it executes,
// pre-declaring every var/function/lexical binding it introduces
// (spec.md §4.1), in three passes run before the body: vars, then
// function declarations, then let/const/class.
//
// Grounded on the two-pass shape of runtime/environment.go's
// Environment.Define usage in the interpreter's block-entry code
// (DWScript pre-declares locals before running a block); generalized
// here into ECMAScript's var/function/let/const/class distinction,
// which DWScript's single var-kind model never had to make.
type Hoister struct {
	Names *symbols.Interner
}

// HoistBody runs the three passes over a statement list directly inside
// frame (a function body, program, module top level, or block). `var`
// names go to frame's var scope (GetFunctionScope); function and
// lexical declarations go to frame itself. strictMode disables Annex-B
// block-scoped function hoisting.
func (h *Hoister) HoistBody(frame *Frame, body []jsast.Statement, strictMode bool) error {
	// Pass 1: collect `var`-declared names (function-scoped) from the
	// entire body, recursing into nested blocks/ifs/loops but not into
	// nested function bodies.
	varNames := map[symbols.Symbol]bool{}
	h.collectVarNames(body, varNames)
	varScope := frame.GetFunctionScope()
	for name := range varNames {
		if !varScope.HasOwnLexicalBinding(name) {
			if _, ok := varScope.GetLocal(name); !ok {
				varScope.bindingsDefineVar(name)
			}
		}
	}

	// Pass 2: top-level function declarations are hoisted with their
	// value already initialized (spec.md §4.1: "functions pass"). The
	// closure value itself is installed later by the evaluator, which
	// alone has the call machinery to build one; here the binding is
	// only marked present and initialized so Get/Assign treat it as
	// resolvable before that happens.
	for _, stmt := range body {
		if fd, ok := stmt.(*jsast.FunctionDeclaration); ok && fd.Function.ID != nil {
			frame.bindings[fd.Function.ID.Name] = &Binding{
				Value:            values.Undefined,
				IsLexical:        false,
				IsInitialized:    true,
				IsFunctionScoped: true,
			}
		}
	}

	// Pass 3: top-level let/const/class declarations get a TDZ
	// placeholder binding (spec.md §4.1 "lexical declarations are
	// pre-declared uninitialized").
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *jsast.VariableDeclaration:
			if s.Kind == jsast.VarVar {
				continue
			}
			for _, decl := range s.Declarators {
				for _, sym := range patternSymbols(decl.ID) {
					if err := frame.Define(sym, values.Undefined, true, s.Kind == jsast.VarConst, false, false, h.Names); err != nil {
						return err
					}
				}
			}
		case *jsast.ClassDeclaration:
			if s.Class.ID != nil {
				if err := frame.Define(s.Class.ID.Name, values.Undefined, true, false, false, false, h.Names); err != nil {
					return err
				}
			}
		}
	}

	if !strictMode {
		h.annexBBlockFunctions(frame, body)
	}
	return nil
}

// annexBBlockFunctions implements spec.md §4.1's Annex-B extension: a
// function declared directly inside a sloppy-mode block also creates a
// var-scoped binding in the enclosing function scope, initialized to
// the block-local function value once the block is entered. The var
// binding is skipped only when frame's var scope already holds a
// lexical binding of that name, or frame itself (below its var scope)
// does (HasBodyLexicalName on frame); a same-named let/const/class in an
// intervening nested block does not stop it here, and such a binding
// only keeps the evaluator from copying the function value up.
func (h *Hoister) annexBBlockFunctions(frame *Frame, body []jsast.Statement) {
	var walk func(stmts []jsast.Statement, scope *Frame)
	walk = func(stmts []jsast.Statement, scope *Frame) {
		for _, stmt := range stmts {
			if block, ok := stmt.(*jsast.BlockStatement); ok {
				for _, inner := range block.Body {
					if fd, ok := inner.(*jsast.FunctionDeclaration); ok && fd.Function.ID != nil {
						sym := fd.Function.ID.Name
						funcScope := scope.GetFunctionScope()
						if !scope.HasBodyLexicalName(sym) && !funcScope.HasOwnLexicalBinding(sym) {
							if _, ok := funcScope.GetLocal(sym); !ok {
								funcScope.bindingsDefineVar(sym)
							}
						}
					}
				}
				walk(block.Body, scope)
			}
			if ifs, ok := stmt.(*jsast.IfStatement); ok {
				if ifs.Consequent != nil {
					walk([]jsast.Statement{ifs.Consequent}, scope)
				}
				if ifs.Alternate != nil {
					walk([]jsast.Statement{ifs.Alternate}, scope)
				}
			}
		}
	}
	walk(body, frame)
}

// collectVarNames recurses through statement forms that don't introduce
// a new function scope, collecting every `var`-declared identifier
// (spec.md §4.1 "VarScopedDeclarations").
func (h *Hoister) collectVarNames(body []jsast.Statement, out map[symbols.Symbol]bool) {
	var walk func(stmt jsast.Statement)
	walk = func(stmt jsast.Statement) {
		switch s := stmt.(type) {
		case *jsast.VariableDeclaration:
			if s.Kind == jsast.VarVar {
				for _, decl := range s.Declarators {
					for _, sym := range patternSymbols(decl.ID) {
						out[sym] = true
					}
				}
			}
		case *jsast.BlockStatement:
			for _, inner := range s.Body {
				walk(inner)
			}
		case *jsast.IfStatement:
			if s.Consequent != nil {
				walk(s.Consequent)
			}
			if s.Alternate != nil {
				walk(s.Alternate)
			}
		case *jsast.WhileStatement:
			walk(s.Body)
		case *jsast.DoWhileStatement:
			walk(s.Body)
		case *jsast.ForStatement:
			if s.Init != nil {
				walk(s.Init)
			}
			walk(s.Body)
		case *jsast.ForInStatement:
			if decl, ok := s.Left.(*jsast.VariableDeclaration); ok {
				walk(decl)
			}
			walk(s.Body)
		case *jsast.ForOfStatement:
			if decl, ok := s.Left.(*jsast.VariableDeclaration); ok {
				walk(decl)
			}
			walk(s.Body)
		case *jsast.TryStatement:
			if s.Block != nil {
				walk(s.Block)
			}
			if s.Handler != nil && s.Handler.Body != nil {
				walk(s.Handler.Body)
			}
			if s.Finalizer != nil {
				walk(s.Finalizer)
			}
		case *jsast.SwitchStatement:
			for _, c := range s.Cases {
				for _, inner := range c.Consequents {
					walk(inner)
				}
			}
		case *jsast.LabeledStatement:
			walk(s.Body)
		}
	}
	for _, stmt := range body {
		walk(stmt)
	}
}

// bindingsDefineVar installs an uninitialized-to-undefined var binding
// directly (bypassing Define's redeclaration check, since repeated var
// declarations of the same name are legal).
func (f *Frame) bindingsDefineVar(name symbols.Symbol) {
	if _, ok := f.bindings[name]; ok {
		return
	}
	f.bindings[name] = &Binding{Value: values.Undefined, IsInitialized: true, IsFunctionScoped: true}
}

// patternSymbols flattens every identifier bound by a (possibly
// destructuring) pattern — spec.md §4.2 "BoundNames".
func patternSymbols(p jsast.Pattern) []symbols.Symbol {
	var out []symbols.Symbol
	var walk func(p jsast.Pattern)
	walk = func(p jsast.Pattern) {
		switch n := p.(type) {
		case *jsast.Identifier:
			out = append(out, n.Name)
		case *jsast.ArrayPattern:
			for _, el := range n.Elements {
				if el != nil {
					walk(el)
				}
			}
		case *jsast.ObjectPattern:
			for _, prop := range n.Properties {
				walk(prop.Value)
			}
			if n.Rest != nil {
				walk(n.Rest)
			}
		case *jsast.AssignmentPattern:
			walk(n.Target)
		case *jsast.RestElement:
			walk(n.Argument)
		}
	}
	walk(p)
	return out
}
