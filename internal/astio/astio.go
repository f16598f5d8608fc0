// Package astio is the JSON wire format between an external lexer/
// parser/AST-builder and this module's internal/jsast tree (spec.md §6
// "External interfaces": "Lexer/parser/AST-builder ... remain external
// collaborators" — they hand this evaluator a tree, and astio is the
// boundary that tree crosses).
//
// Decoding uses github.com/tidwall/gjson for path-based, allocation-light
// traversal of the incoming document (the "kind" discriminator is read
// with a single Get before any node-specific decode runs, and the CLI's
// `dump-ast` command re-emits a single sub-path without unmarshaling the
// whole document). Encoding/patching uses github.com/tidwall/sjson to
// build or modify the JSON text in place rather than round-tripping
// through a Go map, mirroring gjson/sjson's own paired design.
//
// Grounded on internal/ast's per-node-kind tagging, generalized from a
// Go type switch (DWScript's AST never crosses a process boundary) into
// an explicit "kind" string tag every node carries on the wire.
package astio

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/solarframe/ecmawalk/internal/jsast"
	"github.com/solarframe/ecmawalk/internal/symbols"
)

// DecodeProgram parses a JSON document shaped like internal/jsast's tree
// (each node an object with a "kind" discriminator) into a *jsast.Program,
// interning any identifier text it encounters into names.
func DecodeProgram(data []byte, names *symbols.Interner) (*jsast.Program, error) {
	root := gjson.ParseBytes(data)
	if !root.Exists() {
		return nil, fmt.Errorf("astio: empty document")
	}
	d := &decoder{names: names}
	body, err := d.stmtList(root.Get("body"))
	if err != nil {
		return nil, err
	}
	return &jsast.Program{
		Body:     body,
		IsModule: root.Get("isModule").Bool(),
	}, nil
}

// ExtractPath re-emits the sub-document at path (e.g. "body.0.kind")
// without unmarshaling the rest of data, used by the `dump-ast` CLI
// command to print one node or field on demand.
func ExtractPath(data []byte, path string) (string, error) {
	res := gjson.GetBytes(data, path)
	if !res.Exists() {
		return "", fmt.Errorf("astio: path %q not found", path)
	}
	return res.Raw, nil
}

// SetPath patches a single field of a JSON AST document (e.g. toggling
// a node's "strict" flag, without re-encoding the whole tree) via
// sjson.Set. No CLI subcommand calls it.
func SetPath(data []byte, path string, value any) ([]byte, error) {
	return sjson.SetBytes(data, path, value)
}

type decoder struct {
	names *symbols.Interner
}

func (d *decoder) sym(r gjson.Result) symbols.Symbol {
	return d.names.Intern(r.String())
}

func (d *decoder) stmtList(r gjson.Result) ([]jsast.Statement, error) {
	if !r.Exists() {
		return nil, nil
	}
	var out []jsast.Statement
	var firstErr error
	r.ForEach(func(_, v gjson.Result) bool {
		s, err := d.stmt(v)
		if err != nil {
			firstErr = err
			return false
		}
		out = append(out, s)
		return true
	})
	return out, firstErr
}

func (d *decoder) exprList(r gjson.Result) ([]jsast.Expression, error) {
	if !r.Exists() {
		return nil, nil
	}
	var out []jsast.Expression
	var firstErr error
	r.ForEach(func(_, v gjson.Result) bool {
		if !v.Exists() || v.Type == gjson.Null {
			out = append(out, nil) // array elision / sparse hole
			return true
		}
		e, err := d.expr(v)
		if err != nil {
			firstErr = err
			return false
		}
		out = append(out, e)
		return true
	})
	return out, firstErr
}

// stmt decodes the statement kinds exercised by spec.md §8's end-to-end
// scenarios and the surrounding common syntax; an unrecognized "kind"
// returns an error naming it rather than silently dropping the node.
func (d *decoder) stmt(r gjson.Result) (jsast.Statement, error) {
	switch r.Get("kind").String() {
	case "Block":
		body, err := d.stmtList(r.Get("body"))
		if err != nil {
			return nil, err
		}
		return &jsast.BlockStatement{Body: body}, nil

	case "VarDecl":
		kind := jsast.VarKind(r.Get("varKind").Int())
		var decls []*jsast.VariableDeclarator
		var firstErr error
		r.Get("declarators").ForEach(func(_, v gjson.Result) bool {
			id, err := d.pattern(v.Get("id"))
			if err != nil {
				firstErr = err
				return false
			}
			var init jsast.Expression
			if iv := v.Get("init"); iv.Exists() {
				init, firstErr = d.expr(iv)
				if firstErr != nil {
					return false
				}
			}
			decls = append(decls, &jsast.VariableDeclarator{ID: id, Init: init})
			return true
		})
		if firstErr != nil {
			return nil, firstErr
		}
		return &jsast.VariableDeclaration{Kind: kind, Declarators: decls}, nil

	case "ExprStmt":
		e, err := d.expr(r.Get("expr"))
		if err != nil {
			return nil, err
		}
		return &jsast.ExpressionStatement{Expr: e}, nil

	case "FuncDecl":
		fn, err := d.function(r.Get("function"))
		if err != nil {
			return nil, err
		}
		return &jsast.FunctionDeclaration{Function: fn}, nil

	case "ClassDecl":
		cl, err := d.class(r.Get("class"))
		if err != nil {
			return nil, err
		}
		return &jsast.ClassDeclaration{Class: cl}, nil

	case "If":
		test, err := d.expr(r.Get("test"))
		if err != nil {
			return nil, err
		}
		cons, err := d.stmt(r.Get("consequent"))
		if err != nil {
			return nil, err
		}
		var alt jsast.Statement
		if av := r.Get("alternate"); av.Exists() {
			alt, err = d.stmt(av)
			if err != nil {
				return nil, err
			}
		}
		return &jsast.IfStatement{Test: test, Consequent: cons, Alternate: alt}, nil

	case "While":
		test, err := d.expr(r.Get("test"))
		if err != nil {
			return nil, err
		}
		body, err := d.stmt(r.Get("body"))
		if err != nil {
			return nil, err
		}
		return &jsast.WhileStatement{Test: test, Body: body}, nil

	case "DoWhile":
		test, err := d.expr(r.Get("test"))
		if err != nil {
			return nil, err
		}
		body, err := d.stmt(r.Get("body"))
		if err != nil {
			return nil, err
		}
		return &jsast.DoWhileStatement{Test: test, Body: body}, nil

	case "For":
		var init jsast.Statement
		var err error
		if iv := r.Get("init"); iv.Exists() {
			init, err = d.stmt(iv)
			if err != nil {
				return nil, err
			}
		}
		var test, update jsast.Expression
		if tv := r.Get("test"); tv.Exists() {
			if test, err = d.expr(tv); err != nil {
				return nil, err
			}
		}
		if uv := r.Get("update"); uv.Exists() {
			if update, err = d.expr(uv); err != nil {
				return nil, err
			}
		}
		body, err := d.stmt(r.Get("body"))
		if err != nil {
			return nil, err
		}
		return &jsast.ForStatement{Init: init, Test: test, Update: update, Body: body}, nil

	case "ForIn", "ForOf":
		left, err := d.forLeft(r.Get("left"))
		if err != nil {
			return nil, err
		}
		right, err := d.expr(r.Get("right"))
		if err != nil {
			return nil, err
		}
		body, err := d.stmt(r.Get("body"))
		if err != nil {
			return nil, err
		}
		if r.Get("kind").String() == "ForIn" {
			return &jsast.ForInStatement{Left: left, Right: right, Body: body}, nil
		}
		return &jsast.ForOfStatement{Left: left, Right: right, Body: body, Await: r.Get("await").Bool()}, nil

	case "Switch":
		disc, err := d.expr(r.Get("discriminant"))
		if err != nil {
			return nil, err
		}
		var cases []*jsast.SwitchCase
		var firstErr error
		r.Get("cases").ForEach(func(_, v gjson.Result) bool {
			var test jsast.Expression
			if tv := v.Get("test"); tv.Exists() {
				test, firstErr = d.expr(tv)
				if firstErr != nil {
					return false
				}
			}
			cons, err := d.stmtList(v.Get("consequents"))
			if err != nil {
				firstErr = err
				return false
			}
			cases = append(cases, &jsast.SwitchCase{Test: test, Consequents: cons})
			return true
		})
		if firstErr != nil {
			return nil, firstErr
		}
		return &jsast.SwitchStatement{Discriminant: disc, Cases: cases}, nil

	case "Break":
		return &jsast.BreakStatement{Label: d.sym(r.Get("label")), HasLabel: r.Get("hasLabel").Bool()}, nil

	case "Continue":
		return &jsast.ContinueStatement{Label: d.sym(r.Get("label")), HasLabel: r.Get("hasLabel").Bool()}, nil

	case "Return":
		var arg jsast.Expression
		if av := r.Get("argument"); av.Exists() {
			var err error
			if arg, err = d.expr(av); err != nil {
				return nil, err
			}
		}
		return &jsast.ReturnStatement{Argument: arg}, nil

	case "Throw":
		arg, err := d.expr(r.Get("argument"))
		if err != nil {
			return nil, err
		}
		return &jsast.ThrowStatement{Argument: arg}, nil

	case "Try":
		blockStmt, err := d.stmt(r.Get("block"))
		if err != nil {
			return nil, err
		}
		block := blockStmt.(*jsast.BlockStatement)
		var handler *jsast.CatchClause
		if hv := r.Get("handler"); hv.Exists() {
			var param jsast.Pattern
			if pv := hv.Get("param"); pv.Exists() {
				if param, err = d.pattern(pv); err != nil {
					return nil, err
				}
			}
			bodyStmt, err := d.stmt(hv.Get("body"))
			if err != nil {
				return nil, err
			}
			handler = &jsast.CatchClause{Param: param, Body: bodyStmt.(*jsast.BlockStatement)}
		}
		var finalizer *jsast.BlockStatement
		if fv := r.Get("finalizer"); fv.Exists() {
			fs, err := d.stmt(fv)
			if err != nil {
				return nil, err
			}
			finalizer = fs.(*jsast.BlockStatement)
		}
		return &jsast.TryStatement{Block: block, Handler: handler, Finalizer: finalizer}, nil

	case "Labeled":
		body, err := d.stmt(r.Get("body"))
		if err != nil {
			return nil, err
		}
		return &jsast.LabeledStatement{Label: d.sym(r.Get("label")), Body: body}, nil

	case "Empty":
		return &jsast.EmptyStatement{}, nil

	default:
		return nil, fmt.Errorf("astio: unrecognized statement kind %q", r.Get("kind").String())
	}
}

// forLeft decodes a for-in/for-of Left, which is either a single-
// declarator VariableDeclaration ("kind":"VarDecl") or a plain
// assignment-target expression/pattern.
func (d *decoder) forLeft(r gjson.Result) (jsast.Node, error) {
	if r.Get("kind").String() == "VarDecl" {
		return d.stmt(r)
	}
	return d.expr(r)
}

func (d *decoder) function(r gjson.Result) (*jsast.FunctionLiteral, error) {
	var id *jsast.Identifier
	if iv := r.Get("id"); iv.Exists() {
		id = &jsast.Identifier{Name: d.sym(iv.Get("name"))}
	}
	var params []jsast.Pattern
	var firstErr error
	r.Get("params").ForEach(func(_, v gjson.Result) bool {
		p, err := d.pattern(v)
		if err != nil {
			firstErr = err
			return false
		}
		params = append(params, p)
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}
	var body jsast.Node
	if r.Get("arrow").Bool() && r.Get("body").Get("kind").String() != "Block" {
		e, err := d.expr(r.Get("body"))
		if err != nil {
			return nil, err
		}
		body = e
	} else {
		s, err := d.stmt(r.Get("body"))
		if err != nil {
			return nil, err
		}
		body = s
	}
	return &jsast.FunctionLiteral{
		ID:        id,
		Params:    params,
		Body:      body,
		Arrow:     r.Get("arrow").Bool(),
		Async:     r.Get("async").Bool(),
		Generator: r.Get("generator").Bool(),
		Strict:    r.Get("strict").Bool(),
	}, nil
}

func (d *decoder) class(r gjson.Result) (*jsast.ClassLiteral, error) {
	var id *jsast.Identifier
	if iv := r.Get("id"); iv.Exists() {
		id = &jsast.Identifier{Name: d.sym(iv.Get("name"))}
	}
	var super jsast.Expression
	if sv := r.Get("superClass"); sv.Exists() {
		var err error
		if super, err = d.expr(sv); err != nil {
			return nil, err
		}
	}
	var members []*jsast.ClassMember
	var firstErr error
	r.Get("body").ForEach(func(_, v gjson.Result) bool {
		m, err := d.classMember(v)
		if err != nil {
			firstErr = err
			return false
		}
		members = append(members, m)
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return &jsast.ClassLiteral{ID: id, SuperClass: super, Body: members}, nil
}

func (d *decoder) classMember(r gjson.Result) (*jsast.ClassMember, error) {
	m := &jsast.ClassMember{
		Kind:     jsast.ClassMemberKind(r.Get("memberKind").Int()),
		Computed: r.Get("computed").Bool(),
		Static:   r.Get("static").Bool(),
		Private:  r.Get("private").Bool(),
	}
	if kv := r.Get("key"); kv.Exists() {
		key, err := d.expr(kv)
		if err != nil {
			return nil, err
		}
		m.Key = key
	}
	if fv := r.Get("function"); fv.Exists() {
		fn, err := d.function(fv)
		if err != nil {
			return nil, err
		}
		m.Function = fn
	}
	if fi := r.Get("fieldInit"); fi.Exists() {
		e, err := d.expr(fi)
		if err != nil {
			return nil, err
		}
		m.FieldInit = e
	}
	if sb := r.Get("staticBlockBody"); sb.Exists() {
		s, err := d.stmt(sb)
		if err != nil {
			return nil, err
		}
		m.StaticBlockBody = s.(*jsast.BlockStatement)
	}
	return m, nil
}

func (d *decoder) pattern(r gjson.Result) (jsast.Pattern, error) {
	switch r.Get("kind").String() {
	case "Ident":
		return &jsast.Identifier{Name: d.sym(r.Get("name"))}, nil
	case "ArrayPattern":
		var elems []jsast.Pattern
		var firstErr error
		r.Get("elements").ForEach(func(_, v gjson.Result) bool {
			if !v.Exists() || v.Type == gjson.Null {
				elems = append(elems, nil)
				return true
			}
			p, err := d.pattern(v)
			if err != nil {
				firstErr = err
				return false
			}
			elems = append(elems, p)
			return true
		})
		if firstErr != nil {
			return nil, firstErr
		}
		return &jsast.ArrayPattern{Elements: elems}, nil
	case "ObjectPattern":
		var props []*jsast.ObjectPatternProperty
		var firstErr error
		r.Get("properties").ForEach(func(_, v gjson.Result) bool {
			key, err := d.expr(v.Get("key"))
			if err != nil {
				firstErr = err
				return false
			}
			val, err := d.pattern(v.Get("value"))
			if err != nil {
				firstErr = err
				return false
			}
			props = append(props, &jsast.ObjectPatternProperty{Key: key, Computed: v.Get("computed").Bool(), Value: val})
			return true
		})
		if firstErr != nil {
			return nil, firstErr
		}
		var rest jsast.Pattern
		if rv := r.Get("rest"); rv.Exists() {
			var err error
			if rest, err = d.pattern(rv); err != nil {
				return nil, err
			}
		}
		return &jsast.ObjectPattern{Properties: props, Rest: rest}, nil
	case "AssignPattern":
		target, err := d.pattern(r.Get("target"))
		if err != nil {
			return nil, err
		}
		def, err := d.expr(r.Get("default"))
		if err != nil {
			return nil, err
		}
		return &jsast.AssignmentPattern{Target: target, Default: def}, nil
	case "RestElement":
		arg, err := d.pattern(r.Get("argument"))
		if err != nil {
			return nil, err
		}
		return &jsast.RestElement{Argument: arg}, nil
	default:
		return nil, fmt.Errorf("astio: unrecognized pattern kind %q", r.Get("kind").String())
	}
}

// expr decodes the expression kinds exercised by spec.md §8's scenarios
// (optional chaining, generator delegation, await, destructuring
// defaults/rest) and common surrounding syntax.
func (d *decoder) expr(r gjson.Result) (jsast.Expression, error) {
	switch r.Get("kind").String() {
	case "Ident":
		return &jsast.Identifier{Name: d.sym(r.Get("name"))}, nil
	case "PrivateIdent":
		return &jsast.PrivateIdentifier{Name: d.sym(r.Get("name"))}, nil
	case "Literal":
		return d.literal(r)
	case "Template":
		return d.template(r)
	case "TaggedTemplate":
		tag, err := d.expr(r.Get("tag"))
		if err != nil {
			return nil, err
		}
		quasi, err := d.template(r.Get("quasi"))
		if err != nil {
			return nil, err
		}
		return &jsast.TaggedTemplateExpression{Tag: tag, Quasi: quasi.(*jsast.TemplateLiteral)}, nil
	case "Array":
		elems, err := d.exprList(r.Get("elements"))
		if err != nil {
			return nil, err
		}
		return &jsast.ArrayExpression{Elements: elems}, nil
	case "Object":
		var props []*jsast.ObjectProperty
		var firstErr error
		r.Get("properties").ForEach(func(_, v gjson.Result) bool {
			p := &jsast.ObjectProperty{
				Kind:      jsast.PropertyKind(v.Get("propKind").Int()),
				Computed:  v.Get("computed").Bool(),
				Shorthand: v.Get("shorthand").Bool(),
			}
			if kv := v.Get("key"); kv.Exists() {
				key, err := d.expr(kv)
				if err != nil {
					firstErr = err
					return false
				}
				p.Key = key
			}
			val, err := d.expr(v.Get("value"))
			if err != nil {
				firstErr = err
				return false
			}
			p.Value = val
			props = append(props, p)
			return true
		})
		if firstErr != nil {
			return nil, firstErr
		}
		return &jsast.ObjectExpression{Properties: props}, nil
	case "Spread":
		arg, err := d.expr(r.Get("argument"))
		if err != nil {
			return nil, err
		}
		return &jsast.SpreadElement{Argument: arg}, nil
	case "Function":
		return d.function(r)
	case "Class":
		return d.class(r)
	case "Unary":
		arg, err := d.expr(r.Get("argument"))
		if err != nil {
			return nil, err
		}
		return &jsast.UnaryExpression{Op: r.Get("op").String(), Argument: arg}, nil
	case "Update":
		arg, err := d.expr(r.Get("argument"))
		if err != nil {
			return nil, err
		}
		return &jsast.UpdateExpression{Op: r.Get("op").String(), Argument: arg, Prefix: r.Get("prefix").Bool()}, nil
	case "Binary":
		left, err := d.expr(r.Get("left"))
		if err != nil {
			return nil, err
		}
		right, err := d.expr(r.Get("right"))
		if err != nil {
			return nil, err
		}
		return &jsast.BinaryExpression{Op: r.Get("op").String(), Left: left, Right: right}, nil
	case "Logical":
		left, err := d.expr(r.Get("left"))
		if err != nil {
			return nil, err
		}
		right, err := d.expr(r.Get("right"))
		if err != nil {
			return nil, err
		}
		return &jsast.LogicalExpression{Op: r.Get("op").String(), Left: left, Right: right}, nil
	case "Assign":
		var target jsast.Node
		var err error
		if tv := r.Get("target"); tv.Get("kind").String() == "ArrayPattern" || tv.Get("kind").String() == "ObjectPattern" {
			target, err = d.pattern(tv)
		} else {
			target, err = d.expr(tv)
		}
		if err != nil {
			return nil, err
		}
		val, err := d.expr(r.Get("value"))
		if err != nil {
			return nil, err
		}
		return &jsast.AssignmentExpression{Op: r.Get("op").String(), Target: target, Value: val}, nil
	case "Conditional":
		test, err := d.expr(r.Get("test"))
		if err != nil {
			return nil, err
		}
		cons, err := d.expr(r.Get("consequent"))
		if err != nil {
			return nil, err
		}
		alt, err := d.expr(r.Get("alternate"))
		if err != nil {
			return nil, err
		}
		return &jsast.ConditionalExpression{Test: test, Consequent: cons, Alternate: alt}, nil
	case "Call":
		callee, err := d.expr(r.Get("callee"))
		if err != nil {
			return nil, err
		}
		args, err := d.exprList(r.Get("arguments"))
		if err != nil {
			return nil, err
		}
		return &jsast.CallExpression{Callee: callee, Arguments: args, Optional: r.Get("optional").Bool()}, nil
	case "New":
		callee, err := d.expr(r.Get("callee"))
		if err != nil {
			return nil, err
		}
		args, err := d.exprList(r.Get("arguments"))
		if err != nil {
			return nil, err
		}
		return &jsast.NewExpression{Callee: callee, Arguments: args}, nil
	case "Member":
		obj, err := d.expr(r.Get("object"))
		if err != nil {
			return nil, err
		}
		prop, err := d.expr(r.Get("property"))
		if err != nil {
			return nil, err
		}
		return &jsast.MemberExpression{Object: obj, Property: prop, Computed: r.Get("computed").Bool(), Optional: r.Get("optional").Bool()}, nil
	case "Sequence":
		exprs, err := d.exprList(r.Get("expressions"))
		if err != nil {
			return nil, err
		}
		return &jsast.SequenceExpression{Expressions: exprs}, nil
	case "This":
		return &jsast.ThisExpression{}, nil
	case "Super":
		return &jsast.SuperExpression{}, nil
	case "NewTarget":
		return &jsast.NewTargetExpression{}, nil
	case "Yield":
		var arg jsast.Expression
		if av := r.Get("argument"); av.Exists() {
			var err error
			if arg, err = d.expr(av); err != nil {
				return nil, err
			}
		}
		return &jsast.YieldExpression{Argument: arg, Delegate: r.Get("delegate").Bool()}, nil
	case "Await":
		arg, err := d.expr(r.Get("argument"))
		if err != nil {
			return nil, err
		}
		return &jsast.AwaitExpression{Argument: arg}, nil
	default:
		return nil, fmt.Errorf("astio: unrecognized expression kind %q", r.Get("kind").String())
	}
}

func (d *decoder) literal(r gjson.Result) (*jsast.Literal, error) {
	kind := jsast.LiteralKind(r.Get("litKind").Int())
	lit := &jsast.Literal{Kind: kind, Raw: r.Get("raw").String()}
	switch kind {
	case jsast.LitBoolean:
		lit.Value = r.Get("value").Bool()
	case jsast.LitNumber:
		lit.Value = r.Get("value").Float()
	case jsast.LitString, jsast.LitBigInt:
		lit.Value = r.Get("value").String()
	case jsast.LitRegExp:
		lit.Value = &jsast.RegExpLiteral{Pattern: r.Get("value.pattern").String(), Flags: r.Get("value.flags").String()}
	}
	return lit, nil
}

func (d *decoder) template(r gjson.Result) (jsast.Expression, error) {
	var quasis []jsast.TemplateElement
	r.Get("quasis").ForEach(func(_, v gjson.Result) bool {
		quasis = append(quasis, jsast.TemplateElement{Cooked: v.Get("cooked").String(), Raw: v.Get("raw").String(), Tail: v.Get("tail").Bool()})
		return true
	})
	exprs, err := d.exprList(r.Get("expressions"))
	if err != nil {
		return nil, err
	}
	return &jsast.TemplateLiteral{Quasis: quasis, Expressions: exprs}, nil
}
