package evaluator

import (
	"github.com/solarframe/ecmawalk/internal/class"
	"github.com/solarframe/ecmawalk/internal/environment"
	"github.com/solarframe/ecmawalk/internal/errorsx"
	"github.com/solarframe/ecmawalk/internal/jsast"
	"github.com/solarframe/ecmawalk/internal/values"
)

// ClassConstructor is the runtime callable value a class declaration/
// expression evaluates to (spec.md §4.7). It is not itself callable
// without `new` — Invoke always raises a TypeError, matching
// ECMA-262's "a class constructor cannot be invoked without 'new'".
//
// Grounded on class.go's ClassValue wrapping a *ClassInfo, generalized
// from DWScript's single base-or-derived Pascal class construction path
// into ECMA-262's two-phase derived-constructor protocol (this package's
// construct/superConstructCall pair, below).
type ClassConstructor struct {
	Info        *class.Info
	Eval        *Evaluator
	CtorLiteral *jsast.FunctionLiteral // nil: use the default (possibly super-forwarding) constructor
	Closure     *environment.Frame     // the class body's own scope
	SuperCtor   *ClassConstructor      // nil for a base class
}

func (*ClassConstructor) Type() string { return "function" }
func (c *ClassConstructor) String() string { return "class " + c.Info.Name + " { }" }

// Invoke implements values.Callable; a class constructor called without
// `new` is always a TypeError (spec.md §4.7).
func (c *ClassConstructor) Invoke(args []values.Value, this values.Value) (values.Value, error) {
	return nil, errorsx.New(errorsx.CategoryType, "Class constructor %s cannot be invoked without 'new'", c.Info.Name)
}

// Construct allocates the instance (carrying brands for the whole
// ancestor chain up front, per class.NewInstance) and runs the
// base-to-derived constructor chain over it.
func (c *ClassConstructor) Construct(args []values.Value, newTarget values.Value) (values.Value, error) {
	e := c.Eval
	inst := class.NewInstance(c.Info)

	savedThis, savedInit, savedNewTarget := e.Ctx.ThisValue, e.Ctx.ThisInitialized, e.Ctx.NewTarget
	defer func() {
		e.Ctx.ThisValue, e.Ctx.ThisInitialized, e.Ctx.NewTarget = savedThis, savedInit, savedNewTarget
	}()
	e.Ctx.NewTarget = newTarget

	if err := e.runConstructorChain(c, inst, args, newTarget); err != nil {
		return nil, err
	}
	return inst, nil
}

// pendingConstruction is one entry of the evaluator's super()-call
// stack: which derived class is mid-construction, against which
// instance, under which original newTarget.
type pendingConstruction struct {
	Class     *ClassConstructor
	Inst      *class.Instance
	NewTarget values.Value
}

// runConstructorChain runs c's own constructor logic against the
// already-allocated inst (spec.md §4.7 "derived constructors"). A base
// class runs its field initializers then its constructor body with
// `this` bound immediately. A derived class defers `this` until its
// (explicit or default) `super(...)` call resolves.
func (e *Evaluator) runConstructorChain(c *ClassConstructor, inst *class.Instance, args []values.Value, newTarget values.Value) error {
	if !c.Info.IsDerived() {
		if err := class.RunFieldInitializers(inst.Object, inst, c.Info.InstanceFields); err != nil {
			return err
		}
		if c.CtorLiteral == nil {
			return nil
		}
		fn := &Function{Literal: c.CtorLiteral, Closure: c.Closure, Eval: e, Name: c.Info.Name, HomeObject: c.Info.Prototype}
		_, err := e.callFunction(fn, args, inst, newTarget, true)
		return err
	}

	e.ctorStack = append(e.ctorStack, &pendingConstruction{Class: c, Inst: inst, NewTarget: newTarget})
	defer func() { e.ctorStack = e.ctorStack[:len(e.ctorStack)-1] }()

	if c.CtorLiteral == nil {
		// The default derived constructor is `constructor(...args) { super(...args); }`.
		return e.superConstructCall(args)
	}

	fn := &Function{Literal: c.CtorLiteral, Closure: c.Closure, Eval: e, Name: c.Info.Name, HomeObject: c.Info.Prototype}
	savedThis, savedInit := e.Ctx.ThisValue, e.Ctx.ThisInitialized
	e.Ctx.ThisValue = nil
	e.Ctx.ThisInitialized = false
	_, err := e.callFunction(fn, args, nil, newTarget, false)
	e.Ctx.ThisValue, e.Ctx.ThisInitialized = savedThis, savedInit
	return err
}

// superConstructCall implements a `super(...)` call site: it runs the
// immediate superclass's own constructor chain against the same
// instance the derived constructor was given, then — once that
// returns — makes `this` available and runs the derived class's own
// field initializers (spec.md §4.7: "field initializers run
// immediately after `super()` returns, before the rest of the
// constructor body").
func (e *Evaluator) superConstructCall(args []values.Value) error {
	if len(e.ctorStack) == 0 {
		return errorsx.New(errorsx.CategoryType, "'super' keyword is only valid inside a derived class constructor")
	}
	pending := e.ctorStack[len(e.ctorStack)-1]
	superCtor := pending.Class.SuperCtor
	if superCtor == nil {
		return errorsx.New(errorsx.CategoryType, "no superclass to construct")
	}
	if err := e.runConstructorChain(superCtor, pending.Inst, args, pending.NewTarget); err != nil {
		return err
	}
	e.Ctx.ThisValue = pending.Inst
	e.Ctx.ThisInitialized = true
	return class.RunFieldInitializers(pending.Inst.Object, pending.Inst, pending.Class.Info.InstanceFields)
}

// buildClass evaluates a class declaration/expression: resolves the
// superclass, builds the prototype/static-object pair, installs every
// method/getter/setter/field/private-member/static-block, and returns
// the runtime ClassConstructor value (spec.md §4.7).
func (e *Evaluator) buildClass(lit *jsast.ClassLiteral) (*class.Info, values.Value, error) {
	var superInfo *class.Info
	var superCtor *ClassConstructor
	if lit.SuperClass != nil {
		superVal, err := e.evalExpr(lit.SuperClass)
		if err != nil {
			return nil, nil, err
		}
		sc, ok := superVal.(*ClassConstructor)
		if !ok {
			return nil, nil, errorsx.New(errorsx.CategoryType, "Class extends value is not a constructor")
		}
		superCtor = sc
		superInfo = sc.Info
	}

	proto := values.NewObject(e.Realm.ObjectProto)
	staticObj := values.NewObject(e.Realm.FunctionProto)
	if superInfo != nil {
		proto.Proto = superInfo.Prototype
		staticObj.Proto = superInfo.StaticObj
	}

	name := ""
	if lit.ID != nil {
		name = e.Realm.Names.Name(lit.ID.Name)
	}
	info := class.NewInfo(name, superInfo, proto, staticObj)
	ctor := &ClassConstructor{Info: info, Eval: e, SuperCtor: superCtor}

	classScope := environment.NewEnclosedFrame(environment.FrameClass, e.Ctx.Scope)
	ctor.Closure = classScope
	if lit.ID != nil {
		classScope.Define(lit.ID.Name, nil, true, true, false, false, e.Realm.Names)
		classScope.Initialize(lit.ID.Name, ctor)
	}

	savedScope := e.Ctx.Scope
	e.Ctx.Scope = classScope
	e.Ctx.PushPrivateScope(name)
	defer func() {
		e.Ctx.Scope = savedScope
		e.Ctx.PopPrivateScope()
	}()

	var staticBlocks []*jsast.ClassMember
	for _, m := range lit.Body {
		if m.Kind == jsast.MemberStaticBlock {
			staticBlocks = append(staticBlocks, m)
			continue
		}
		if m.Private {
			pid := m.Key.(*jsast.PrivateIdentifier)
			e.Ctx.PrivateNameScopeStack[len(e.Ctx.PrivateNameScopeStack)-1].Names[pid.Name] = true
			e.privateOwners[pid.Name] = info
		}
		if err := e.installClassMember(info, proto, staticObj, classScope, m); err != nil {
			return nil, nil, err
		}
	}

	if ctorMember := e.findConstructor(lit.Body); ctorMember != nil {
		ctor.CtorLiteral = ctorMember.Function
	}

	if err := class.RunFieldInitializers(staticObj, nil, info.StaticFields); err != nil {
		return nil, nil, err
	}
	for _, block := range staticBlocks {
		saved := e.Ctx.Scope
		savedThis, savedInit, savedHome := e.Ctx.ThisValue, e.Ctx.ThisInitialized, e.Ctx.HomeObject
		e.Ctx.Scope = environment.NewEnclosedFrame(environment.FrameBlock, classScope)
		e.Ctx.ThisValue, e.Ctx.ThisInitialized, e.Ctx.HomeObject = staticObj, true, staticObj
		_, err := e.execStatements(block.StaticBlockBody.Body)
		e.Ctx.Scope = saved
		e.Ctx.ThisValue, e.Ctx.ThisInitialized, e.Ctx.HomeObject = savedThis, savedInit, savedHome
		if err != nil {
			return nil, nil, err
		}
	}

	return info, ctor, nil
}

func (e *Evaluator) findConstructor(body []*jsast.ClassMember) *jsast.ClassMember {
	for _, m := range body {
		if m.Kind == jsast.MemberMethod && !m.Private && !m.Static && !m.Computed {
			if id, ok := m.Key.(*jsast.Identifier); ok && e.Realm.Names.Name(id.Name) == "constructor" {
				return m
			}
		}
	}
	return nil
}

func (e *Evaluator) installClassMember(info *class.Info, proto, staticObj *values.Object, classScope *environment.Frame, m *jsast.ClassMember) error {
	target := proto
	homeTarget := proto
	if m.Static {
		target = staticObj
		homeTarget = staticObj
	}

	switch m.Kind {
	case jsast.MemberField:
		initExpr := m.FieldInit
		fieldScope := environment.NewEnclosedFrame(environment.FrameBlock, classScope)
		initFn := func() (values.Value, error) {
			if initExpr == nil {
				return values.Undefined, nil
			}
			savedScope, savedHome := e.Ctx.Scope, e.Ctx.HomeObject
			e.Ctx.Scope = fieldScope
			e.Ctx.HomeObject = homeTarget
			defer func() { e.Ctx.Scope, e.Ctx.HomeObject = savedScope, savedHome }()
			return e.evalExpr(initExpr)
		}
		if m.Private {
			pid := m.Key.(*jsast.PrivateIdentifier)
			info.PrivateFieldKeys[pid.Name] = true
			field := class.FieldInitializer{Private: true, PrivateName: pid.Name, Init: initFn}
			if m.Static {
				info.StaticFields = append(info.StaticFields, field)
			} else {
				info.InstanceFields = append(info.InstanceFields, field)
			}
			return nil
		}
		key, err := e.resolveMemberKey(m)
		if err != nil {
			return err
		}
		field := class.FieldInitializer{Key: key, Init: initFn}
		if m.Static {
			info.StaticFields = append(info.StaticFields, field)
		} else {
			info.InstanceFields = append(info.InstanceFields, field)
		}
		return nil

	case jsast.MemberMethod:
		if !m.Private && !m.Static && !m.Computed {
			if id, ok := m.Key.(*jsast.Identifier); ok && e.Realm.Names.Name(id.Name) == "constructor" {
				return nil // handled separately via findConstructor
			}
		}
		fn := e.makeFunction(m.Function, classScope, methodDisplayName(e, m))
		fn.HomeObject = homeTarget
		if m.Private {
			pid := m.Key.(*jsast.PrivateIdentifier)
			info.DefinePrivateMethod(pid.Name, class.MethodPlain, fn)
			return nil
		}
		key, err := e.resolveMemberKey(m)
		if err != nil {
			return err
		}
		target.DefineOwnProperty(key, &values.PropertyDescriptor{Value: fn, Writable: true, Enumerable: false, Configurable: true})
		return nil

	case jsast.MemberGetter, jsast.MemberSetter:
		fn := e.makeFunction(m.Function, classScope, methodDisplayName(e, m))
		fn.HomeObject = homeTarget
		kind := class.MethodGetter
		if m.Kind == jsast.MemberSetter {
			kind = class.MethodSetter
		}
		if m.Private {
			pid := m.Key.(*jsast.PrivateIdentifier)
			info.DefinePrivateMethod(pid.Name, kind, fn)
			return nil
		}
		key, err := e.resolveMemberKey(m)
		if err != nil {
			return err
		}
		desc, existing := target.GetOwnProperty(key)
		if !existing || !desc.IsAccessor() {
			desc = &values.PropertyDescriptor{Enumerable: false, Configurable: true}
		}
		if kind == class.MethodGetter {
			desc.Get = fn
		} else {
			desc.Set = fn
		}
		target.DefineOwnProperty(key, desc)
		return nil
	}
	return nil
}

func (e *Evaluator) resolveMemberKey(m *jsast.ClassMember) (values.PropertyKey, error) {
	if id, ok := m.Key.(*jsast.Identifier); ok && !m.Computed {
		return values.StringKey(e.Realm.Names.Name(id.Name)), nil
	}
	kv, err := e.evalExpr(m.Key)
	if err != nil {
		return values.PropertyKey{}, err
	}
	return values.ToPropertyKey(kv), nil
}

func methodDisplayName(e *Evaluator, m *jsast.ClassMember) string {
	if id, ok := m.Key.(*jsast.Identifier); ok && !m.Computed {
		return e.Realm.Names.Name(id.Name)
	}
	if pid, ok := m.Key.(*jsast.PrivateIdentifier); ok {
		return "#" + e.Realm.Names.Name(pid.Name)
	}
	return ""
}
