// Package class implements the class runtime: constructor protocol
// (base vs. derived), the home-object/super binding, field
// initializers, and private-name brands (spec.md §4.7).
//
// Grounded on internal/interp/class.go's ClassInfo/ObjectInstance/
// ClassValue parent-chain lookup pattern (method/property/constant/
// operator resolution walking a Super pointer); adapted from
// DWScript's single-inheritance Pascal class model (no private names,
// no field initializers, constructors always fully allocate `this`) to
// ECMA-262's derived-constructor `this`-TDZ protocol and `#name`
// private brands, which have no DWScript analog.
package class

import (
	"github.com/solarframe/ecmawalk/internal/errorsx"
	"github.com/solarframe/ecmawalk/internal/symbols"
	"github.com/solarframe/ecmawalk/internal/values"
)

// Brand is a unique identity token minted once per class declaration,
// used to recognize "this instance was constructed by (a subclass of)
// this class" for private-name access checks (spec.md §4.7 "a private
// name access on a value lacking the brand is a TypeError").
type Brand struct{ ClassName string }

// FieldInitializer describes one instance or static field declared in
// a class body (spec.md §4.7 "instance field initializers run during
// construction, in declaration order"). Init is supplied by the
// evaluator, already closed over the class's scope and the field's
// initializer expression; a nil Init means the field has no
// initializer and is set to undefined.
//
// Key names a public field (string or computed Symbol key);
// PrivateName names a `#field` and is only meaningful when Private is
// true — private names are always static identifiers (interned via
// internal/symbols), never computed, unlike public keys.
type FieldInitializer struct {
	Key         values.PropertyKey
	Private     bool
	PrivateName symbols.Symbol
	Init        func() (values.Value, error)
}

// Method is a named method/getter/setter bound to a class, carrying
// enough to install it on a prototype or private-method table and to
// resolve `super` lookups from within it (spec.md §4.7 "home object").
type Method struct {
	Key         values.PropertyKey // meaningful when !Private
	Private     bool
	PrivateName symbols.Symbol // meaningful when Private
	Kind        MethodKind
	Fn          values.Callable
}

// MethodKind distinguishes plain methods from accessors.
type MethodKind int

const (
	MethodPlain MethodKind = iota
	MethodGetter
	MethodSetter
)

// Info is the runtime descriptor for one class declaration/expression.
//
// Grounded on class.go's ClassInfo (Name, Super *ClassInfo, methods,
// fields) walking a parent chain for method/property/constant lookup;
// PrivateInstanceNames/PrivateStaticNames/Brand have no DWScript
// analog and were added fresh for ECMA-262 private names.
type Info struct {
	Name        string
	Super       *Info // nil for a base class
	Constructor values.Constructible
	Prototype   *values.Object // instance methods/accessors live here
	StaticObj   *values.Object // the class value itself: static methods/fields

	InstanceFields []FieldInitializer
	StaticFields   []FieldInitializer

	// privateMethods/privateAccessors are shared across every instance
	// (unlike private fields, which are per-instance storage) since a
	// private method is one function object per class, not per object.
	privateMethods   map[symbols.Symbol]values.Value
	privateGetters   map[symbols.Symbol]values.Value
	privateSetters   map[symbols.Symbol]values.Value
	PrivateFieldKeys map[symbols.Symbol]bool // instance private field names this class declares

	Brand *Brand
}

// NewInfo creates a class descriptor with a freshly minted brand.
func NewInfo(name string, super *Info, proto, staticObj *values.Object) *Info {
	return &Info{
		Name:             name,
		Super:            super,
		Prototype:        proto,
		StaticObj:        staticObj,
		privateMethods:   make(map[symbols.Symbol]values.Value),
		privateGetters:   make(map[symbols.Symbol]values.Value),
		privateSetters:   make(map[symbols.Symbol]values.Value),
		PrivateFieldKeys: make(map[symbols.Symbol]bool),
		Brand:            &Brand{ClassName: name},
	}
}

// IsDerived reports whether this class extends another (spec.md §4.7
// "derived constructors" vs. base constructors).
func (info *Info) IsDerived() bool { return info.Super != nil }

// DefinePrivateMethod registers a private method/getter/setter shared
// by every instance of this class.
func (info *Info) DefinePrivateMethod(name symbols.Symbol, kind MethodKind, fn values.Value) {
	switch kind {
	case MethodGetter:
		info.privateGetters[name] = fn
	case MethodSetter:
		info.privateSetters[name] = fn
	default:
		info.privateMethods[name] = fn
	}
}

// LookupPrivateMethod resolves a private method/getter by name,
// searching this class only (private names are not inherited the way
// public prototype methods are — spec.md §4.7: "a private name is
// resolved against the nearest enclosing class that declares it").
func (info *Info) LookupPrivateMethod(name symbols.Symbol) (values.Value, bool) {
	v, ok := info.privateMethods[name]
	return v, ok
}

// LookupPrivateGetter/LookupPrivateSetter resolve private accessors.
func (info *Info) LookupPrivateGetter(name symbols.Symbol) (values.Value, bool) {
	v, ok := info.privateGetters[name]
	return v, ok
}

func (info *Info) LookupPrivateSetter(name symbols.Symbol) (values.Value, bool) {
	v, ok := info.privateSetters[name]
	return v, ok
}

// LookupMethod walks the prototype's own chain (via Object.Get's
// ordinary semantics, since instance methods live as descriptors on
// Prototype) — provided for symmetry/documentation; callers normally
// just call Prototype.Get directly.
func (info *Info) LookupMethod(key values.PropertyKey, receiver values.Value, invoke func(values.Value, values.Value, []values.Value) (values.Value, error)) (values.Value, error) {
	return info.Prototype.Get(key, receiver, invoke)
}

// SuperPrototype returns the prototype to resolve `super.x` lookups
// against from within one of this class's own methods (spec.md §4.7
// "Super": "property lookups on `super` start at the home object's
// [[Prototype]]").
func (info *Info) SuperPrototype() *values.Object {
	if info.Super == nil {
		return nil
	}
	return info.Super.Prototype
}

// Instance is an ordinary object augmented with per-instance private
// field storage. Public fields are plain own-properties on the
// embedded *values.Object; only `#name` fields need the extra map,
// since they must stay inaccessible to [[Get]]/[[OwnPropertyKeys]].
type Instance struct {
	*values.Object
	Class *Info

	brands        map[*Brand]bool
	privateFields map[symbols.Symbol]values.Value
}

// NewInstance allocates an instance object whose [[Prototype]] is
// info.Prototype, carrying the brand for info and (transitively)
// every ancestor class, so private-name access and `#x in obj` checks
// succeed for fields/methods declared anywhere up the chain.
func NewInstance(info *Info) *Instance {
	obj := values.NewObject(info.Prototype)
	inst := &Instance{
		Object:        obj,
		Class:         info,
		brands:        make(map[*Brand]bool),
		privateFields: make(map[symbols.Symbol]values.Value),
	}
	for cur := info; cur != nil; cur = cur.Super {
		inst.brands[cur.Brand] = true
	}
	return inst
}

// HasBrand reports whether this instance was constructed by (a
// subclass of) the class owning brand — the check behind both private
// member access and the `#name in obj` ergonomic brand test (spec.md
// §4.7).
func (inst *Instance) HasBrand(b *Brand) bool { return inst.brands[b] }

// GetPrivateField/SetPrivateField access per-instance `#field` storage.
// The caller (the evaluator) is responsible for checking HasBrand
// first and raising a TypeError otherwise.
func (inst *Instance) GetPrivateField(name symbols.Symbol) (values.Value, bool) {
	v, ok := inst.privateFields[name]
	return v, ok
}

func (inst *Instance) SetPrivateField(name symbols.Symbol, v values.Value) {
	inst.privateFields[name] = v
}

// DeclarePrivateField reserves storage for name at construction time,
// before its initializer (if any) runs, so `this.#x` is well-defined
// (as undefined) even if read from within another field's initializer.
func (inst *Instance) DeclarePrivateField(name symbols.Symbol) {
	if _, ok := inst.privateFields[name]; !ok {
		inst.privateFields[name] = values.Undefined
	}
}

// RunFieldInitializers evaluates fields in declaration order and
// installs each result as a public own-property or private-field slot
// on target (spec.md §4.7 "instance field initializers run during
// construction, in declaration order"; the analogous static-field pass
// reuses this with target set to the class's StaticObj and inst nil).
// inst is nil when initializing static fields, which have no private
// per-instance home.
func RunFieldInitializers(target *values.Object, inst *Instance, fields []FieldInitializer) error {
	for _, f := range fields {
		v := values.Value(values.Undefined)
		if f.Init != nil {
			var err error
			v, err = f.Init()
			if err != nil {
				return err
			}
		}
		if f.Private {
			if inst == nil {
				return errorsx.New(errorsx.CategoryInternal, "private static fields need an instance-shaped home")
			}
			inst.SetPrivateField(f.PrivateName, v)
			continue
		}
		target.DefineOwnProperty(f.Key, &values.PropertyDescriptor{
			Value: v, Writable: true, Enumerable: true, Configurable: true,
		})
	}
	return nil
}
