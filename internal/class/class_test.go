package class

import (
	"testing"

	"github.com/solarframe/ecmawalk/internal/symbols"
	"github.com/solarframe/ecmawalk/internal/values"
)

func TestDerivedInstanceCarriesBothBrands(t *testing.T) {
	base := NewInfo("Base", nil, values.NewObject(nil), values.NewObject(nil))
	derived := NewInfo("Derived", base, values.NewObject(base.Prototype), values.NewObject(nil))

	inst := NewInstance(derived)

	if !inst.HasBrand(base.Brand) {
		t.Fatalf("derived instance must carry its base class's brand")
	}
	if !inst.HasBrand(derived.Brand) {
		t.Fatalf("derived instance must carry its own brand")
	}

	other := NewInfo("Unrelated", nil, values.NewObject(nil), values.NewObject(nil))
	if inst.HasBrand(other.Brand) {
		t.Fatalf("instance must not carry an unrelated class's brand")
	}
}

func TestPrivateFieldRoundTrip(t *testing.T) {
	names := symbols.NewInterner()
	hash := names.Intern("#x")

	info := NewInfo("C", nil, values.NewObject(nil), values.NewObject(nil))
	inst := NewInstance(info)
	inst.DeclarePrivateField(hash)

	if v, ok := inst.GetPrivateField(hash); !ok || v != values.Undefined {
		t.Fatalf("expected private field to start as undefined, got %#v ok=%v", v, ok)
	}

	inst.SetPrivateField(hash, values.Number(9))
	v, ok := inst.GetPrivateField(hash)
	if !ok {
		t.Fatalf("expected private field to be found after Set")
	}
	if n, ok := v.(values.Number); !ok || float64(n) != 9 {
		t.Fatalf("got %#v, want 9", v)
	}
}

func TestRunFieldInitializersOrderAndVisibility(t *testing.T) {
	names := symbols.NewInterner()
	hashY := names.Intern("#y")

	info := NewInfo("C", nil, values.NewObject(nil), values.NewObject(nil))
	inst := NewInstance(info)

	var order []string
	fields := []FieldInitializer{
		{Key: values.StringKey("a"), Init: func() (values.Value, error) {
			order = append(order, "a")
			return values.Number(1), nil
		}},
		{Private: true, PrivateName: hashY, Init: func() (values.Value, error) {
			order = append(order, "y")
			return values.Number(2), nil
		}},
	}
	if err := RunFieldInitializers(inst.Object, inst, fields); err != nil {
		t.Fatalf("RunFieldInitializers: %v", err)
	}

	if len(order) != 2 || order[0] != "a" || order[1] != "y" {
		t.Fatalf("expected declaration order a,y, got %v", order)
	}

	d, ok := inst.GetOwnProperty(values.StringKey("a"))
	if !ok || d.Value.(values.Number) != 1 {
		t.Fatalf("public field a not installed correctly")
	}
	if _, ok := inst.GetOwnProperty(values.StringKey("y")); ok {
		t.Fatalf("private field must not appear as an own public property")
	}
	if v, ok := inst.GetPrivateField(hashY); !ok || v.(values.Number) != 2 {
		t.Fatalf("private field #y not stored correctly")
	}
}
