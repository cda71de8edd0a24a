package dsl_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	sk "github.com/reoring/shapekit"
	g "github.com/reoring/shapekit/dsl"
)

func TestRecord_BuilderWithWireKeys(t *testing.T) {
	ctx := context.Background()
	person := g.Record("Person").
		Field("first_name", g.String()).As("first-name").
		Field("initial", g.String()).Optional().
		Field("last_name", g.String()).
		Field("age", g.Int()).Default(int64(0)).
		MustBuild()

	codec, err := g.NewConstructor(nil).With(person.Overrides()).For(person.Record())
	if err != nil {
		t.Fatalf("for: %v", err)
	}
	v, err := codec.Decode(ctx, map[string]any{"first-name": "Hello", "last_name": "World"})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	st := v.(*sk.Struct)
	if st.Get("first_name") != "Hello" || st.Get("initial") != nil || st.Get("age") != int64(0) {
		t.Fatalf("unexpected value: %v", st)
	}
}

func TestRecord_DuplicateFieldFailsBuild(t *testing.T) {
	_, err := g.Record("R").Field("a", g.Int()).Field("a", g.String()).Build()
	if !errors.Is(err, sk.ErrDuplicateField) {
		t.Fatalf("expected duplicate field error, got %v", err)
	}
}

func TestRecord_ForbidUnknown(t *testing.T) {
	rec := g.Record("R").Field("a", g.Int()).ForbidUnknown().MustBuild()
	_, err := sk.MustApply(nil, rec.Record()).Decode(context.Background(), map[string]any{"a": 1, "b": 2})
	iss, _ := sk.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != sk.CodeUnknownKey || iss[0].Path != "/b" {
		t.Fatalf("expected unknown_key at /b, got %v", iss)
	}
}

func TestSum_BuilderAndConstructorCache(t *testing.T) {
	ctx := context.Background()
	payment := g.Sum("Payment").
		Variant("Cash").Field("amount", g.Int()).
		Variant("Card").Tag("credit-card").Field("card_number", g.String()).As("number").
		Variant("Free").
		MustBuild()

	ctor := g.NewConstructor(nil, sk.SumTypeDict("$type")).With(payment.Overrides())
	c1 := ctor.MustFor(payment.Sum())
	c2 := ctor.MustFor(payment.Sum())
	if c1 != c2 {
		t.Fatalf("constructor should reuse the cached codec")
	}

	raw := map[string]any{"$type": "credit-card", "number": "1111"}
	v, err := c1.Decode(ctx, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	x := v.(*sk.Value)
	if !x.Is(payment.Variant("Card")) || x.Get("card_number") != "1111" {
		t.Fatalf("unexpected value: %v", x)
	}
	out, err := c1.Encode(ctx, v)
	if err != nil || !reflect.DeepEqual(out, raw) {
		t.Fatalf("round trip: %#v %v", out, err)
	}
}

type money struct {
	Amount int64
}

func TestTyped_BindConvertsValues(t *testing.T) {
	ctx := context.Background()
	rec := g.Record("Money").Field("amount", g.Int()).MustBuild()
	codec := g.NewConstructor(nil).MustFor(rec.Record())
	typed := g.Bind(codec,
		func(v any) (money, error) {
			return money{Amount: v.(*sk.Struct).Get("amount").(int64)}, nil
		},
		func(m money) (any, error) {
			return sk.NewStruct(rec.Record(), map[string]any{"amount": m.Amount})
		},
	)
	m, err := typed.Decode(ctx, map[string]any{"amount": 5})
	if err != nil || m.Amount != 5 {
		t.Fatalf("decode: %v %v", m, err)
	}
	out, err := typed.Encode(ctx, money{Amount: 7})
	if err != nil || !reflect.DeepEqual(out, map[string]any{"amount": int64(7)}) {
		t.Fatalf("encode: %#v %v", out, err)
	}
}
