package shapekit_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	sk "github.com/reoring/shapekit"
)

func paymentDesc() *sk.SumType {
	return sk.NewSum("Payment",
		sk.V("Cash", sk.FieldOf("amount", sk.Int())),
		sk.V("Card", sk.FieldOf("number", sk.String()), sk.FieldOf("amount", sk.String())),
		sk.V("Free"),
	)
}

func TestSum_PairEncoding(t *testing.T) {
	ctx := context.Background()
	payment := paymentDesc()
	c := sk.MustApply(nil, payment)
	raw := []any{"cash", map[string]any{"amount": 10}}
	v, err := c.Decode(ctx, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	x := v.(*sk.Value)
	if x.Variant().Name() != "Cash" || x.Get("amount") != int64(10) {
		t.Fatalf("unexpected value: %v", x)
	}
	out, err := c.Encode(ctx, v)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []any{"cash", map[string]any{"amount": int64(10)}}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("encode mismatch: %#v", out)
	}
}

func TestSum_MappingEncodingWithCustomTagKey(t *testing.T) {
	ctx := context.Background()
	payment := paymentDesc()
	c := sk.MustApply(sk.New(sk.SumTypeDict("$type")), payment)
	raw := map[string]any{"$type": "card", "number": "1111", "amount": "10"}
	v, err := c.Decode(ctx, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	x := v.(*sk.Value)
	if x.Tag() != "card" || x.Get("number") != "1111" || x.Get("amount") != "10" {
		t.Fatalf("unexpected value: %v", x)
	}
	out, err := c.Encode(ctx, v)
	if err != nil || !reflect.DeepEqual(out, raw) {
		t.Fatalf("encode mismatch: %#v %v", out, err)
	}
	if _, ok := raw["$type"]; !ok {
		t.Fatalf("input mapping must not be modified")
	}
}

func TestSum_MappingEncodingDefaultsToTypeKey(t *testing.T) {
	c := sk.MustApply(sk.New(sk.SumTypeDict()), paymentDesc())
	_, err := c.Decode(context.Background(), map[string]any{"amount": 1})
	iss, _ := sk.AsIssues(err)
	if len(iss) != 1 || iss[0].Path != "/type" || iss[0].Code != sk.CodeMissingRequired {
		t.Fatalf("expected missing tag at /type, got %v", iss)
	}
}

func TestSum_IdentityAndMembership(t *testing.T) {
	payment := paymentDesc()
	other := paymentDesc()
	cash := payment.MustLookup("cash")
	card := payment.MustLookup("card")
	x := cash.MustNew(map[string]any{"amount": int64(1)})
	if !x.Is(payment) || !x.Is(cash) {
		t.Fatalf("instance must be a member of its sum type and variant")
	}
	if x.Is(card) || x.Is(other) || x.Is(other.MustLookup("cash")) {
		t.Fatalf("instance must not be a member of siblings or foreign sums")
	}
}

func TestSum_Lookup(t *testing.T) {
	payment := paymentDesc()
	cash := payment.MustLookup("cash")
	if v, ok := payment.Lookup("CASH"); !ok || v != cash {
		t.Fatalf("tag lookup should fall back to case-insensitive match")
	}
	if v, ok := payment.Lookup(cash); !ok || v != cash {
		t.Fatalf("variant lookup should return the variant itself")
	}
	inst := cash.MustNew(map[string]any{"amount": int64(5)})
	if v, ok := payment.Lookup(inst); !ok || v != cash {
		t.Fatalf("instance lookup should return its variant")
	}
	if _, ok := payment.Lookup("cheque"); ok {
		t.Fatalf("unknown tag must not resolve")
	}
	if _, ok := paymentDesc().Lookup(cash); ok {
		t.Fatalf("foreign variant must not resolve")
	}
	if got := payment.Values(); !reflect.DeepEqual(got, []string{"cash", "card", "free"}) {
		t.Fatalf("values: %v", got)
	}
}

func TestSum_DecodeMatchesTagsIgnoringCase(t *testing.T) {
	ctx := context.Background()
	payment := paymentDesc()

	v, err := sk.MustApply(nil, payment).Decode(ctx, []any{"CASH", map[string]any{"amount": 10}})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if x := v.(*sk.Value); x.Variant().Name() != "Cash" || x.Get("amount") != int64(10) {
		t.Fatalf("expected Cash, got %v", x)
	}

	dict := sk.MustApply(sk.New(sk.SumTypeDict()), payment)
	v, err = dict.Decode(ctx, map[string]any{"type": "Card", "number": "1", "amount": "2"})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if x := v.(*sk.Value); x.Variant().Name() != "Card" {
		t.Fatalf("expected Card, got %v", x)
	}
	out, _ := dict.Encode(ctx, v)
	if out.(map[string]any)["type"] != "card" {
		t.Fatalf("encode should use the declared tag: %#v", out)
	}
}

func TestSum_ExactTagBeatsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	mode := sk.NewSum("Mode", sk.V("Upper").Tagged("A"), sk.V("Lower").Tagged("a"))
	c := sk.MustApply(nil, mode)
	for tag, want := range map[string]string{"A": "Upper", "a": "Lower"} {
		v, err := c.Decode(ctx, []any{tag, map[string]any{}})
		if err != nil {
			t.Fatalf("decode %q: %v", tag, err)
		}
		if got := v.(*sk.Value).Variant().Name(); got != want {
			t.Fatalf("tag %q: got %s want %s", tag, got, want)
		}
	}
}

func TestSum_UnitVariantIsShared(t *testing.T) {
	payment := paymentDesc()
	free := payment.MustLookup("free")
	unit, ok := free.Unit()
	if !ok {
		t.Fatalf("field-less variant should have a unit instance")
	}
	v, err := sk.MustApply(nil, payment).Decode(context.Background(), []any{"Free", map[string]any{}})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v != unit {
		t.Fatalf("decode should return the shared instance")
	}
	if nv, _ := free.New(nil); nv != unit {
		t.Fatalf("New should return the shared instance")
	}
}

func TestSum_DecodeFailures(t *testing.T) {
	ctx := context.Background()
	c := sk.MustApply(nil, paymentDesc())

	_, err := c.Decode(ctx, []any{"cheque", map[string]any{}})
	iss, _ := sk.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != sk.CodeNoVariantMatched || iss[0].Path != "/" {
		t.Fatalf("expected no_variant_matched at root, got %v", iss)
	}

	_, err = c.Decode(ctx, []any{"cash", map[string]any{"amount": 1, "extra": true}})
	iss, _ = sk.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != sk.CodeUnknownKey || iss[0].Path != "/1/extra" {
		t.Fatalf("expected unknown_key at /1/extra, got %v", iss)
	}

	_, err = c.Decode(ctx, []any{1, map[string]any{}})
	iss, _ = sk.AsIssues(err)
	if len(iss) != 1 || iss[0].Path != "/0" || iss[0].Code != sk.CodeWrongType {
		t.Fatalf("expected wrong_type at /0, got %v", iss)
	}

	_, err = c.Decode(ctx, map[string]any{"type": "cash"})
	iss, _ = sk.AsIssues(err)
	if len(iss) != 1 || iss[0].Path != "/" || iss[0].Code != sk.CodeWrongType {
		t.Fatalf("pair mode should reject mappings, got %v", iss)
	}
}

func TestSum_ConfigErrors(t *testing.T) {
	event := sk.NewSum("Event", sk.V("Click", sk.FieldOf("type", sk.String())))
	_, err := sk.Apply(sk.New(sk.SumTypeDict()), event)
	if !errors.Is(err, sk.ErrTagKeyCollision) {
		t.Fatalf("expected tag key collision, got %v", err)
	}
	if _, err := sk.Apply(nil, event); err != nil {
		t.Fatalf("pair mode has no collision: %v", err)
	}

	// compiling from a variant record that refers back to its sum
	next := sk.NewRef("Chain")
	chain := sk.NewSum("Chain",
		sk.V("Link", sk.FieldOf("type", sk.String()), sk.FieldOf("next", sk.Optional(next))),
		sk.V("End"),
	)
	next.Resolve(chain)
	_, err = sk.Apply(sk.New(sk.SumTypeDict()), chain.MustLookup("link").Record())
	if !errors.Is(err, sk.ErrTagKeyCollision) {
		t.Fatalf("expected tag key collision through the cycle, got %v", err)
	}

	dup := sk.NewSum("Dup", sk.V("A"), sk.V("B").Tagged("a"))
	_, err = sk.Apply(nil, dup)
	var ce *sk.ConfigError
	if !errors.Is(err, sk.ErrDuplicateVariant) || !errors.As(err, &ce) || ce.Field != "B" {
		t.Fatalf("expected duplicate variant B, got %v", err)
	}
}

func TestSum_VariantNewValidatesFields(t *testing.T) {
	cash := paymentDesc().MustLookup("cash")
	_, err := cash.New(map[string]any{"amont": int64(1)})
	iss, ok := sk.AsIssues(err)
	if !ok || len(iss) != 2 || iss[0].Code != sk.CodeMissingRequired || iss[1].Code != sk.CodeUnknownKey {
		t.Fatalf("expected missing + unknown, got %v", err)
	}
}
