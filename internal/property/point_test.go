package property

import (
	"errors"
	"slices"
	"testing"
	"time"
)

func TestNewFlagDefaults(t *testing.T) {
	t.Parallel()

	flag := NewFlag()

	if _, ok := flag.Default(); ok {
		t.Fatalf("expected no default value")
	}
	if _, ok := flag.DefaultValue(); ok {
		t.Fatalf("expected DefaultValue to report absence")
	}
	if flag.Required() {
		t.Fatalf("expected flag to be optional")
	}
	if flag.ShortDesc() != "" || flag.HelpText() != "" {
		t.Fatalf("expected empty description and help text")
	}
	if flag.PointType() != SingleNameValue {
		t.Fatalf("expected SingleNameValue, got %s", flag.PointType())
	}
	if _, ok := flag.ValueType().(FlagType); !ok {
		t.Fatalf("expected FlagType value type, got %T", flag.ValueType())
	}
	if flag.Private() {
		t.Fatalf("expected flag to be public")
	}
	if flag.ExplicitName() != "" {
		t.Fatalf("expected no explicit name, got %q", flag.ExplicitName())
	}
	if len(flag.Aliases()) != 0 {
		t.Fatalf("expected no aliases, got %v", flag.Aliases())
	}
	if flag.TypeName() != "flag" {
		t.Fatalf("expected type name flag, got %s", flag.TypeName())
	}
}

func TestNewFlagWithMetadata(t *testing.T) {
	t.Parallel()

	flag := NewFlag(
		WithDefault(true),
		Required(),
		WithDesc("Enable the feature"),
		WithHelp("Turns the feature on for every request."),
		WithPointType(MultiNameValue),
		Private(),
		WithName("feature.enabled"),
		WithAliases("fe"),
		WithInAlias("FEATURE_ON"),
		WithOutAlias("feature_on"),
	)

	if v, ok := flag.Default(); !ok || !v {
		t.Fatalf("expected default true, got %v (present=%v)", v, ok)
	}
	if !flag.Required() || !flag.Private() {
		t.Fatalf("expected required private flag")
	}
	if flag.ShortDesc() != "Enable the feature" {
		t.Fatalf("unexpected description %q", flag.ShortDesc())
	}
	if flag.HelpText() == "" {
		t.Fatalf("expected help text")
	}
	if flag.PointType() != MultiNameValue {
		t.Fatalf("expected MultiNameValue, got %s", flag.PointType())
	}
	if flag.ExplicitName() != "feature.enabled" {
		t.Fatalf("unexpected explicit name %q", flag.ExplicitName())
	}

	want := []Alias{
		{Name: "fe", In: true, Out: true},
		{Name: "FEATURE_ON", In: true},
		{Name: "feature_on", Out: true},
	}
	if got := flag.Aliases(); !slices.Equal(got, want) {
		t.Fatalf("expected aliases %v, got %v", want, got)
	}
}

func TestAliasesReturnsCopy(t *testing.T) {
	t.Parallel()

	p := NewString(WithAliases("one"))
	got := p.Aliases()
	got[0].Name = "mutated"

	if p.Aliases()[0].Name != "one" {
		t.Fatalf("expected aliases to be immutable, got %v", p.Aliases())
	}
}

func TestFlagCast(t *testing.T) {
	t.Parallel()

	flag := NewFlag()

	got, err := flag.Cast(true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Fatalf("expected true")
	}

	testCases := []any{"true", 1, nil, 1.0}
	for _, raw := range testCases {
		if _, err := flag.Cast(raw); !errors.Is(err, ErrTypeMismatch) {
			t.Fatalf("expected ErrTypeMismatch for %v (%T), got %v", raw, raw, err)
		}
	}

	var castErr *CastError
	_, err = flag.CastValue("true")
	if !errors.As(err, &castErr) {
		t.Fatalf("expected *CastError, got %T", err)
	}
	if castErr.TypeName != "flag" {
		t.Fatalf("unexpected type name %q", castErr.TypeName)
	}
}

func TestNewPointPanicsOnWrongDefault(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for mismatched default")
		}
	}()
	_ = NewInt(WithDefault("eighty"))
}

func TestNewPointPanicsOnWrongValueType(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for mismatched value type")
		}
	}()
	_ = NewInt(WithValueType[string](StringType{}))
}

func TestWithValueTypeOverridesConstructorChoice(t *testing.T) {
	t.Parallel()

	p := NewString(WithValueType[string](EnumType{Allowed: []string{"a", "b"}}))
	if p.TypeName() != "enum" {
		t.Fatalf("expected enum value type, got %s", p.TypeName())
	}
	if _, err := p.Parse("c"); !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	d := NewDuration()
	if got := d.FormatValue(90 * time.Second); got != "1m30s" {
		t.Fatalf("expected 1m30s, got %s", got)
	}
	if got := d.FormatValue("raw"); got != "raw" {
		t.Fatalf("expected fallback formatting, got %s", got)
	}
}

func TestPointTypeString(t *testing.T) {
	t.Parallel()

	if SingleNameValue.String() != "single-name-value" {
		t.Fatalf("unexpected %s", SingleNameValue)
	}
	if PointType(42).String() != "unknown" {
		t.Fatalf("expected unknown for invalid point type")
	}
}
