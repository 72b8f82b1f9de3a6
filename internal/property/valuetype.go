package property

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ValueType turns raw input into typed values for one kind of property.
// Parse handles text coming from sources such as the command line or environment;
// Cast takes values decoded by structured sources and never parses text. Each
// type documents the Go kinds its Cast converts; anything else is a CastError.
type ValueType[T any] interface {
	Name() string
	Parse(text string) (T, error)
	Cast(raw any) (T, error)
	Format(v T) string
}

var (
	_ ValueType[bool]          = FlagType{}
	_ ValueType[bool]          = BoolType{}
	_ ValueType[string]        = StringType{}
	_ ValueType[int]           = IntType{}
	_ ValueType[float64]       = FloatType{}
	_ ValueType[time.Duration] = DurationType{}
	_ ValueType[string]        = EnumType{}
)

// FlagType backs flag properties. A flag that is present without text is true.
type FlagType struct{}

func (FlagType) Name() string { return "flag" }

func (t FlagType) Parse(text string) (bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return true, nil
	}
	v, ok := parseBoolText(text)
	if !ok {
		return false, &ParseError{TypeName: t.Name(), Text: text}
	}
	return v, nil
}

// Cast performs no conversion: the raw value must already be a bool.
func (t FlagType) Cast(raw any) (bool, error) {
	v, ok := raw.(bool)
	if !ok {
		return false, &CastError{TypeName: t.Name(), Value: raw}
	}
	return v, nil
}

func (FlagType) Format(v bool) string { return strconv.FormatBool(v) }

// BoolType backs boolean properties that always need an explicit value.
type BoolType struct{}

func (BoolType) Name() string { return "bool" }

func (t BoolType) Parse(text string) (bool, error) {
	text = strings.TrimSpace(text)
	v, ok := parseBoolText(text)
	if !ok {
		return false, &ParseError{TypeName: t.Name(), Text: text}
	}
	return v, nil
}

func (t BoolType) Cast(raw any) (bool, error) {
	v, ok := raw.(bool)
	if !ok {
		return false, &CastError{TypeName: t.Name(), Value: raw}
	}
	return v, nil
}

func (BoolType) Format(v bool) string { return strconv.FormatBool(v) }

// StringType keeps text as-is.
type StringType struct{}

func (StringType) Name() string { return "string" }

func (StringType) Parse(text string) (string, error) { return text, nil }

func (t StringType) Cast(raw any) (string, error) {
	v, ok := raw.(string)
	if !ok {
		return "", &CastError{TypeName: t.Name(), Value: raw}
	}
	return v, nil
}

func (StringType) Format(v string) string { return v }

// IntType accepts any Go integer that fits in an int, and integral floats.
type IntType struct{}

func (IntType) Name() string { return "int" }

func (t IntType) Parse(text string) (int, error) {
	text = strings.TrimSpace(text)
	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, &ParseError{TypeName: t.Name(), Text: text, Reason: "not an integer"}
	}
	return v, nil
}

// Cast accepts every Go integer kind that fits in an int, and float64 values
// without a fractional part, which is how YAML and JSON decoders report numbers.
func (t IntType) Cast(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		if v >= math.MinInt && v <= math.MaxInt {
			return int(v), nil
		}
	case uint:
		if v <= math.MaxInt {
			return int(v), nil
		}
	case uint8:
		return int(v), nil
	case uint16:
		return int(v), nil
	case uint32:
		return int(v), nil
	case uint64:
		if v <= math.MaxInt {
			return int(v), nil
		}
	case float64:
		if v == math.Trunc(v) && v >= math.MinInt && v < math.MaxInt {
			return int(v), nil
		}
	}
	return 0, &CastError{TypeName: t.Name(), Value: raw}
}

func (IntType) Format(v int) string { return strconv.Itoa(v) }

// FloatType backs float64 properties.
type FloatType struct{}

func (FloatType) Name() string { return "float" }

func (t FloatType) Parse(text string) (float64, error) {
	text = strings.TrimSpace(text)
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, &ParseError{TypeName: t.Name(), Text: text, Reason: "not a number"}
	}
	return v, nil
}

// Cast widens float32 and the integer kinds decoders produce to float64.
func (t FloatType) Cast(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	}
	return 0, &CastError{TypeName: t.Name(), Value: raw}
}

func (FloatType) Format(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// DurationType parses Go duration syntax such as "1m30s".
type DurationType struct{}

func (DurationType) Name() string { return "duration" }

func (t DurationType) Parse(text string) (time.Duration, error) {
	text = strings.TrimSpace(text)
	v, err := time.ParseDuration(text)
	if err != nil {
		return 0, &ParseError{TypeName: t.Name(), Text: text, Reason: err.Error()}
	}
	return v, nil
}

func (t DurationType) Cast(raw any) (time.Duration, error) {
	v, ok := raw.(time.Duration)
	if !ok {
		return 0, &CastError{TypeName: t.Name(), Value: raw}
	}
	return v, nil
}

func (DurationType) Format(v time.Duration) string { return v.String() }

// EnumType restricts a string to a fixed set of values. Matching is case sensitive.
type EnumType struct {
	Allowed []string
}

func (EnumType) Name() string { return "enum" }

func (t EnumType) Parse(text string) (string, error) {
	text = strings.TrimSpace(text)
	if !slices.Contains(t.Allowed, text) {
		return "", &ParseError{TypeName: t.Name(), Text: text, Reason: "must be one of " + strings.Join(t.Allowed, ", ")}
	}
	return text, nil
}

func (t EnumType) Cast(raw any) (string, error) {
	v, ok := raw.(string)
	if !ok || !slices.Contains(t.Allowed, v) {
		return "", &CastError{TypeName: t.Name(), Value: raw}
	}
	return v, nil
}

func (EnumType) Format(v string) string { return v }

func parseBoolText(text string) (bool, bool) {
	switch strings.ToLower(text) {
	case "true", "t", "yes", "y", "on", "1":
		return true, true
	case "false", "f", "no", "n", "off", "0":
		return false, true
	}
	return false, false
}
