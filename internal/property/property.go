package property

// PointType describes how a source expresses a property's value.
type PointType int

const (
	// SingleNameValue is a single name bound to a single value.
	SingleNameValue PointType = iota
	// MultiNameValue allows a value to be assembled from several names.
	MultiNameValue
)

func (t PointType) String() string {
	switch t {
	case SingleNameValue:
		return "single-name-value"
	case MultiNameValue:
		return "multi-name-value"
	default:
		return "unknown"
	}
}

// Alias is an alternate name requested by a property declaration.
// In aliases are accepted when reading values; Out aliases are used when exporting.
type Alias struct {
	Name string
	In   bool
	Out  bool
}

// Property is a typed, immutable configuration declaration.
// Identity is by reference: two declarations with equal metadata are different properties,
// so implementations must be pointer types.
type Property interface {
	ShortDesc() string
	HelpText() string
	Required() bool
	Private() bool
	PointType() PointType
	// ExplicitName returns the name the declaration asked for, or "" to let the
	// naming strategy derive one.
	ExplicitName() string
	Aliases() []Alias
	DefaultValue() (any, bool)
	TypeName() string

	CastValue(raw any) (any, error)
	ParseValue(text string) (any, error)
	FormatValue(v any) string
}
