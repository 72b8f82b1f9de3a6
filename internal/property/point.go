package property

import (
	"fmt"
	"slices"
	"time"
)

// Option customises a declaration before it is frozen.
type Option func(*settings)

type settings struct {
	defaultValue any
	hasDefault   bool
	valueType    any
	required     bool
	shortDesc    string
	helpText     string
	private      bool
	pointType    PointType
	explicitName string
	aliases      []Alias
}

// WithDefault sets the value used when no source provides one.
// The value must have the property's Go type.
func WithDefault[T any](v T) Option {
	return func(s *settings) {
		s.defaultValue = v
		s.hasDefault = true
	}
}

// Required marks the property as needing a value or default once loading completes.
func Required() Option {
	return func(s *settings) {
		s.required = true
	}
}

// WithDesc sets the one line description.
func WithDesc(desc string) Option {
	return func(s *settings) {
		s.shortDesc = desc
	}
}

// WithHelp sets the longer help text.
func WithHelp(text string) Option {
	return func(s *settings) {
		s.helpText = text
	}
}

// Private hides the value from exporters and inspection output.
func Private() Option {
	return func(s *settings) {
		s.private = true
	}
}

// WithPointType overrides the default SingleNameValue resolution mode.
func WithPointType(t PointType) Option {
	return func(s *settings) {
		s.pointType = t
	}
}

// WithValueType replaces the value type a constructor would pick.
func WithValueType[T any](vt ValueType[T]) Option {
	return func(s *settings) {
		s.valueType = vt
	}
}

// WithName requests an explicit canonical name.
func WithName(name string) Option {
	return func(s *settings) {
		s.explicitName = name
	}
}

// WithAliases adds aliases usable both for reading and exporting.
func WithAliases(names ...string) Option {
	return func(s *settings) {
		for _, name := range names {
			s.aliases = append(s.aliases, Alias{Name: name, In: true, Out: true})
		}
	}
}

// WithInAlias adds an alias accepted only when reading values.
func WithInAlias(name string) Option {
	return func(s *settings) {
		s.aliases = append(s.aliases, Alias{Name: name, In: true})
	}
}

// WithOutAlias adds an alias used only when exporting values.
func WithOutAlias(name string) Option {
	return func(s *settings) {
		s.aliases = append(s.aliases, Alias{Name: name, Out: true})
	}
}

// Point is a declared property whose values have Go type T.
type Point[T any] struct {
	valueType    ValueType[T]
	defaultValue T
	hasDefault   bool
	required     bool
	shortDesc    string
	helpText     string
	private      bool
	pointType    PointType
	explicitName string
	aliases      []Alias
}

var _ Property = (*Point[bool])(nil)

// FlagPoint is a boolean property whose presence alone means true.
type FlagPoint = Point[bool]

// NewPoint declares a property backed by vt. It panics when an option carries a
// default or value type of the wrong Go type, since declarations are static.
func NewPoint[T any](vt ValueType[T], opts ...Option) *Point[T] {
	s := settings{pointType: SingleNameValue}
	for _, opt := range opts {
		opt(&s)
	}

	p := &Point[T]{
		valueType:    vt,
		required:     s.required,
		shortDesc:    s.shortDesc,
		helpText:     s.helpText,
		private:      s.private,
		pointType:    s.pointType,
		explicitName: s.explicitName,
		aliases:      slices.Clone(s.aliases),
	}
	if s.valueType != nil {
		override, ok := s.valueType.(ValueType[T])
		if !ok {
			panic(fmt.Sprintf("property: value type %T does not produce %T", s.valueType, p.defaultValue))
		}
		p.valueType = override
	}
	if s.hasDefault {
		v, ok := s.defaultValue.(T)
		if !ok {
			panic(fmt.Sprintf("property: default %v (%T) is not a %s", s.defaultValue, s.defaultValue, p.valueType.Name()))
		}
		p.defaultValue = v
		p.hasDefault = true
	}
	return p
}

// NewFlag declares a flag property. With no options the flag has no default,
// is optional, undocumented, public, and named by the naming strategy.
func NewFlag(opts ...Option) *FlagPoint {
	return NewPoint[bool](FlagType{}, opts...)
}

// NewBool declares a boolean property that needs an explicit true/false value.
func NewBool(opts ...Option) *Point[bool] {
	return NewPoint[bool](BoolType{}, opts...)
}

// NewString declares a string property.
func NewString(opts ...Option) *Point[string] {
	return NewPoint[string](StringType{}, opts...)
}

// NewInt declares an integer property.
func NewInt(opts ...Option) *Point[int] {
	return NewPoint[int](IntType{}, opts...)
}

// NewFloat declares a float64 property.
func NewFloat(opts ...Option) *Point[float64] {
	return NewPoint[float64](FloatType{}, opts...)
}

// NewDuration declares a time.Duration property.
func NewDuration(opts ...Option) *Point[time.Duration] {
	return NewPoint[time.Duration](DurationType{}, opts...)
}

// NewEnum declares a string property restricted to allowed.
func NewEnum(allowed []string, opts ...Option) *Point[string] {
	return NewPoint[string](EnumType{Allowed: slices.Clone(allowed)}, opts...)
}

// ValueType returns the strategy used to parse and cast values.
func (p *Point[T]) ValueType() ValueType[T] { return p.valueType }

// Default returns the declared default, if any.
func (p *Point[T]) Default() (T, bool) { return p.defaultValue, p.hasDefault }

// Cast converts raw into T without parsing. Anything that is not already a T
// (or a kind the value type explicitly accepts) fails with ErrTypeMismatch.
func (p *Point[T]) Cast(raw any) (T, error) {
	return p.valueType.Cast(raw)
}

// Parse converts text into T using the value type.
func (p *Point[T]) Parse(text string) (T, error) {
	return p.valueType.Parse(text)
}

func (p *Point[T]) ShortDesc() string { return p.shortDesc }
func (p *Point[T]) HelpText() string { return p.helpText }
func (p *Point[T]) Required() bool { return p.required }
func (p *Point[T]) Private() bool { return p.private }
func (p *Point[T]) PointType() PointType { return p.pointType }
func (p *Point[T]) ExplicitName() string { return p.explicitName }
func (p *Point[T]) TypeName() string { return p.valueType.Name() }
func (p *Point[T]) Aliases() []Alias { return slices.Clone(p.aliases) }

func (p *Point[T]) DefaultValue() (any, bool) {
	if !p.hasDefault {
		return nil, false
	}
	return p.defaultValue, true
}

func (p *Point[T]) CastValue(raw any) (any, error) {
	v, err := p.valueType.Cast(raw)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (p *Point[T]) ParseValue(text string) (any, error) {
	v, err := p.valueType.Parse(text)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// FormatValue renders v with the value type. Values of another Go type are
// printed with fmt.
func (p *Point[T]) FormatValue(v any) string {
	typed, ok := v.(T)
	if !ok {
		return fmt.Sprint(v)
	}
	return p.valueType.Format(typed)
}
