package units

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidUnit is returned for unrecognized unit tags or for a unit used with the
// wrong kind of quantity (e.g. a weight unit for a length).
var ErrInvalidUnit = errors.New("invalid unit")

// ErrNonFinite is returned when a value to convert is NaN or infinite.
var ErrNonFinite = errors.New("value must be a finite number")

// Kind distinguishes the physical quantity a unit measures.
type Kind int

const (
	KindLength Kind = iota + 1
	KindWeight
	KindVolume
)

func (k Kind) String() string {
	switch k {
	case KindLength:
		return "length"
	case KindWeight:
		return "weight"
	case KindVolume:
		return "volume"
	default:
		return "unknown"
	}
}

// Unit is a canonical unit tag.
type Unit string

const (
	Millimeter Unit = "mm"
	Centimeter Unit = "cm"
	Meter      Unit = "m"
	Inch       Unit = "in"
	Foot       Unit = "ft"

	Gram     Unit = "g"
	Kilogram Unit = "kg"
	Pound    Unit = "lb"

	CubicMeter Unit = "cbm"
	CubicFoot  Unit = "cft"
)

type unitDef struct {
	kind Kind
	// factor converts one of this unit into the canonical unit of its kind:
	// millimeters, kilograms, or cubic millimeters.
	factor decimal.Decimal
}

var (
	mmPerInch = decimal.RequireFromString("25.4")
	mmPerFoot = decimal.RequireFromString("304.8")
	kgPerLb   = decimal.RequireFromString("0.45359237")
)

var definitions = map[Unit]unitDef{
	Millimeter: {kind: KindLength, factor: decimal.NewFromInt(1)},
	Centimeter: {kind: KindLength, factor: decimal.NewFromInt(10)},
	Meter:      {kind: KindLength, factor: decimal.NewFromInt(1000)},
	Inch:       {kind: KindLength, factor: mmPerInch},
	Foot:       {kind: KindLength, factor: mmPerFoot},

	Gram:     {kind: KindWeight, factor: decimal.RequireFromString("0.001")},
	Kilogram: {kind: KindWeight, factor: decimal.NewFromInt(1)},
	Pound:    {kind: KindWeight, factor: kgPerLb},

	CubicMeter: {kind: KindVolume, factor: decimal.NewFromInt(1_000_000_000)},
	CubicFoot:  {kind: KindVolume, factor: mmPerFoot.Pow(decimal.NewFromInt(3))},
}

var aliases = map[string]Unit{
	"mm": Millimeter, "millimeter": Millimeter, "millimeters": Millimeter, "millimetre": Millimeter, "millimetres": Millimeter,
	"cm": Centimeter, "centimeter": Centimeter, "centimeters": Centimeter, "centimetre": Centimeter, "centimetres": Centimeter,
	"m": Meter, "meter": Meter, "meters": Meter, "metre": Meter, "metres": Meter,
	"in": Inch, "inch": Inch, "inches": Inch, `"`: Inch,
	"ft": Foot, "foot": Foot, "feet": Foot, "'": Foot,
	"g": Gram, "gram": Gram, "grams": Gram,
	"kg": Kilogram, "kgs": Kilogram, "kilogram": Kilogram, "kilograms": Kilogram,
	"lb": Pound, "lbs": Pound, "pound": Pound, "pounds": Pound,
	"cbm": CubicMeter, "m3": CubicMeter, "m³": CubicMeter, "cubic meter": CubicMeter, "cubic meters": CubicMeter,
	"cft": CubicFoot, "ft3": CubicFoot, "ft³": CubicFoot, "cuft": CubicFoot, "cubic foot": CubicFoot, "cubic feet": CubicFoot,
}

// Parse resolves a unit tag or one of its aliases. Matching is case-insensitive.
func Parse(tag string) (Unit, error) {
	key := strings.ToLower(strings.TrimSpace(tag))
	if u, ok := aliases[key]; ok {
		return u, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidUnit, tag)
}

// KindOf reports which quantity the unit measures.
func KindOf(u Unit) (Kind, error) {
	def, ok := definitions[u]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidUnit, string(u))
	}
	return def.kind, nil
}

// Normalize converts value expressed in the given unit tag into the canonical unit
// of its kind (mm for lengths, kg for weights, mm³ for volumes).
func Normalize(value float64, from string) (float64, error) {
	def, _, err := lookup(from)
	if err != nil {
		return 0, err
	}
	return convert(value, def.factor, true)
}

// Denormalize converts a canonical value back into the given unit.
func Denormalize(value float64, to string) (float64, error) {
	def, _, err := lookup(to)
	if err != nil {
		return 0, err
	}
	return convert(value, def.factor, false)
}

// NormalizeAs is Normalize with an additional check that the unit measures want.
func NormalizeAs(value float64, from string, want Kind) (float64, error) {
	def, u, err := lookup(from)
	if err != nil {
		return 0, err
	}
	if def.kind != want {
		return 0, fmt.Errorf("%w: %q is a %s unit, expected %s", ErrInvalidUnit, string(u), def.kind, want)
	}
	return convert(value, def.factor, true)
}

// Length converts a length into millimeters.
func Length(value float64, from string) (float64, error) {
	return NormalizeAs(value, from, KindLength)
}

// Weight converts a weight into kilograms.
func Weight(value float64, from string) (float64, error) {
	return NormalizeAs(value, from, KindWeight)
}

// VolumeFromCubicMillimeters expresses a canonical volume in a display unit.
func VolumeFromCubicMillimeters(value float64, to Unit) (float64, error) {
	def, ok := definitions[to]
	if !ok || def.kind != KindVolume {
		return 0, fmt.Errorf("%w: %q is not a volume unit", ErrInvalidUnit, string(to))
	}
	return convert(value, def.factor, false)
}

// Round rounds half away from zero to the given number of decimal places.
// NaN and infinities are returned unchanged.
func Round(value float64, places int32) float64 {
	if !finite(value) {
		return value
	}
	return decimal.NewFromFloat(value).Round(places).InexactFloat64()
}

// convert multiplies (toCanonical) or divides value by factor in decimal.
func convert(value float64, factor decimal.Decimal, toCanonical bool) (float64, error) {
	if !finite(value) {
		return 0, fmt.Errorf("%w: got %v", ErrNonFinite, value)
	}
	d := decimal.NewFromFloat(value)
	if toCanonical {
		d = d.Mul(factor)
	} else {
		d = d.Div(factor)
	}
	out := d.InexactFloat64()
	if !finite(out) {
		return 0, fmt.Errorf("%w: %v converts out of range", ErrNonFinite, value)
	}
	return out, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func lookup(tag string) (unitDef, Unit, error) {
	u, err := Parse(tag)
	if err != nil {
		return unitDef{}, "", err
	}
	return definitions[u], u, nil
}
