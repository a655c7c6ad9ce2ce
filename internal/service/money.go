package service

import "github.com/shopspring/decimal"

// The backend carries catalog and order prices as major-unit decimals
// ("1500.50"). Everything inside the module is int64 minor units. These two
// functions are the only place the conversion happens.

const minorExponent = 2

// ToMinor converts a major-unit amount to minor units, rounding half away
// from zero at the second decimal place.
func ToMinor(d decimal.Decimal) int64 {
	return d.Shift(minorExponent).Round(0).IntPart()
}

// FromMinor converts minor units back to a major-unit decimal.
func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -minorExponent)
}

// amount is a major-unit price on the wire. It decodes from a JSON number or
// string and encodes as a bare number.
type amount struct {
	decimal.Decimal
}

func (a amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// minor returns a in minor units; a nil amount is zero.
func (a *amount) minor() int64 {
	if a == nil {
		return 0
	}
	return ToMinor(a.Decimal)
}

func amountOf(minor int64) amount {
	return amount{FromMinor(minor)}
}
