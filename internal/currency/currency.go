package currency

import "strings"

// DefaultPrecision is used for currency codes not covered by the ISO 4217
// tables below. The vast majority of currencies use two decimal places.
const DefaultPrecision = 2

// zeroDecimal lists ISO 4217 currencies with no minor unit.
var zeroDecimal = map[string]struct{}{
	"BIF": {}, "CLP": {}, "DJF": {}, "GNF": {}, "ISK": {}, "JPY": {},
	"KMF": {}, "KRW": {}, "PYG": {}, "RWF": {}, "UGX": {}, "UYI": {},
	"VND": {}, "VUV": {}, "XAF": {}, "XOF": {}, "XPF": {},
}

// threeDecimal lists ISO 4217 currencies with a thousandth minor unit.
var threeDecimal = map[string]struct{}{
	"BHD": {}, "IQD": {}, "JOD": {}, "KWD": {}, "LYD": {}, "OMR": {}, "TND": {},
}

// Precision returns the number of decimal places for a currency code per
// ISO 4217. Lookups are case-insensitive; unknown codes fall back to
// DefaultPrecision.
func Precision(code string) int32 {
	c := strings.ToUpper(strings.TrimSpace(code))
	if _, ok := zeroDecimal[c]; ok {
		return 0
	}
	if _, ok := threeDecimal[c]; ok {
		return 3
	}
	return DefaultPrecision
}
