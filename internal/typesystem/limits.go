package typesystem

import "math/big"

// Target carries the properties of the compilation target that affect types.
type Target struct {
	PointerBits int
}

// DefaultTarget matches the reference 32-bit target.
var DefaultTarget = Target{PointerBits: 32}

// Bits returns the width of an integer type. {integer} is measured as i32.
func (tg Target) Bits(t Type) int {
	k, _ := prim(t)
	switch k {
	case KI8, KU8:
		return 8
	case KI16, KU16:
		return 16
	case KI32, KU32, KIntLit:
		return 32
	case KI64, KU64:
		return 64
	case KIsize, KUsize:
		if tg.PointerBits == 0 {
			return DefaultTarget.PointerBits
		}
		return tg.PointerBits
	}
	return 0
}

// Min returns the smallest value of an integer type.
func (tg Target) Min(t Type) *big.Int {
	if !IsSigned(t) {
		return new(big.Int)
	}
	bits := tg.Bits(t)
	return new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(bits-1)))
}

// Max returns the largest value of an integer type.
func (tg Target) Max(t Type) *big.Int {
	bits := tg.Bits(t)
	if IsSigned(t) {
		bits--
	}
	one := big.NewInt(1)
	return new(big.Int).Sub(new(big.Int).Lsh(one, uint(bits)), one)
}

// Fits reports whether v is representable in integer type t.
func (tg Target) Fits(t Type, v *big.Int) bool {
	return v.Cmp(tg.Min(t)) >= 0 && v.Cmp(tg.Max(t)) <= 0
}

// Wrap truncates v to the width of t, two's complement.
func (tg Target) Wrap(t Type, v *big.Int) *big.Int {
	bits := uint(tg.Bits(t))
	mod := new(big.Int).Lsh(big.NewInt(1), bits)
	r := new(big.Int).Mod(v, mod)
	if IsSigned(t) && r.Cmp(tg.Max(t)) > 0 {
		r.Sub(r, mod)
	}
	return r
}
