// Package framerate normalizes frame-rate values of unknown
// representation (integer, float, numeric string, or rational) into
// exact rationals suitable for configuring a container stream.
//
// Frame-rate metadata from real files is unreliable: values arrive as
// floats, as decimal strings, or as rationals with oversized
// denominators. Stream configuration requires an exact rational, so
// every consumer goes through Normalize rather than coercing the value
// itself.
package framerate

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// MaxDenominator bounds the denominator of normalized rationals.
// Older container libraries reject rationals with large denominators,
// so the bound is applied consistently on every normalization path.
const MaxDenominator = 1000

// Rational is an exact frames-per-second value as numerator/denominator.
type Rational struct {
	Num int
	Den int
}

// Float64 returns the floating-point value of the rational.
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Reduced returns the rational in lowest terms with a positive
// denominator.
func (r Rational) Reduced() Rational {
	if r.Den < 0 {
		r.Num, r.Den = -r.Num, -r.Den
	}
	g := gcd(abs(r.Num), r.Den)
	if g > 1 {
		r.Num /= g
		r.Den /= g
	}
	return r
}

func (r Rational) String() string {
	return strconv.Itoa(r.Num) + "/" + strconv.Itoa(r.Den)
}

// Kind identifies the source representation of a Rate.
type Kind int

const (
	// KindUnknown is the zero value; normalizing it fails with
	// UnsupportedTypeError.
	KindUnknown Kind = iota
	KindInteger
	KindFloat
	KindTextual
	KindRational
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindTextual:
		return "textual"
	case KindRational:
		return "rational"
	default:
		return "unknown"
	}
}

// Rate is a frame-rate value tagged with its source representation.
// Construct one with Integer, Float, Textual or FromRational; the zero
// value represents an unsupported input.
type Rate struct {
	kind Kind
	i    int
	f    float64
	s    string
	r    Rational
}

// Integer wraps a whole-number rate.
func Integer(n int) Rate { return Rate{kind: KindInteger, i: n} }

// Float wraps a floating-point rate.
func Float(f float64) Rate { return Rate{kind: KindFloat, f: f} }

// Textual wraps a rate read from string-typed metadata. Both decimal
// ("29.97") and fraction ("30000/1001") forms are accepted.
func Textual(s string) Rate { return Rate{kind: KindTextual, s: s} }

// FromRational wraps an already-rational rate.
func FromRational(r Rational) Rate { return Rate{kind: KindRational, r: r} }

// Kind reports the source representation.
func (r Rate) Kind() Kind { return r.kind }

// Value is the outcome of lenient normalization. When Exact is true
// Rational holds the normalized rate; otherwise rational construction
// failed and Float carries the raw numeric value for consumers that
// accept floats.
type Value struct {
	Rational Rational
	Float    float64
	Exact    bool
}

// Float64 returns the numeric value regardless of exactness.
func (v Value) Float64() float64 {
	if v.Exact {
		return v.Rational.Float64()
	}
	return v.Float
}

func (v Value) String() string {
	if v.Exact {
		return v.Rational.String()
	}
	return strconv.FormatFloat(v.Float, 'g', -1, 64)
}

// Float64 returns the plain numeric value of the rate, for consumers
// that only need a float. Textual rates are parsed strictly; a string
// that is not a valid float fails with ErrInvalidFrameRate.
func (r Rate) Float64() (float64, error) {
	switch r.kind {
	case KindInteger:
		return float64(r.i), nil
	case KindFloat:
		if math.IsNaN(r.f) || math.IsInf(r.f, 0) {
			return 0, &InvalidRateError{Value: strconv.FormatFloat(r.f, 'g', -1, 64)}
		}
		return r.f, nil
	case KindTextual:
		s := strings.TrimSpace(r.s)
		if num, den, ok := strings.Cut(s, "/"); ok {
			n, errN := strconv.Atoi(strings.TrimSpace(num))
			d, errD := strconv.Atoi(strings.TrimSpace(den))
			if errN != nil || errD != nil || d == 0 {
				return 0, &InvalidRateError{Value: r.s}
			}
			return float64(n) / float64(d), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, &InvalidRateError{Value: r.s}
		}
		return f, nil
	case KindRational:
		if r.r.Den == 0 {
			return 0, &InvalidRateError{Value: r.r.String()}
		}
		return r.r.Float64(), nil
	default:
		return 0, &UnsupportedTypeError{Kind: r.kind}
	}
}

// Normalize converts the rate into an exact rational with denominator
// at most MaxDenominator.
//
// Integer rates (including integer-valued floats and strings) become
// (n, 1). Non-integer values are approximated by the best rational
// within the denominator bound, so broadcast rates like 29.97 and
// 59.94 land on their standard fractions rather than an arbitrary
// nearby one. Already-rational input passes through reduced, re-bounded
// if its denominator exceeds MaxDenominator.
func (r Rate) Normalize() (Rational, error) {
	v, err := r.Resolve()
	if err != nil {
		return Rational{}, err
	}
	if !v.Exact {
		return Rational{}, &InvalidRateError{Value: strconv.FormatFloat(v.Float, 'g', -1, 64)}
	}
	return v.Rational, nil
}

// Resolve normalizes like Normalize but degrades gracefully: when the
// input is numeric yet rational construction fails, it returns a
// non-exact Value carrying the raw float instead of an error, since
// newer container libraries accept floats directly.
func (r Rate) Resolve() (Value, error) {
	if r.kind == KindRational {
		if r.r.Den == 0 {
			return Value{}, &InvalidRateError{Value: r.r.String()}
		}
		red := r.r.Reduced()
		if red.Den <= MaxDenominator {
			return Value{Rational: red, Exact: true}, nil
		}
		// Oversized denominator: re-approximate within the bound.
		return resolveFloat(red.Float64()), nil
	}

	f, err := r.Float64()
	if err != nil {
		return Value{}, err
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<52 {
		return Value{Rational: Rational{Num: int(f), Den: 1}, Exact: true}, nil
	}
	return resolveFloat(f), nil
}

func resolveFloat(f float64) Value {
	if rat, ok := limitDenominator(f, MaxDenominator); ok {
		return Value{Rational: rat, Exact: true}
	}
	return Value{Float: f}
}

// limitDenominator finds the closest rational to x with denominator at
// most maxDen, walking continued-fraction convergents and picking the
// better of the two final semiconvergents.
func limitDenominator(x float64, maxDen int64) (Rational, bool) {
	exact := new(big.Rat).SetFloat64(x)
	if exact == nil {
		return Rational{}, false
	}

	neg := exact.Sign() < 0
	if neg {
		exact.Neg(exact)
	}

	n := new(big.Int).Set(exact.Num())
	d := new(big.Int).Set(exact.Denom())
	bound := big.NewInt(maxDen)

	if d.Cmp(bound) <= 0 {
		return signRational(n, d, neg)
	}

	p0, q0 := big.NewInt(0), big.NewInt(1)
	p1, q1 := big.NewInt(1), big.NewInt(0)
	for {
		a := new(big.Int).Quo(n, d)
		q2 := new(big.Int).Add(q0, new(big.Int).Mul(a, q1))
		if q2.Cmp(bound) > 0 {
			break
		}
		p2 := new(big.Int).Add(p0, new(big.Int).Mul(a, p1))
		p0, q0, p1, q1 = p1, q1, p2, q2
		n, d = d, new(big.Int).Sub(n, new(big.Int).Mul(a, d))
	}

	// Best semiconvergent below the bound versus the last convergent.
	k := new(big.Int).Quo(new(big.Int).Sub(bound, q0), q1)
	pa := new(big.Int).Add(p0, new(big.Int).Mul(k, p1))
	qa := new(big.Int).Add(q0, new(big.Int).Mul(k, q1))

	candA := new(big.Rat).SetFrac(pa, qa)
	candB := new(big.Rat).SetFrac(p1, q1)
	distA := new(big.Rat).Sub(candA, exact)
	distB := new(big.Rat).Sub(candB, exact)
	if distA.Abs(distA).Cmp(distB.Abs(distB)) < 0 {
		return signRational(pa, qa, neg)
	}
	return signRational(p1, q1, neg)
}

func signRational(num, den *big.Int, neg bool) (Rational, bool) {
	if !num.IsInt64() || !den.IsInt64() {
		return Rational{}, false
	}
	r := Rational{Num: int(num.Int64()), Den: int(den.Int64())}
	if neg {
		r.Num = -r.Num
	}
	return r.Reduced(), true
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
