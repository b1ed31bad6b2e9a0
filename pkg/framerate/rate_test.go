package framerate

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"
)

func TestNormalize_Integers(t *testing.T) {
	for _, n := range []int{0, 1, 24, 25, 30, 60, 120} {
		got, err := Integer(n).Normalize()
		if err != nil {
			t.Fatalf("Normalize(%d) failed: %v", n, err)
		}
		if got != (Rational{Num: n, Den: 1}) {
			t.Errorf("Normalize(%d) = %v, want %d/1", n, got, n)
		}
	}
}

func TestNormalize_IntegerValuedFloat(t *testing.T) {
	got, err := Float(25.0).Normalize()
	if err != nil {
		t.Fatalf("Normalize(25.0) failed: %v", err)
	}
	if got != (Rational{Num: 25, Den: 1}) {
		t.Errorf("Normalize(25.0) = %v, want 25/1", got)
	}
}

func TestNormalize_BroadcastRates(t *testing.T) {
	tests := []struct {
		in   float64
		want Rational
	}{
		{29.97, Rational{2997, 100}},
		{59.94, Rational{2997, 50}},
		{23.976, Rational{2997, 125}},
	}
	for _, tt := range tests {
		got, err := Float(tt.in).Normalize()
		if err != nil {
			t.Fatalf("Normalize(%v) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if got.Den > MaxDenominator {
			t.Errorf("Normalize(%v) denominator %d exceeds %d", tt.in, got.Den, MaxDenominator)
		}
		if diff := math.Abs(got.Float64() - tt.in); diff >= 0.001 {
			t.Errorf("Normalize(%v) evaluates to %v, off by %v", tt.in, got.Float64(), diff)
		}
	}
}

func TestNormalize_TextualMatchesFloat(t *testing.T) {
	for _, s := range []string{"24", "29.97", "59.94", "23.976", " 30 ", "0.5"} {
		fromText, err := Textual(s).Normalize()
		if err != nil {
			t.Fatalf("Normalize(%q) failed: %v", s, err)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			t.Fatalf("ParseFloat(%q) failed: %v", s, err)
		}
		fromFloat, err := Float(f).Normalize()
		if err != nil {
			t.Fatalf("Normalize(%v) failed: %v", f, err)
		}
		if fromText != fromFloat {
			t.Errorf("Normalize(%q) = %v, Normalize(%v) = %v; want equal", s, fromText, f, fromFloat)
		}
	}
}

func TestNormalize_FractionText(t *testing.T) {
	// 30000/1001 cannot pass through (den > 1000); the best bounded
	// approximation is the semiconvergent 19001/634, off by 1.6e-6.
	got, err := Textual("30000/1001").Normalize()
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got != (Rational{Num: 19001, Den: 634}) {
		t.Errorf("got %v, want 19001/634", got)
	}
}

func TestNormalize_InvalidText(t *testing.T) {
	for _, s := range []string{"", "abc", "30fps", "29,97", "30/0", "a/b"} {
		_, err := Textual(s).Normalize()
		if !errors.Is(err, ErrInvalidFrameRate) {
			t.Errorf("Normalize(%q) error = %v, want ErrInvalidFrameRate", s, err)
		}
		var ire *InvalidRateError
		if !errors.As(err, &ire) {
			t.Errorf("Normalize(%q) error does not carry the offending value", s)
		}
	}
}

func TestNormalize_NonFiniteFloat(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := Float(f).Normalize(); !errors.Is(err, ErrInvalidFrameRate) {
			t.Errorf("Normalize(%v) error = %v, want ErrInvalidFrameRate", f, err)
		}
	}
}

func TestNormalize_RationalPassthrough(t *testing.T) {
	got, err := FromRational(Rational{Num: 24, Den: 1}).Normalize()
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got != (Rational{24, 1}) {
		t.Errorf("got %v, want 24/1", got)
	}

	// Reduced on the way through.
	got, err = FromRational(Rational{Num: 48, Den: 2}).Normalize()
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got != (Rational{24, 1}) {
		t.Errorf("got %v, want 24/1", got)
	}
}

func TestNormalize_RationalOversizedDenominator(t *testing.T) {
	// 30000/1001 exceeds the denominator bound and is re-approximated.
	got, err := FromRational(Rational{Num: 30000, Den: 1001}).Normalize()
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got.Den > MaxDenominator {
		t.Fatalf("denominator %d exceeds %d", got.Den, MaxDenominator)
	}
	// Must agree with the textual path and land on the best bounded
	// approximation, not merely a close one.
	if got != (Rational{Num: 19001, Den: 634}) {
		t.Errorf("got %v, want 19001/634", got)
	}
	if diff := math.Abs(got.Float64() - 30000.0/1001.0); diff >= 0.001 {
		t.Errorf("re-approximation off by %v", diff)
	}
}

func TestNormalize_ZeroDenominator(t *testing.T) {
	if _, err := FromRational(Rational{Num: 30, Den: 0}).Normalize(); !errors.Is(err, ErrInvalidFrameRate) {
		t.Errorf("error = %v, want ErrInvalidFrameRate", err)
	}
}

func TestNormalize_UnsupportedKind(t *testing.T) {
	var zero Rate
	_, err := zero.Normalize()
	var ute *UnsupportedTypeError
	if !errors.As(err, &ute) {
		t.Fatalf("error = %v, want UnsupportedTypeError", err)
	}
	if ute.Kind != KindUnknown {
		t.Errorf("reported kind = %v, want unknown", ute.Kind)
	}
}

func TestFloat64_Textual(t *testing.T) {
	f, err := Textual("29.97").Float64()
	if err != nil {
		t.Fatalf("Float64 failed: %v", err)
	}
	if f != 29.97 {
		t.Errorf("got %v, want 29.97", f)
	}

	if _, err := Textual("not-a-rate").Float64(); !errors.Is(err, ErrInvalidFrameRate) {
		t.Errorf("error = %v, want ErrInvalidFrameRate", err)
	}
}

func TestResolve_ExactValue(t *testing.T) {
	v, err := Float(29.97).Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !v.Exact {
		t.Fatal("expected exact rational")
	}
	if v.Rational != (Rational{2997, 100}) {
		t.Errorf("got %v, want 2997/100", v.Rational)
	}
	if v.Float64() != v.Rational.Float64() {
		t.Errorf("Float64 mismatch: %v vs %v", v.Float64(), v.Rational.Float64())
	}
}

func TestRational_Reduced(t *testing.T) {
	tests := []struct {
		in, want Rational
	}{
		{Rational{4, 2}, Rational{2, 1}},
		{Rational{2997, 100}, Rational{2997, 100}},
		{Rational{-30, -1}, Rational{30, 1}},
		{Rational{30, -2}, Rational{-15, 1}},
	}
	for _, tt := range tests {
		if got := tt.in.Reduced(); got != tt.want {
			t.Errorf("Reduced(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
