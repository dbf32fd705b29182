package checked

import (
	"math"
	"testing"
)

func TestAddInt64(t *testing.T) {
	cases := []struct {
		a, b, want int64
		ok         bool
	}{
		{1, 2, 3, true},
		{-1, -2, -3, true},
		{math.MaxInt64, 1, 0, false},
		{math.MinInt64, -1, 0, false},
		{math.MaxInt64, -1, math.MaxInt64 - 1, true},
	}
	for _, tc := range cases {
		got, ok := AddInt64(tc.a, tc.b)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("AddInt64(%d, %d) = %d, %v, want %d, %v", tc.a, tc.b, got, ok, tc.want, tc.ok)
		}
	}
}

func TestMulInt64(t *testing.T) {
	cases := []struct {
		a, b, want int64
		ok         bool
	}{
		{3, 4, 12, true},
		{-3, 4, -12, true},
		{math.MaxInt64, 2, 0, false},
		{math.MinInt64, -1, 0, false},
		{0, math.MaxInt64, 0, true},
	}
	for _, tc := range cases {
		got, ok := MulInt64(tc.a, tc.b)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("MulInt64(%d, %d) = %d, %v, want %d, %v", tc.a, tc.b, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDivModInt64(t *testing.T) {
	if _, ok := DivInt64(1, 0); ok {
		t.Error("DivInt64(1, 0) did not fail")
	}
	if _, ok := ModInt64(1, 0); ok {
		t.Error("ModInt64(1, 0) did not fail")
	}
	if _, ok := DivInt64(math.MinInt64, -1); ok {
		t.Error("DivInt64(MinInt64, -1) did not fail")
	}
	if got, ok := DivInt64(-7, 2); !ok || got != -3 {
		t.Errorf("DivInt64(-7, 2) = %d, %v", got, ok)
	}
	if got, ok := ModInt64(-7, 2); !ok || got != -1 {
		t.Errorf("ModInt64(-7, 2) = %d, %v", got, ok)
	}
}

func TestNegateInt64(t *testing.T) {
	if _, ok := NegateInt64(math.MinInt64); ok {
		t.Error("NegateInt64(MinInt64) did not fail")
	}
	if got, ok := NegateInt64(5); !ok || got != -5 {
		t.Errorf("NegateInt64(5) = %d, %v", got, ok)
	}
}
