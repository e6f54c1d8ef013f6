package core

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestVec3Cross(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vec3
		expected Vec3
	}{
		{"x cross z", V3(1, 0, 0), V3(0, 0, 1), V3(0, -1, 0)},
		{"z cross x", V3(0, 0, 1), V3(1, 0, 0), V3(0, 1, 0)},
		{"y cross x", V3(0, 1, 0), V3(1, 0, 0), V3(0, 0, -1)},
		{"parallel", V3(2, 0, 0), V3(5, 0, 0), V3(0, 0, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.a.Cross(tc.b)
			if got != tc.expected {
				t.Errorf("Cross() = %+v, expected %+v", got, tc.expected)
			}
		})
	}
}

func TestVec3Normalize(t *testing.T) {
	v := V3(3, 0, 4).Normalize()
	if !near(v.Len(), 1) {
		t.Errorf("Normalize() length = %v, expected 1", v.Len())
	}
	if !near(v.X, 0.6) || !near(v.Z, 0.8) {
		t.Errorf("Normalize() = %+v, expected (0.6, 0, 0.8)", v)
	}

	zero := Vec3{}.Normalize()
	if !zero.IsZero() {
		t.Errorf("Normalize() of zero vector = %+v, expected zero", zero)
	}
}

func TestVec3RotateY(t *testing.T) {
	v := V3(1, 0, 0).RotateY(math.Pi / 2)
	if !near(v.X, 0) || !near(v.Z, -1) {
		t.Errorf("RotateY(pi/2) = %+v, expected (0, 0, -1)", v)
	}

	back := v.RotateY(-math.Pi / 2)
	if !near(back.X, 1) || !near(back.Z, 0) {
		t.Errorf("RotateY round trip = %+v, expected (1, 0, 0)", back)
	}
}

func TestSmoothstep(t *testing.T) {
	tests := []struct {
		in, expected float64
	}{
		{-1, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{2, 1},
	}
	for _, tc := range tests {
		if got := Smoothstep(tc.in); !near(got, tc.expected) {
			t.Errorf("Smoothstep(%v) = %v, expected %v", tc.in, got, tc.expected)
		}
	}

	// Monotonic on [0, 1]
	prev := 0.0
	for i := 1; i <= 100; i++ {
		cur := Smoothstep(float64(i) / 100)
		if cur < prev {
			t.Fatalf("Smoothstep not monotonic at %d: %v < %v", i, cur, prev)
		}
		prev = cur
	}
}

func TestClampF(t *testing.T) {
	tests := []struct {
		val, min, max, expected float64
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
	}
	for _, tc := range tests {
		if got := ClampF(tc.val, tc.min, tc.max); got != tc.expected {
			t.Errorf("ClampF(%v, %v, %v) = %v, expected %v", tc.val, tc.min, tc.max, got, tc.expected)
		}
	}
}

func TestInputFrameDirection(t *testing.T) {
	tests := []struct {
		name     string
		actions  []Action
		expected Direction
	}{
		{"none", nil, DirNone},
		{"left", []Action{ActionLeft}, DirNegative},
		{"right", []Action{ActionRight}, DirPositive},
		{"both cancel", []Action{ActionLeft, ActionRight}, DirNone},
		{"serve only", []Action{ActionServe}, DirNone},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := NewInputFrame()
			for _, a := range tc.actions {
				f.Set(a)
			}
			if got := f.Direction(); got != tc.expected {
				t.Errorf("Direction() = %d, expected %d", got, tc.expected)
			}
		})
	}
}

func TestMultiInputFrameClone(t *testing.T) {
	m := NewMultiInputFrame()
	m.Press(2, ActionRight)

	clone := m.Clone()
	m.Clear()

	if !clone.Slot(2).Has(ActionRight) {
		t.Error("Clone() should keep actions after original is cleared")
	}
	if m.Slot(2).Has(ActionRight) {
		t.Error("Clear() should remove actions")
	}
	if m.Slot(7).Has(ActionRight) {
		t.Error("Unknown slot should have empty frame")
	}
}
