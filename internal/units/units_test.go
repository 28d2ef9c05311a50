package units

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestCelsiusToFahrenheit(t *testing.T) {
	if got := CelsiusToFahrenheit(0); got != 32 {
		t.Errorf("CelsiusToFahrenheit(0) = %v, want 32", got)
	}
	if got := CelsiusToFahrenheit(100); got != 212 {
		t.Errorf("CelsiusToFahrenheit(100) = %v, want 212", got)
	}
	if got := CelsiusToFahrenheit(-40); got != -40 {
		t.Errorf("CelsiusToFahrenheit(-40) = %v, want -40", got)
	}
}

func TestMetersPerSecondToMph(t *testing.T) {
	if got := MetersPerSecondToMph(1); !almostEqual(got, 2.237, 1e-9) {
		t.Errorf("MetersPerSecondToMph(1) = %v, want 2.237", got)
	}
	if got := MetersPerSecondToMph(10); !almostEqual(got, 22.37, 1e-9) {
		t.Errorf("MetersPerSecondToMph(10) = %v, want 22.37", got)
	}
}

func TestPascalsToInHg(t *testing.T) {
	// Standard atmosphere.
	if got := PascalsToInHg(101325); !almostEqual(got, 29.92, 0.01) {
		t.Errorf("PascalsToInHg(101325) = %v, want ~29.92", got)
	}
}

func TestMetersToMiles(t *testing.T) {
	if got := MetersToMiles(1609.344); !almostEqual(got, 1.0, 0.001) {
		t.Errorf("MetersToMiles(1609.344) = %v, want ~1.0", got)
	}
}

func TestConvertPtr(t *testing.T) {
	if got := ConvertPtr(nil, CelsiusToFahrenheit); got != nil {
		t.Errorf("ConvertPtr(nil) = %v, want nil", got)
	}
	got := ConvertPtr(Float(100), CelsiusToFahrenheit)
	if got == nil || *got != 212 {
		t.Errorf("ConvertPtr(100, CelsiusToFahrenheit) = %v, want 212", got)
	}
}
