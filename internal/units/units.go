// Package units holds the fixed unit conversions applied while normalizing
// provider payloads. The constants match the upstream feeds' documented
// factors and must not be re-derived.
package units

// CelsiusToFahrenheit converts a temperature in degrees Celsius to Fahrenheit.
func CelsiusToFahrenheit(c float64) float64 {
	return c*1.8 + 32
}

// MetersPerSecondToMph converts a speed in meters per second to miles per hour.
func MetersPerSecondToMph(v float64) float64 {
	return v * 2.237
}

// PascalsToInHg converts a pressure in pascals to inches of mercury.
func PascalsToInHg(p float64) float64 {
	return p * 0.0002953
}

// MetersToMiles converts a distance in meters to miles.
func MetersToMiles(m float64) float64 {
	return m * 0.000621371
}

// Float returns a pointer to v. Optional measurement fields are pointers so
// that absent upstream values stay nil.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}

// ConvertPtr applies f to an optional value, passing nil through.
func ConvertPtr(v *float64, f func(float64) float64) *float64 {
	if v == nil {
		return nil
	}
	out := f(*v)
	return &out
}
