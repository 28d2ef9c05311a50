package monitor

import "context"

// Target identifies one unit of work within a source's bulk job: a station
// for keyed feeds, a coordinate for gridded feeds, or the zero Target for
// single-shot bulk feeds like the wildfire perimeter query.
type Target struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

// Adapter is the fetch+parse unit dedicated to one external provider.
// Fetch retrieves and normalizes the data for a single target and hands the
// resulting record(s) to the Store; the caller reports the outcome to the
// health tracker. A nil/absent optional field in the upstream payload is
// non-fatal; a missing mandatory field (timestamp, or the key for keyed
// sources) fails the target.
type Adapter interface {
	// Name is the health-tracker source key, e.g. "weather.gov".
	Name() string
	// Token is the manual-refresh token, e.g. "weather".
	Token() string
	// DefaultTargets is the ordered target list the scheduled bulk job walks.
	DefaultTargets() []Target
	Fetch(ctx context.Context, target Target) error
}
