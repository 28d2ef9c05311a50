package monitor

import (
	"context"
	"fmt"
	"time"
)

// defaultWebcams is the static webcam catalog shown on the dashboard.
var defaultWebcams = []Webcam{
	{
		WebcamID: "battery-park-ny",
		Name:     "Battery Park Harbor Cam",
		Location: "New York, NY",
		URL:      "https://www.earthcam.com/usa/newyork/batterypark/",
		Category: "harbor",
		IsActive: true,
	},
	{
		WebcamID: "navy-pier-chicago",
		Name:     "Navy Pier Lakefront Cam",
		Location: "Chicago, IL",
		URL:      "https://www.earthcam.com/usa/illinois/chicago/navypier/",
		Category: "lakefront",
		IsActive: true,
	},
	{
		WebcamID: "miami-beach-fl",
		Name:     "South Beach Cam",
		Location: "Miami Beach, FL",
		URL:      "https://www.earthcam.com/usa/florida/miamibeach/",
		Category: "beach",
		IsActive: true,
	},
	{
		WebcamID: "space-needle-sea",
		Name:     "Space Needle Skyline Cam",
		Location: "Seattle, WA",
		URL:      "https://www.spaceneedle.com/webcam/",
		Category: "skyline",
		IsActive: true,
	},
}

// SeedWebcams writes the static webcam catalog into the store. Existing rows
// with the same id are overwritten so catalog edits take effect on restart.
func SeedWebcams(ctx context.Context, store Store) error {
	now := time.Now().UTC()
	for i := range defaultWebcams {
		w := defaultWebcams[i]
		w.CreatedAt = now
		if err := store.SaveWebcam(ctx, &w); err != nil {
			return fmt.Errorf("seed webcam %s: %w", w.WebcamID, err)
		}
	}
	return nil
}
