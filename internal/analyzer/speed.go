package analyzer

import (
	"time"

	"webPageProbeGO/internal/models"
)

// ClassifySpeed maps elapsed fetch time to a qualitative rating
func ClassifySpeed(elapsed time.Duration) models.SpeedRating {
	seconds := elapsed.Seconds()
	switch {
	case seconds < 1:
		return models.SpeedExcellent
	case seconds < 2:
		return models.SpeedGood
	case seconds < 3:
		return models.SpeedFair
	case seconds < 5:
		return models.SpeedSlow
	default:
		return models.SpeedVerySlow
	}
}
