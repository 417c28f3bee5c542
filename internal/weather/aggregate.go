package weather

import (
	"fmt"
	"math"
)

// AggregateNormal averages the daily mean ((max+min)/2) of each sample year.
// Years with a missing or NaN extreme are excluded rather than counted as zero.
// It fails with ErrWeatherAPI when no year is usable.
func AggregateNormal(md MonthDay, samples []YearSample) (ClimatologyNormal, error) {
	var (
		sum   float64
		years int
	)

	for _, s := range samples {
		if s.MaxC == nil || s.MinC == nil {
			continue
		}
		if math.IsNaN(*s.MaxC) || math.IsNaN(*s.MinC) {
			continue
		}
		sum += (*s.MaxC + *s.MinC) / 2
		years++
	}

	if years == 0 {
		return ClimatologyNormal{}, fmt.Errorf("%w: no reference data for %s", ErrWeatherAPI, md)
	}

	return ClimatologyNormal{
		Date:  md,
		MeanC: sum / float64(years),
		Years: years,
	}, nil
}
