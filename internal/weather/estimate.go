package weather

// EstimatePast approximates the same day's temperature in ReferenceYear by
// subtracting the warming and Little Ice Age offsets from the normal.
func EstimatePast(normal ClimatologyNormal, offsets Offsets) HistoricalEstimate {
	return HistoricalEstimate{
		EstimatedC:    normal.MeanC - offsets.Total(),
		ReferenceYear: ReferenceYear,
	}
}
