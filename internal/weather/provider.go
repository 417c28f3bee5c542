package weather

import "context"

// Geocoder resolves a free-text place name into a Location.
type Geocoder interface {
	Geocode(ctx context.Context, name string) (Location, error)
}

// CurrentProvider fetches today's reading for a location.
type CurrentProvider interface {
	FetchCurrent(ctx context.Context, loc Location) (CurrentReading, error)
}

// NormalProvider fetches the climatological normal for a calendar day.
type NormalProvider interface {
	FetchNormal(ctx context.Context, loc Location, md MonthDay) (ClimatologyNormal, error)
}

// NormalStore is the contract the in-memory normals cache must satisfy.
type NormalStore interface {
	SaveNormal(loc Location, normal ClimatologyNormal)
	GetNormal(loc Location, md MonthDay) (ClimatologyNormal, error)
}

// YearSample is one reference year's daily extremes for the target day.
// A nil value means the archive had no data for that year.
type YearSample struct {
	Year int
	MaxC *float64
	MinC *float64
}
