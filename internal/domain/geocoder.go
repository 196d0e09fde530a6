package domain

import "context"

// UnknownValue fills every place field when reverse geocoding fails.
const UnknownValue = "unknown"

// GeocodeResult is the place a coordinate resolves to. Fields a provider did
// not return are empty.
type GeocodeResult struct {
	Country    string
	City       string
	Street     string
	PostalCode string
}

// UnknownPlace is substituted when no place could be resolved.
var UnknownPlace = GeocodeResult{
	Country:    UnknownValue,
	City:       UnknownValue,
	Street:     UnknownValue,
	PostalCode: UnknownValue,
}

// ReverseGeocoder converts coordinates to place details.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodeResult, error)
}
