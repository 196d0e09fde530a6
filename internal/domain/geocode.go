package domain

import (
	"context"
	"log/slog"
)

// ResolvePlace reverse geocodes coord. If geocoder is nil, the coordinate is
// not valid, or the lookup fails, UnknownPlace is returned (graceful
// degradation). Errors are logged, never propagated.
func ResolvePlace(ctx context.Context, geocoder ReverseGeocoder, coord GpsCoordinate, logger *slog.Logger) GeocodeResult {
	if geocoder == nil || !coord.Valid() {
		return UnknownPlace
	}

	lat, lon := coord.LatLon()
	result, err := geocoder.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"lat", lat,
			"lon", lon,
			"error", NewError(GeocodeService, "", err),
		)
		return UnknownPlace
	}
	return result
}
