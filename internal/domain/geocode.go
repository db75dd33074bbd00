package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNoCoordinates is returned when a location cannot be placed on the map.
var ErrNoCoordinates = errors.New("location has no coordinates")

// ResolveLocation fills in whatever the configured location is missing.
// Without coordinates the name is forward geocoded; failure there is fatal
// because no forecast can be requested. With coordinates but no name the
// coordinates are reverse geocoded for a display label, and failure only
// degrades the message.
func ResolveLocation(ctx context.Context, loc Location, geocoder Geocoder, logger *slog.Logger) (Location, error) {
	if !loc.HasCoords() {
		if geocoder == nil || loc.Name == "" {
			return loc, ErrNoCoordinates
		}
		result, err := geocoder.ForwardGeocode(ctx, loc.Name)
		if err != nil {
			return loc, fmt.Errorf("forward geocode %q: %w", loc.Name, err)
		}
		if result.Lat == 0 && result.Lon == 0 {
			return loc, fmt.Errorf("forward geocode %q: %w", loc.Name, ErrNoCoordinates)
		}
		loc.Lat = result.Lat
		loc.Lon = result.Lon
		logger.Info("location geocoded",
			"name", loc.Name,
			"lat", loc.Lat,
			"lon", loc.Lon,
			"place", result.FormattedAddress,
			"confidence", result.Confidence,
		)
		return loc, nil
	}

	if loc.Name != "" || geocoder == nil {
		return loc, nil
	}

	result, err := geocoder.ReverseGeocode(ctx, loc.Lat, loc.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"lat", loc.Lat,
			"lon", loc.Lon,
			"error", err,
		)
		return loc, nil
	}
	loc.Name = result.PlaceName
	return loc, nil
}
