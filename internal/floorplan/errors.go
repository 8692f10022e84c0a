package floorplan

import "errors"

var (
	// ErrInvalidFloorPlan is returned when the file is not a GeoJSON
	// FeatureCollection.
	ErrInvalidFloorPlan = errors.New("invalid floor plan")

	// ErrNoNodes is returned when a floor plan defines no waypoints.
	ErrNoNodes = errors.New("floor plan has no waypoints")
)
