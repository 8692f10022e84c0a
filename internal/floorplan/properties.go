package floorplan

import (
	"fmt"

	"github.com/paulmach/orb/geojson"
)

// Property readers return def when key is absent and ErrInvalidFloorPlan
// when it is present with the wrong type.

func stringProp(props geojson.Properties, feature, key, def string) (string, error) {
	raw, ok := props[key]
	if !ok || raw == nil {
		return def, nil
	}
	v, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: feature %s: %s must be a string, got %T", ErrInvalidFloorPlan, feature, key, raw)
	}
	return v, nil
}

func floatProp(props geojson.Properties, feature, key string, def float64) (float64, error) {
	raw, ok := props[key]
	if !ok || raw == nil {
		return def, nil
	}
	v, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: feature %s: %s must be a number, got %T", ErrInvalidFloorPlan, feature, key, raw)
	}
	return v, nil
}

func boolProp(props geojson.Properties, feature, key string, def bool) (bool, error) {
	raw, ok := props[key]
	if !ok || raw == nil {
		return def, nil
	}
	v, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("%w: feature %s: %s must be a bool, got %T", ErrInvalidFloorPlan, feature, key, raw)
	}
	return v, nil
}
