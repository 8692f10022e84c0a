package session

import (
	"context"
	"sync"

	"evac-navigator/internal/geom"
)

// Region is an area that counts as having left the building.
type Region interface {
	Contains(p geom.Vec3) bool
}

// ZoneWatcher ends the drill the first time an observed position falls in
// one of its regions.
type ZoneWatcher struct {
	tracker *Tracker
	regions []Region

	once sync.Once
}

func NewZoneWatcher(t *Tracker, regions ...Region) *ZoneWatcher {
	return &ZoneWatcher{tracker: t, regions: regions}
}

// Observe checks p against every region. It reports whether p is inside one;
// the first such observation reaches the exit and returns any reporting
// error.
func (w *ZoneWatcher) Observe(ctx context.Context, p geom.Vec3) (bool, error) {
	for _, r := range w.regions {
		if !r.Contains(p) {
			continue
		}
		var err error
		w.once.Do(func() { err = w.tracker.ReachExit(ctx) })
		return true, err
	}
	return false, nil
}
