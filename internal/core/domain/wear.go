package domain

import (
	"math"
	"sort"
)

// CriticalWearPercent is the advisory threshold above which a component
// is flagged for replacement. It never blocks any action.
const CriticalWearPercent = 85

// KmSinceInstall returns how far the bike has travelled on the current
// component. A record installed "in the future" (install km above the
// bike total) yields zero rather than a negative distance.
func KmSinceInstall(totalKm, kmAtInstall float64) float64 {
	if d := totalKm - kmAtInstall; d > 0 {
		return d
	}
	return 0
}

// WearPercent returns the consumed share of a component's expected
// lifespan, rounded and clamped to [0, 100]. A non-positive lifespan is
// treated as fully worn.
func WearPercent(totalKm float64, rec *MaintenanceRecord) int {
	if rec.LifespanLimit <= 0 {
		return 100
	}
	pct := int(math.Round(KmSinceInstall(totalKm, rec.KmAtInstall) / rec.LifespanLimit * 100))
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// ComponentWear is a MaintenanceRecord joined with its derived numbers.
type ComponentWear struct {
	Record         *MaintenanceRecord `json:"record"`
	KmSinceInstall float64            `json:"km_since_install"`
	WearPercent    int                `json:"wear_percent"`
	Critical       bool               `json:"critical"`
}

// BuildWearReport computes wear for every record against the bike's
// current total and sorts descending by wear percent. The sort is
// stable: ties keep their original insertion order.
func BuildWearReport(bike *Bike, records []*MaintenanceRecord) []ComponentWear {
	report := make([]ComponentWear, 0, len(records))
	for _, rec := range records {
		pct := WearPercent(bike.TotalKm, rec)
		report = append(report, ComponentWear{
			Record:         rec,
			KmSinceInstall: KmSinceInstall(bike.TotalKm, rec.KmAtInstall),
			WearPercent:    pct,
			Critical:       pct > CriticalWearPercent,
		})
	}
	sort.SliceStable(report, func(i, j int) bool {
		return report[i].WearPercent > report[j].WearPercent
	})
	return report
}
