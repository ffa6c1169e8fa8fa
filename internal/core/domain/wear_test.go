package domain

import "testing"

func TestWearPercent(t *testing.T) {
	tests := []struct {
		name        string
		totalKm     float64
		kmAtInstall float64
		lifespan    float64
		want        int
	}{
		{"half worn", 3000, 1500, 3000, 50},
		{"fresh install", 2000, 2000, 3000, 0},
		{"worn past limit clamps", 10000, 1000, 3000, 100},
		{"install above total clamps low", 1000, 2000, 3000, 0},
		{"zero lifespan is fully worn", 500, 0, 0, 100},
		{"negative lifespan is fully worn", 500, 0, -100, 100},
		{"rounds half up", 3000, 0, 8000, 38},
		{"just over critical", 2581, 0, 3000, 86},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &MaintenanceRecord{KmAtInstall: tt.kmAtInstall, LifespanLimit: tt.lifespan}
			if got := WearPercent(tt.totalKm, rec); got != tt.want {
				t.Errorf("WearPercent(%v, install=%v, lifespan=%v) = %d, want %d",
					tt.totalKm, tt.kmAtInstall, tt.lifespan, got, tt.want)
			}
		})
	}
}

func TestWearPercentMonotonic(t *testing.T) {
	rec := &MaintenanceRecord{KmAtInstall: 0, LifespanLimit: 3000}
	prev := 0
	for km := 0.0; km <= 6000; km += 50 {
		pct := WearPercent(km, rec)
		if pct < prev {
			t.Fatalf("wear decreased from %d to %d at %v km", prev, pct, km)
		}
		if pct < 0 || pct > 100 {
			t.Fatalf("wear %d out of range at %v km", pct, km)
		}
		prev = pct
	}
}

func TestKmSinceInstall(t *testing.T) {
	if got := KmSinceInstall(3000, 1200); got != 1800 {
		t.Errorf("KmSinceInstall(3000, 1200) = %v, want 1800", got)
	}
	if got := KmSinceInstall(1000, 2500); got != 0 {
		t.Errorf("KmSinceInstall(1000, 2500) = %v, want 0", got)
	}
}

func TestBuildWearReportSortsDescending(t *testing.T) {
	bike := &Bike{TotalKm: 3000}
	records := []*MaintenanceRecord{
		{ComponentName: "tires", KmAtInstall: 1500, LifespanLimit: 4000},    // 38%
		{ComponentName: "chain", KmAtInstall: 0, LifespanLimit: 3000},       // 100%
		{ComponentName: "brake pads", KmAtInstall: 2000, LifespanLimit: 2000}, // 50%
	}

	report := BuildWearReport(bike, records)
	if len(report) != 3 {
		t.Fatalf("report has %d entries, want 3", len(report))
	}

	wantOrder := []string{"chain", "brake pads", "tires"}
	for i, name := range wantOrder {
		if report[i].Record.ComponentName != name {
			t.Errorf("report[%d] = %q, want %q", i, report[i].Record.ComponentName, name)
		}
	}

	if !report[0].Critical {
		t.Error("fully worn chain should be critical")
	}
	if report[1].Critical {
		t.Error("brake pads at 50% should not be critical")
	}
}

func TestBuildWearReportStableOnTies(t *testing.T) {
	bike := &Bike{TotalKm: 1000}
	records := []*MaintenanceRecord{
		{ComponentName: "first", KmAtInstall: 0, LifespanLimit: 2000},
		{ComponentName: "second", KmAtInstall: 0, LifespanLimit: 2000},
		{ComponentName: "third", KmAtInstall: 0, LifespanLimit: 2000},
	}

	report := BuildWearReport(bike, records)
	for i, name := range []string{"first", "second", "third"} {
		if report[i].Record.ComponentName != name {
			t.Errorf("tie order broken: report[%d] = %q, want %q", i, report[i].Record.ComponentName, name)
		}
	}
}

func TestCriticalThresholdIsExclusive(t *testing.T) {
	bike := &Bike{TotalKm: 850}
	report := BuildWearReport(bike, []*MaintenanceRecord{
		{ComponentName: "chain", KmAtInstall: 0, LifespanLimit: 1000},
	})
	if report[0].WearPercent != 85 {
		t.Fatalf("wear = %d, want 85", report[0].WearPercent)
	}
	if report[0].Critical {
		t.Error("exactly 85% must not be critical")
	}
}
