package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bikelogic/garage-service/internal/core/domain"
)

func syncFixture(t *testing.T, strava *fakeStrava) (*SyncService, *PersistenceGateway) {
	t.Helper()
	g := testGateway(nil, newFakeCache())
	tokens := NewTokenManager(g, strava, nopLogger{})
	return NewSyncService(g, tokens, strava, nopLogger{}), g
}

func connectedStrava(athlete *domain.Athlete) *fakeStrava {
	return &fakeStrava{athlete: athlete}
}

func linkBike(t *testing.T, g *PersistenceGateway, name, gearID string, totalKm float64) *domain.Bike {
	t.Helper()
	bike := &domain.Bike{Name: name, Type: domain.Road, TotalKm: totalKm}
	if gearID != "" {
		bike.StravaGearID = &gearID
	}
	if err := g.SaveBike(context.Background(), bike); err != nil {
		t.Fatalf("SaveBike: %v", err)
	}
	return bike
}

func validToken() *domain.StravaToken {
	return &domain.StravaToken{
		AccessToken:  "at",
		RefreshToken: "rt",
		ExpiresAt:    time.Now().Add(2 * time.Hour).Unix(),
	}
}

func TestSyncWithoutTokenIsNoOp(t *testing.T) {
	strava := connectedStrava(&domain.Athlete{})
	svc, g := syncFixture(t, strava)
	linkBike(t, g, "Emonda", "b100", 1000)

	result := svc.SyncLinkedGear(context.Background())
	if result.Changed {
		t.Error("sync without token reported changes")
	}
	if strava.athleteCalls != 0 {
		t.Error("athlete fetched without a token")
	}
}

func TestSyncUpdatesDriftedBikes(t *testing.T) {
	strava := connectedStrava(&domain.Athlete{Bikes: []domain.Gear{
		{ID: "b100", Name: "Emonda", DistanceMeters: 1_523_400}, // 1523.4 km
		{ID: "b200", Name: "Grizl", DistanceMeters: 900_000},    // 900 km, unchanged
	}})
	svc, g := syncFixture(t, strava)
	saveTestToken(t, g, validToken())

	drifted := linkBike(t, g, "Emonda", "b100", 1500)
	steady := linkBike(t, g, "Grizl", "b200", 900)
	unlinked := linkBike(t, g, "Spark", "", 50)

	result := svc.SyncLinkedGear(context.Background())
	if !result.Changed {
		t.Fatal("drift not detected")
	}
	if len(result.UpdatedBikes) != 1 || result.UpdatedBikes[0] != drifted.ID {
		t.Fatalf("UpdatedBikes = %v, want only %s", result.UpdatedBikes, drifted.ID)
	}

	got, err := g.GetBike(context.Background(), drifted.ID)
	if err != nil {
		t.Fatalf("GetBike: %v", err)
	}
	if got.TotalKm != 1523.4 {
		t.Errorf("TotalKm = %v, want 1523.4", got.TotalKm)
	}

	if got, _ := g.GetBike(context.Background(), steady.ID); got.TotalKm != 900 {
		t.Errorf("steady bike rewritten to %v km", got.TotalKm)
	}
	if got, _ := g.GetBike(context.Background(), unlinked.ID); got.TotalKm != 50 {
		t.Errorf("unlinked bike touched: %v km", got.TotalKm)
	}
}

func TestSyncToleratesSubTenthDrift(t *testing.T) {
	strava := connectedStrava(&domain.Athlete{Bikes: []domain.Gear{
		{ID: "b100", DistanceMeters: 1_000_050}, // 1000.05 km vs 1000 stored
	}})
	svc, g := syncFixture(t, strava)
	saveTestToken(t, g, validToken())
	linkBike(t, g, "Emonda", "b100", 1000)

	result := svc.SyncLinkedGear(context.Background())
	if result.Changed {
		t.Errorf("sub-tolerance drift triggered a write: %v", result.UpdatedBikes)
	}
}

func TestSyncFallsBackToGearEndpoint(t *testing.T) {
	// Retired gear is absent from the athlete profile but still
	// resolvable individually.
	strava := connectedStrava(&domain.Athlete{})
	strava.gear = map[string]*domain.Gear{
		"b300": {ID: "b300", DistanceMeters: 2_000_000},
	}
	svc, g := syncFixture(t, strava)
	saveTestToken(t, g, validToken())
	bike := linkBike(t, g, "Old faithful", "b300", 1500)

	result := svc.SyncLinkedGear(context.Background())
	if !result.Changed {
		t.Fatal("gear endpoint fallback did not update the bike")
	}
	got, _ := g.GetBike(context.Background(), bike.ID)
	if got.TotalKm != 2000 {
		t.Errorf("TotalKm = %v, want 2000", got.TotalKm)
	}
}

func TestSyncIsolatesPerBikeFailures(t *testing.T) {
	strava := connectedStrava(&domain.Athlete{Bikes: []domain.Gear{
		{ID: "b100", DistanceMeters: 1_600_000},
	}})
	strava.gearErr = errors.New("gear fetch refused")
	svc, g := syncFixture(t, strava)
	saveTestToken(t, g, validToken())

	healthy := linkBike(t, g, "Emonda", "b100", 1500)
	broken := linkBike(t, g, "Ghost", "b999", 700)

	result := svc.SyncLinkedGear(context.Background())
	if !result.Changed {
		t.Fatal("healthy bike not updated")
	}
	if len(result.UpdatedBikes) != 1 || result.UpdatedBikes[0] != healthy.ID {
		t.Fatalf("UpdatedBikes = %v", result.UpdatedBikes)
	}
	if got, _ := g.GetBike(context.Background(), broken.ID); got.TotalKm != 700 {
		t.Errorf("failed bike mutated: %v km", got.TotalKm)
	}
}

func TestSyncRetriesAfterUnauthorized(t *testing.T) {
	strava := connectedStrava(&domain.Athlete{Bikes: []domain.Gear{
		{ID: "b100", DistanceMeters: 1_600_000},
	}})
	strava.athleteErrs = []error{domain.ErrUnauthorized}
	strava.refreshToken = &domain.StravaToken{
		AccessToken:  "renewed",
		RefreshToken: "rt2",
		ExpiresAt:    time.Now().Add(6 * time.Hour).Unix(),
	}
	svc, g := syncFixture(t, strava)
	saveTestToken(t, g, validToken())
	linkBike(t, g, "Emonda", "b100", 1500)

	result := svc.SyncLinkedGear(context.Background())
	if !result.Changed {
		t.Fatal("sync did not recover from a rejected access token")
	}
	if strava.refreshCalls != 1 {
		t.Errorf("refreshCalls = %d, want 1", strava.refreshCalls)
	}
	if strava.athleteCalls != 2 {
		t.Errorf("athleteCalls = %d, want 2", strava.athleteCalls)
	}
}

func TestSyncGivesUpWhenRefreshFails(t *testing.T) {
	strava := connectedStrava(nil)
	strava.athleteErrs = []error{domain.ErrUnauthorized}
	strava.refreshErr = errors.New("provider down")
	svc, g := syncFixture(t, strava)
	saveTestToken(t, g, validToken())
	linkBike(t, g, "Emonda", "b100", 1500)

	result := svc.SyncLinkedGear(context.Background())
	if result.Changed {
		t.Error("sync reported changes after an unrecoverable auth failure")
	}
}
