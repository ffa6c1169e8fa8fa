package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bikelogic/garage-service/internal/core/domain"
)

func saveTestToken(t *testing.T, g *PersistenceGateway, token *domain.StravaToken) {
	t.Helper()
	if err := g.SaveToken(context.Background(), token); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
}

func TestGetValidTokenNoCredential(t *testing.T) {
	g := testGateway(nil, newFakeCache())
	strava := &fakeStrava{}
	m := NewTokenManager(g, strava, nopLogger{})

	if got := m.GetValidToken(context.Background()); got != nil {
		t.Errorf("GetValidToken = %+v, want nil", got)
	}
	if strava.refreshCalls != 0 {
		t.Error("refresh attempted without a stored token")
	}
}

func TestGetValidTokenFreshTokenUntouched(t *testing.T) {
	g := testGateway(nil, newFakeCache())
	saveTestToken(t, g, &domain.StravaToken{
		AccessToken:  "fresh",
		RefreshToken: "rt",
		ExpiresAt:    time.Now().Add(2 * time.Hour).Unix(),
	})
	strava := &fakeStrava{}
	m := NewTokenManager(g, strava, nopLogger{})

	token := m.GetValidToken(context.Background())
	if token == nil || token.AccessToken != "fresh" {
		t.Fatalf("GetValidToken = %+v", token)
	}
	if strava.refreshCalls != 0 {
		t.Error("fresh token was refreshed")
	}
}

func TestGetValidTokenRefreshesInsideMargin(t *testing.T) {
	g := testGateway(nil, newFakeCache())
	saveTestToken(t, g, &domain.StravaToken{
		AccessToken:  "stale",
		RefreshToken: "rt",
		ExpiresAt:    time.Now().Add(2 * time.Minute).Unix(),
		AthleteID:    42,
	})
	strava := &fakeStrava{refreshToken: &domain.StravaToken{
		AccessToken:  "renewed",
		RefreshToken: "rt2",
		ExpiresAt:    time.Now().Add(6 * time.Hour).Unix(),
	}}
	m := NewTokenManager(g, strava, nopLogger{})

	token := m.GetValidToken(context.Background())
	if token == nil || token.AccessToken != "renewed" {
		t.Fatalf("GetValidToken = %+v, want renewed token", token)
	}
	if strava.refreshCalls != 1 {
		t.Errorf("refreshCalls = %d, want 1", strava.refreshCalls)
	}
	if token.AthleteID != 42 {
		t.Errorf("athlete id not carried over: %d", token.AthleteID)
	}

	// The renewed credential is persisted, not just returned.
	stored := g.LoadToken(context.Background())
	if stored == nil || stored.AccessToken != "renewed" {
		t.Errorf("stored token = %+v, want renewed", stored)
	}
}

func TestGetValidTokenFailedRefreshKeepsStale(t *testing.T) {
	g := testGateway(nil, newFakeCache())
	saveTestToken(t, g, &domain.StravaToken{
		AccessToken:  "stale",
		RefreshToken: "rt",
		ExpiresAt:    time.Now().Add(-time.Hour).Unix(),
	})
	strava := &fakeStrava{refreshErr: errors.New("provider down")}
	m := NewTokenManager(g, strava, nopLogger{})

	if got := m.GetValidToken(context.Background()); got != nil {
		t.Errorf("GetValidToken after failed refresh = %+v, want nil", got)
	}

	// The stale credential stays for the next attempt.
	stored := g.LoadToken(context.Background())
	if stored == nil || stored.AccessToken != "stale" {
		t.Errorf("stale token lost after failed refresh: %+v", stored)
	}
}

func TestForceRefreshIgnoresExpiry(t *testing.T) {
	g := testGateway(nil, newFakeCache())
	saveTestToken(t, g, &domain.StravaToken{
		AccessToken:  "looks-valid",
		RefreshToken: "rt",
		ExpiresAt:    time.Now().Add(5 * time.Hour).Unix(),
	})
	strava := &fakeStrava{refreshToken: &domain.StravaToken{
		AccessToken:  "renewed",
		RefreshToken: "rt2",
		ExpiresAt:    time.Now().Add(6 * time.Hour).Unix(),
	}}
	m := NewTokenManager(g, strava, nopLogger{})

	token := m.ForceRefresh(context.Background())
	if token == nil || token.AccessToken != "renewed" {
		t.Fatalf("ForceRefresh = %+v", token)
	}
	if strava.refreshCalls != 1 {
		t.Errorf("refreshCalls = %d, want 1", strava.refreshCalls)
	}
}

func TestExchangeAuthorizationCode(t *testing.T) {
	g := testGateway(nil, newFakeCache())
	strava := &fakeStrava{exchangeToken: &domain.StravaToken{
		AccessToken:  "granted",
		RefreshToken: "rt",
		ExpiresAt:    time.Now().Add(6 * time.Hour).Unix(),
		AthleteID:    9,
	}}
	m := NewTokenManager(g, strava, nopLogger{})

	token, err := m.ExchangeAuthorizationCode(context.Background(), "code123")
	if err != nil {
		t.Fatalf("ExchangeAuthorizationCode: %v", err)
	}
	if token.AccessToken != "granted" {
		t.Errorf("token = %+v", token)
	}

	stored := g.LoadToken(context.Background())
	if stored == nil || stored.AthleteID != 9 {
		t.Errorf("exchanged token not persisted: %+v", stored)
	}
}

func TestExchangeAuthorizationCodeRejected(t *testing.T) {
	g := testGateway(nil, newFakeCache())
	strava := &fakeStrava{exchangeErr: domain.ErrUnauthorized}
	m := NewTokenManager(g, strava, nopLogger{})

	if _, err := m.ExchangeAuthorizationCode(context.Background(), "bad"); err == nil {
		t.Fatal("rejected code did not error")
	}
	if g.LoadToken(context.Background()) != nil {
		t.Error("token stored despite rejected exchange")
	}
}

func TestDisconnectDropsToken(t *testing.T) {
	g := testGateway(nil, newFakeCache())
	saveTestToken(t, g, &domain.StravaToken{
		AccessToken:  "at",
		RefreshToken: "rt",
		ExpiresAt:    time.Now().Add(time.Hour).Unix(),
	})
	m := NewTokenManager(g, &fakeStrava{}, nopLogger{})

	m.Disconnect(context.Background())
	if g.LoadToken(context.Background()) != nil {
		t.Error("token survives disconnect")
	}
}
