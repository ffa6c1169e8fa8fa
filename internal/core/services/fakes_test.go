package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/bikelogic/garage-service/internal/core/domain"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var errRemoteDown = errors.New("remote store unavailable")

type nopLogger struct{}

func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Warn(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}

// fakeCache is an in-memory CachePort. failSet makes every write fail,
// for exercising the cache-is-best-effort paths.
type fakeCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	failSet bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (c *fakeCache) Get(key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errors.New("key not found")
	}
	return v, nil
}

func (c *fakeCache) Set(key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSet {
		return errors.New("cache write refused")
	}
	c.data[key] = value
	return nil
}

func (c *fakeCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

type fakeBikeStore struct {
	bikes     []*domain.Bike
	listErr   error
	upsertErr error
	deleteErr error

	upsertCalls int
	deleteCalls int
}

func (s *fakeBikeStore) ListBikes(_ context.Context, _ uuid.UUID) ([]*domain.Bike, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.bikes, nil
}

func (s *fakeBikeStore) UpsertBike(_ context.Context, bike *domain.Bike) error {
	s.upsertCalls++
	if s.upsertErr != nil {
		return s.upsertErr
	}
	for i, b := range s.bikes {
		if b.ID == bike.ID {
			s.bikes[i] = bike
			return nil
		}
	}
	s.bikes = append(s.bikes, bike)
	return nil
}

func (s *fakeBikeStore) DeleteBike(_ context.Context, bikeID uuid.UUID) error {
	s.deleteCalls++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	kept := s.bikes[:0]
	for _, b := range s.bikes {
		if b.ID != bikeID {
			kept = append(kept, b)
		}
	}
	s.bikes = kept
	return nil
}

type fakeMaintenanceStore struct {
	records []*domain.MaintenanceRecord
	history []*domain.MaintenanceHistory

	recordErr  error
	historyErr error
}

func (s *fakeMaintenanceStore) ListRecords(_ context.Context) ([]*domain.MaintenanceRecord, error) {
	if s.recordErr != nil {
		return nil, s.recordErr
	}
	return s.records, nil
}

func (s *fakeMaintenanceStore) UpsertRecord(_ context.Context, record *domain.MaintenanceRecord) error {
	if s.recordErr != nil {
		return s.recordErr
	}
	for i, r := range s.records {
		if r.ID == record.ID {
			s.records[i] = record
			return nil
		}
	}
	s.records = append(s.records, record)
	return nil
}

func (s *fakeMaintenanceStore) DeleteRecord(_ context.Context, recordID uuid.UUID) error {
	if s.recordErr != nil {
		return s.recordErr
	}
	kept := s.records[:0]
	for _, r := range s.records {
		if r.ID != recordID {
			kept = append(kept, r)
		}
	}
	s.records = kept
	return nil
}

func (s *fakeMaintenanceStore) ListHistory(_ context.Context) ([]*domain.MaintenanceHistory, error) {
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	return s.history, nil
}

func (s *fakeMaintenanceStore) UpsertHistory(_ context.Context, entry *domain.MaintenanceHistory) error {
	if s.historyErr != nil {
		return s.historyErr
	}
	for _, h := range s.history {
		if h.ID == entry.ID {
			return nil
		}
	}
	s.history = append(s.history, entry)
	return nil
}

func (s *fakeMaintenanceStore) DeleteHistory(_ context.Context, entryID uuid.UUID) error {
	if s.historyErr != nil {
		return s.historyErr
	}
	kept := s.history[:0]
	for _, h := range s.history {
		if h.ID != entryID {
			kept = append(kept, h)
		}
	}
	s.history = kept
	return nil
}

type fakeWishlistStore struct {
	items []*domain.WishlistItem
	err   error
}

func (s *fakeWishlistStore) ListItems(_ context.Context, _ uuid.UUID) ([]*domain.WishlistItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

func (s *fakeWishlistStore) UpsertItem(_ context.Context, item *domain.WishlistItem) error {
	if s.err != nil {
		return s.err
	}
	for i, it := range s.items {
		if it.ID == item.ID {
			s.items[i] = item
			return nil
		}
	}
	s.items = append(s.items, item)
	return nil
}

func (s *fakeWishlistStore) DeleteItem(_ context.Context, itemID uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	kept := s.items[:0]
	for _, it := range s.items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	s.items = kept
	return nil
}

type fakeSettingStore struct {
	values map[string]json.RawMessage
	getErr error
	putErr error

	putCalls int
}

func newFakeSettingStore() *fakeSettingStore {
	return &fakeSettingStore{values: map[string]json.RawMessage{}}
}

func (s *fakeSettingStore) GetSetting(_ context.Context, _ uuid.UUID, id string) (json.RawMessage, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	v, ok := s.values[id]
	if !ok {
		return nil, errors.New("setting not found")
	}
	return v, nil
}

func (s *fakeSettingStore) PutSetting(_ context.Context, _ uuid.UUID, id string, value json.RawMessage) error {
	s.putCalls++
	if s.putErr != nil {
		return s.putErr
	}
	s.values[id] = value
	return nil
}

func (s *fakeSettingStore) DeleteSetting(_ context.Context, _ uuid.UUID, id string) error {
	delete(s.values, id)
	return nil
}

// fakeStrava scripts the provider side of the OAuth and gear flows.
type fakeStrava struct {
	exchangeToken *domain.StravaToken
	exchangeErr   error

	refreshToken *domain.StravaToken
	refreshErr   error
	refreshCalls int

	athlete *domain.Athlete
	// athleteErrs is consumed one per GetAthlete call; nil entries mean
	// success. An exhausted slice also means success.
	athleteErrs  []error
	athleteCalls int

	gear    map[string]*domain.Gear
	gearErr error
}

func (s *fakeStrava) AuthURL(state string) string {
	return "https://www.strava.com/oauth/authorize?state=" + state
}

func (s *fakeStrava) ExchangeCode(_ context.Context, _ string) (*domain.StravaToken, error) {
	if s.exchangeErr != nil {
		return nil, s.exchangeErr
	}
	return s.exchangeToken, nil
}

func (s *fakeStrava) RefreshToken(_ context.Context, _ string) (*domain.StravaToken, error) {
	s.refreshCalls++
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	copied := *s.refreshToken
	return &copied, nil
}

func (s *fakeStrava) GetAthlete(_ context.Context, _ string) (*domain.Athlete, error) {
	call := s.athleteCalls
	s.athleteCalls++
	if call < len(s.athleteErrs) && s.athleteErrs[call] != nil {
		return nil, s.athleteErrs[call]
	}
	return s.athlete, nil
}

func (s *fakeStrava) GetGear(_ context.Context, _ string, gearID string) (*domain.Gear, error) {
	if s.gearErr != nil {
		return nil, s.gearErr
	}
	g, ok := s.gear[gearID]
	if !ok {
		return nil, errors.New("gear not found")
	}
	return g, nil
}

// testGateway builds a gateway over fresh fakes. remote may be nil for
// cache-only mode.
func testGateway(remote *RemoteStores, cache *fakeCache) *PersistenceGateway {
	return NewPersistenceGateway(remote, cache, nopLogger{}, validator.New(), uuid.MustParse("5b1ce0de-7a6e-4e1f-9a70-3f0c57a1b100"))
}
