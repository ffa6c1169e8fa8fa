package services

import (
	"context"
	"errors"
	"testing"

	"github.com/bikelogic/garage-service/internal/core/domain"
)

type fakeExtractor struct {
	extracted *domain.ExtractedBike
	err       error
}

func (f *fakeExtractor) ExtractBikeData(_ context.Context, _ string) (*domain.ExtractedBike, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.extracted, nil
}

func (f *fakeExtractor) SearchProductDeals(_ context.Context, _ string) (*domain.DealReport, error) {
	return &domain.DealReport{Text: "deal"}, f.err
}

func (f *fakeExtractor) AnalyzePartImage(_ context.Context, _ string) (string, error) {
	return "analysis", f.err
}

func TestBuildBikeDraftMergesExtraction(t *testing.T) {
	svc := NewExtractionService(&fakeExtractor{extracted: &domain.ExtractedBike{
		ExtractedName: "Trek Emonda SL6 2022",
		ExtractedType: domain.Road,
		Specs:         &domain.BikeSpecs{Groupset: "Ultegra"},
	}}, nopLogger{})

	manual := &domain.Bike{Type: domain.Gravel, TotalKm: 1500}
	draft, err := svc.BuildBikeDraft(context.Background(), "trek emonda", manual)
	if err != nil {
		t.Fatalf("BuildBikeDraft: %v", err)
	}
	if draft.Name != "Trek Emonda SL6 2022" {
		t.Errorf("name = %q", draft.Name)
	}
	if draft.Type != domain.Road {
		t.Errorf("type = %q, extracted type should win", draft.Type)
	}
	if draft.TotalKm != 1500 {
		t.Errorf("manual mileage lost: %v", draft.TotalKm)
	}
	if draft.Specs == nil || draft.Specs.Groupset != "Ultegra" {
		t.Errorf("specs = %+v", draft.Specs)
	}
	if manual.Name != "" {
		t.Error("manual draft mutated")
	}
}

func TestBuildBikeDraftInvalidTypeKeepsManual(t *testing.T) {
	svc := NewExtractionService(&fakeExtractor{extracted: &domain.ExtractedBike{
		ExtractedName: "Some Bike",
		ExtractedType: "ebike",
	}}, nopLogger{})

	draft, err := svc.BuildBikeDraft(context.Background(), "some bike", &domain.Bike{Type: domain.MTB})
	if err != nil {
		t.Fatalf("BuildBikeDraft: %v", err)
	}
	if draft.Type != domain.MTB {
		t.Errorf("type = %q, invalid extracted type should not win", draft.Type)
	}
}

func TestBuildBikeDraftFallsBackOnFailure(t *testing.T) {
	svc := NewExtractionService(&fakeExtractor{err: domain.ErrExtractionFailed}, nopLogger{})

	draft, err := svc.BuildBikeDraft(context.Background(), "mystery bike", &domain.Bike{Type: domain.Road, TotalKm: 10})
	if err != nil {
		t.Fatalf("extraction failure must not fail the draft: %v", err)
	}
	if draft.Name != "mystery bike" {
		t.Errorf("name = %q, want the query as fallback", draft.Name)
	}
	if draft.Type != domain.Road || draft.TotalKm != 10 {
		t.Errorf("manual fields lost: %+v", draft)
	}
}

func TestBuildBikeDraftSurfacesQuotaAndKeyErrors(t *testing.T) {
	for _, fatal := range []error{domain.ErrQuotaExceeded, domain.ErrAPIKeyMissing} {
		svc := NewExtractionService(&fakeExtractor{err: fatal}, nopLogger{})
		if _, err := svc.BuildBikeDraft(context.Background(), "bike", &domain.Bike{}); !errors.Is(err, fatal) {
			t.Errorf("err = %v, want %v surfaced", err, fatal)
		}
	}
}
