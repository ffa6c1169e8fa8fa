package services

import (
	"context"
	"errors"

	"github.com/bikelogic/garage-service/internal/core/domain"
	"github.com/bikelogic/garage-service/internal/core/ports"
)

// ExtractionService merges the extraction service's best-effort guess
// into a bike draft. The guess is untrusted: any missing or invalid
// piece falls back to the manually entered fields, and "no usable data"
// is never fatal to the add-bike flow. Quota and missing-key failures
// are surfaced so the UI can tell the user to retry later.
type ExtractionService struct {
	extractor ports.ExtractorPort
	logger    ports.LoggerPort
}

func NewExtractionService(extractor ports.ExtractorPort, logger ports.LoggerPort) *ExtractionService {
	return &ExtractionService{
		extractor: extractor,
		logger:    logger,
	}
}

// BuildBikeDraft fills a bike draft for the given free-text query. The
// manual draft carries the user's fallback type and mileage.
func (s *ExtractionService) BuildBikeDraft(ctx context.Context, query string, manual *domain.Bike) (*domain.Bike, error) {
	draft := *manual
	if draft.Name == "" {
		draft.Name = query
	}

	extracted, err := s.extractor.ExtractBikeData(ctx, query)
	if err != nil {
		if errors.Is(err, domain.ErrQuotaExceeded) || errors.Is(err, domain.ErrAPIKeyMissing) {
			return nil, err
		}
		s.logger.Warn("Extraction unusable, keeping manual fields", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return &draft, nil
	}

	if extracted.ExtractedName != "" {
		draft.Name = extracted.ExtractedName
	}
	if extracted.ExtractedType.Valid() {
		draft.Type = extracted.ExtractedType
	}
	if extracted.Specs != nil {
		draft.Specs = extracted.Specs
	}

	s.logger.Info("Extraction merged into bike draft", map[string]interface{}{
		"query": query,
		"name":  draft.Name,
	})
	return &draft, nil
}

// Extract runs the raw spec lookup without the manual fallback; every
// failure is surfaced.
func (s *ExtractionService) Extract(ctx context.Context, query string) (*domain.ExtractedBike, error) {
	return s.extractor.ExtractBikeData(ctx, query)
}

// ProductDeals runs the price search for a product name.
func (s *ExtractionService) ProductDeals(ctx context.Context, productName string) (*domain.DealReport, error) {
	return s.extractor.SearchProductDeals(ctx, productName)
}

// AnalyzePartImage runs the vision wear assessment on a base64 photo.
func (s *ExtractionService) AnalyzePartImage(ctx context.Context, base64Image string) (string, error) {
	return s.extractor.AnalyzePartImage(ctx, base64Image)
}
