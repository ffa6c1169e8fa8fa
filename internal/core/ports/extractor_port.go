package ports

import (
	"context"

	"github.com/bikelogic/garage-service/internal/core/domain"
)

// ExtractorPort is the generative extraction service. Output is a
// best-effort guess and must be treated as untrusted input.
type ExtractorPort interface {
	ExtractBikeData(ctx context.Context, query string) (*domain.ExtractedBike, error)
	SearchProductDeals(ctx context.Context, productName string) (*domain.DealReport, error)
	AnalyzePartImage(ctx context.Context, base64Image string) (string, error)
}
