package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bikelogic/garage-service/internal/core/domain"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	searchModel    = "gemini-3-flash-preview"
	visionModel    = "gemini-3-flash-preview"

	visionPrompt = "Analyze this bicycle part (e.g. chain, cassette, brake pads). " +
		"Rate the wear on a scale from 1 to 10 and give short technical advice."
)

// Extractor is the Gemini REST client behind ports.ExtractorPort. The
// model's output is free text with a JSON blob somewhere inside; the
// blob is carved out and parsed, and anything that fails to parse is
// reported as ErrExtractionFailed so callers fall back to manual input.
type Extractor struct {
	apiKey  string
	baseURL string
	hc      *http.Client
}

func NewExtractor(apiKey string) *Extractor {
	return &Extractor{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		hc:      &http.Client{Timeout: 60 * time.Second},
	}
}

// WithBaseURL overrides the API host, for tests.
func (e *Extractor) WithBaseURL(base string) *Extractor {
	e.baseURL = base
	return e
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	Tools            []tool            `json:"tools,omitempty"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type tool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

// extractedPayload is the JSON structure the search prompt asks for.
type extractedPayload struct {
	ExtractedName string `json:"extracted_name"`
	ExtractedType string `json:"extracted_type"`
	Specs         *struct {
		Frame        string `json:"frame"`
		Fork         string `json:"fork"`
		Groupset     string `json:"groupset"`
		Brakes       string `json:"brakes"`
		Wheels       string `json:"wheels"`
		Tires        string `json:"tires"`
		ClearanceMax string `json:"clearance_max"`
		Weight       string `json:"weight"`
		ImageURL     string `json:"image_url"`
	} `json:"specs"`
}

func (e *Extractor) ExtractBikeData(ctx context.Context, query string) (*domain.ExtractedBike, error) {
	prompt := fmt.Sprintf(`Find the official technical details for the bicycle: %q.
You MUST answer with a single JSON object and nothing else.
Include the fork model, the stock tire model, the maximum tire clearance and an official image URL.

JSON structure:
{
  "extracted_name": "Brand Model Year",
  "extracted_type": "road" | "gravel" | "mtb",
  "specs": {
    "frame": "...",
    "fork": "...",
    "groupset": "...",
    "brakes": "...",
    "wheels": "...",
    "tires": "stock model and size",
    "clearance_max": "maximum supported size (e.g. 45mm or 2.4\")",
    "weight": "...",
    "image_url": "image URL found"
  }
}`, query)

	resp, err := e.generate(ctx, searchModel, generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		Tools:            []tool{{GoogleSearch: &struct{}{}}},
		GenerationConfig: &generationConfig{Temperature: 0.1},
	})
	if err != nil {
		return nil, err
	}

	blob := carveJSON(resp.text())
	if blob == "" {
		return nil, fmt.Errorf("no JSON object in model output: %w", domain.ErrExtractionFailed)
	}
	var payload extractedPayload
	if err := json.Unmarshal([]byte(blob), &payload); err != nil {
		return nil, fmt.Errorf("undecodable model output: %w", domain.ErrExtractionFailed)
	}

	extracted := &domain.ExtractedBike{
		ExtractedName: payload.ExtractedName,
		ExtractedType: domain.BikeType(strings.ToLower(payload.ExtractedType)),
	}
	if payload.Specs != nil {
		extracted.Specs = &domain.BikeSpecs{
			Frame:        payload.Specs.Frame,
			Fork:         payload.Specs.Fork,
			Groupset:     payload.Specs.Groupset,
			Brakes:       payload.Specs.Brakes,
			Wheels:       payload.Specs.Wheels,
			Tires:        payload.Specs.Tires,
			ClearanceMax: payload.Specs.ClearanceMax,
			Weight:       payload.Specs.Weight,
			ImageURL:     payload.Specs.ImageURL,
			Sources:      resp.sources(),
		}
	}
	return extracted, nil
}

func (e *Extractor) SearchProductDeals(ctx context.Context, productName string) (*domain.DealReport, error) {
	prompt := fmt.Sprintf(`Find the current best online price and recommended shops for the cycling product: %q.
Include the average price and where it is worth buying today. Be concise and professional.`, productName)

	resp, err := e.generate(ctx, searchModel, generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		Tools:            []tool{{GoogleSearch: &struct{}{}}},
		GenerationConfig: &generationConfig{Temperature: 0.5},
	})
	if err != nil {
		return nil, err
	}
	return &domain.DealReport{
		Text:    resp.text(),
		Sources: resp.sources(),
	}, nil
}

func (e *Extractor) AnalyzePartImage(ctx context.Context, base64Image string) (string, error) {
	// Data-URI prefix ("data:image/jpeg;base64,...") is stripped when
	// present; the API wants the bare payload.
	if i := strings.IndexByte(base64Image, ','); i >= 0 {
		base64Image = base64Image[i+1:]
	}

	resp, err := e.generate(ctx, visionModel, generateRequest{
		Contents: []content{{Parts: []part{
			{InlineData: &inlineData{MimeType: "image/jpeg", Data: base64Image}},
			{Text: visionPrompt},
		}}},
	})
	if err != nil {
		return "", err
	}
	text := resp.text()
	if text == "" {
		return "", fmt.Errorf("empty vision result: %w", domain.ErrExtractionFailed)
	}
	return text, nil
}

func (e *Extractor) generate(ctx context.Context, model string, payload generateRequest) (*generateResponse, error) {
	if e.apiKey == "" {
		return nil, domain.ErrAPIKeyMissing
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", e.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", e.apiKey)

	resp, err := e.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		switch {
		case resp.StatusCode == http.StatusTooManyRequests,
			bytes.Contains(raw, []byte("RESOURCE_EXHAUSTED")):
			return nil, fmt.Errorf("generate: %w", domain.ErrQuotaExceeded)
		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("generate: %w", domain.ErrModelNotFound)
		default:
			return nil, fmt.Errorf("generate failed: %s", resp.Status)
		}
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("undecodable generate response: %w", domain.ErrExtractionFailed)
	}
	return &gr, nil
}

func (r *generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

func (r *generateResponse) sources() []domain.SpecSource {
	if len(r.Candidates) == 0 || r.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var sources []domain.SpecSource
	for _, chunk := range r.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		title := chunk.Web.Title
		if title == "" {
			title = "Spec sheet"
		}
		sources = append(sources, domain.SpecSource{URI: chunk.Web.URI, Title: title})
	}
	return sources
}

// carveJSON returns the outermost {...} block of chatty model output.
func carveJSON(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
