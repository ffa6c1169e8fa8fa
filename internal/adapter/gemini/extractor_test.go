package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bikelogic/garage-service/internal/core/domain"
)

func candidateText(text string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]string{{"text": text}},
			}},
		},
	})
	return string(b)
}

func TestExtractBikeData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-goog-api-key"); got != "key" {
			t.Errorf("x-goog-api-key = %q", got)
		}
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		// Chatty output around the JSON blob is the normal case.
		_, _ = w.Write([]byte(candidateText(
			"Here is what I found:\n```json\n" +
				`{"extracted_name":"Canyon Grizl CF SL 8 2023","extracted_type":"GRAVEL","specs":{"frame":"Carbon","tires":"Schwalbe G-One Bite 45mm","clearance_max":"50mm"}}` +
				"\n```\nHope this helps!")))
	}))
	defer srv.Close()

	e := NewExtractor("key").WithBaseURL(srv.URL)
	extracted, err := e.ExtractBikeData(context.Background(), "canyon grizl")
	if err != nil {
		t.Fatalf("ExtractBikeData: %v", err)
	}
	if extracted.ExtractedName != "Canyon Grizl CF SL 8 2023" {
		t.Errorf("name = %q", extracted.ExtractedName)
	}
	if extracted.ExtractedType != domain.Gravel {
		t.Errorf("type = %q, want gravel (case-folded)", extracted.ExtractedType)
	}
	if extracted.Specs == nil || extracted.Specs.ClearanceMax != "50mm" {
		t.Errorf("specs = %+v", extracted.Specs)
	}
}

func TestExtractBikeDataNoJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(candidateText("Sorry, I could not find that bike.")))
	}))
	defer srv.Close()

	e := NewExtractor("key").WithBaseURL(srv.URL)
	_, err := e.ExtractBikeData(context.Background(), "???")
	if !errors.Is(err, domain.ErrExtractionFailed) {
		t.Errorf("err = %v, want ErrExtractionFailed", err)
	}
}

func TestGenerateErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"http 429", http.StatusTooManyRequests, `{}`, domain.ErrQuotaExceeded},
		{"resource exhausted in body", http.StatusBadRequest, `{"error":{"status":"RESOURCE_EXHAUSTED"}}`, domain.ErrQuotaExceeded},
		{"model missing", http.StatusNotFound, `{}`, domain.ErrModelNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			e := NewExtractor("key").WithBaseURL(srv.URL)
			_, err := e.ExtractBikeData(context.Background(), "bike")
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMissingAPIKey(t *testing.T) {
	e := NewExtractor("")
	if _, err := e.ExtractBikeData(context.Background(), "bike"); !errors.Is(err, domain.ErrAPIKeyMissing) {
		t.Errorf("err = %v, want ErrAPIKeyMissing", err)
	}
	if _, err := e.SearchProductDeals(context.Background(), "chain"); !errors.Is(err, domain.ErrAPIKeyMissing) {
		t.Errorf("deals err = %v, want ErrAPIKeyMissing", err)
	}
}

func TestSearchProductDealsCollectsSources(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"parts": [{"text": "Best price around 45 EUR."}]},
				"groundingMetadata": {"groundingChunks": [
					{"web": {"uri": "https://shop.example/chain", "title": "Shop"}},
					{"web": {"uri": "https://other.example", "title": ""}},
					{"web": null}
				]}
			}]
		}`))
	}))
	defer srv.Close()

	e := NewExtractor("key").WithBaseURL(srv.URL)
	report, err := e.SearchProductDeals(context.Background(), "KMC X11")
	if err != nil {
		t.Fatalf("SearchProductDeals: %v", err)
	}
	if report.Text != "Best price around 45 EUR." {
		t.Errorf("text = %q", report.Text)
	}
	if len(report.Sources) != 2 {
		t.Fatalf("sources = %+v, want 2 entries", report.Sources)
	}
	if report.Sources[1].Title == "" {
		t.Error("empty source title not defaulted")
	}
}

func TestAnalyzePartImageStripsDataURI(t *testing.T) {
	var gotData string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Contents []struct {
				Parts []struct {
					InlineData *struct {
						Data string `json:"data"`
					} `json:"inline_data"`
				} `json:"parts"`
			} `json:"contents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		for _, p := range req.Contents[0].Parts {
			if p.InlineData != nil {
				gotData = p.InlineData.Data
			}
		}
		_, _ = w.Write([]byte(candidateText("Wear 7/10, replace soon.")))
	}))
	defer srv.Close()

	e := NewExtractor("key").WithBaseURL(srv.URL)
	result, err := e.AnalyzePartImage(context.Background(), "data:image/jpeg;base64,AAAA")
	if err != nil {
		t.Fatalf("AnalyzePartImage: %v", err)
	}
	if gotData != "AAAA" {
		t.Errorf("inline data = %q, data-URI prefix not stripped", gotData)
	}
	if result != "Wear 7/10, replace soon." {
		t.Errorf("result = %q", result)
	}
}

func TestCarveJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"prefix {\"a\":{\"b\":2}} suffix", `{"a":{"b":2}}`},
		{"no braces here", ""},
		{"}{", ""},
	}
	for _, tt := range tests {
		if got := carveJSON(tt.in); got != tt.want {
			t.Errorf("carveJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
