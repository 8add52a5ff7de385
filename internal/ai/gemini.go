// Package ai calls the Gemini inference endpoint for repricing
// recommendations and defensively parses its free-text output.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Recommendation is one per-product price suggestion extracted from the
// model output.
type Recommendation struct {
	ProductID        string  `json:"product_id"`
	CurrentPrice     float64 `json:"current_price"`
	RecommendedPrice float64 `json:"recommended_price"`
	Reason           string  `json:"reason"`
	Confidence       string  `json:"confidence"`
}

type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(apiKey, endpoint string, log *zap.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        log,
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// RecommendPrices sends the prompt and returns whatever recommendations can
// be extracted from the response. Malformed model output yields an empty
// slice, not an error; only transport and API failures are errors.
func (c *Client) RecommendPrices(ctx context.Context, prompt string) ([]Recommendation, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     0.3,
			MaxOutputTokens: 4096,
		},
	})
	if err != nil {
		return nil, err
	}

	url := c.endpoint + "?key=" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Error("gemini API error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(preview)))
		return nil, fmt.Errorf("gemini API error: %d", resp.StatusCode)
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	text := ""
	if len(gr.Candidates) > 0 && len(gr.Candidates[0].Content.Parts) > 0 {
		text = gr.Candidates[0].Content.Parts[0].Text
	}

	return ExtractRecommendations(text), nil
}
