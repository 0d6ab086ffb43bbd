// Package gemini implements the narrative insight generator on the
// Gemini generative-language API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/clearsight/clearsight/internal/advisory"
	"github.com/clearsight/clearsight/internal/aqi"
	"github.com/clearsight/clearsight/internal/insight"
	"github.com/clearsight/clearsight/internal/provider/resilience"
)

// DefaultBaseURL is the Gemini generateContent endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"

// ClientConfig holds configuration for the Gemini client.
type ClientConfig struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL is the generateContent endpoint (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Logger for client operations.
	Logger zerolog.Logger
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls Gemini for personalized insight text. Every failure path
// degrades to insight.FallbackText; the client never returns an error
// to its caller.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new Gemini client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("gemini"))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Generate implements insight.Generator.
func (c *Client) Generate(ctx context.Context, profile advisory.HealthProfile, reading *aqi.Reading, risk advisory.RiskAssessment) string {
	if c.apiKey == "" {
		return "AI Insight unavailable (Missing API Key)."
	}

	text, err := c.generate(ctx, buildPrompt(profile, reading, risk))
	if err != nil {
		c.logger.Warn().Err(err).Msg("gemini insight failed, using fallback")
		return insight.FallbackText
	}
	return text
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s?key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var gemResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gemResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if len(gemResp.Candidates) == 0 || len(gemResp.Candidates[0].Content.Parts) == 0 {
		return "Unable to generate AI insight at this time.", nil
	}
	return gemResp.Candidates[0].Content.Parts[0].Text, nil
}

// buildPrompt renders the advisory context into the model prompt.
func buildPrompt(profile advisory.HealthProfile, reading *aqi.Reading, risk advisory.RiskAssessment) string {
	conditions := make([]string, 0, len(profile.Respiratory)+len(profile.Cardiovascular)+len(profile.Other))
	for _, list := range [][]advisory.ConditionCode{profile.Respiratory, profile.Cardiovascular, profile.Other} {
		for _, c := range list {
			conditions = append(conditions, string(c))
		}
	}

	symptoms := make([]string, 0, len(profile.Symptoms))
	for _, s := range profile.Symptoms {
		symptoms = append(symptoms, string(s))
	}

	return fmt.Sprintf(`Act as a medical health expert for air quality.
Analyze this patient profile and current Delhi-NCR air quality data.

PATIENT PROFILE:
- Age: %d
- Gender: %s
- Conditions: %s
- Symptoms: %s
- Activity Level: %s

CURRENT AIR QUALITY:
- AQI: %d (%s)
- Main Pollutants: PM2.5 (%.0f), PM10 (%.0f), NO2 (%.0f)
- Risk Level: %s

TASK:
Provide a concise, 3-sentence personalized health insight.
1. Explain specifically why current conditions are risky for *this specific person* based on their conditions.
2. Give one specific, non-obvious protective tip.
3. Tone: Professional, medically sound, urgent if risk is High/Severe.
Do not recommend prescription drugs.`,
		profile.Age,
		profile.Gender,
		orNone(strings.Join(conditions, ", ")),
		orNone(strings.Join(symptoms, ", ")),
		profile.ActivityLevel,
		reading.AQI,
		reading.Category,
		reading.Pollutants[aqi.PM25],
		reading.Pollutants[aqi.PM10],
		reading.Pollutants[aqi.NO2],
		risk.Level,
	)
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

// Gemini API request/response structures.

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}
