package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ademuri/taste-engine/internal/domain"
	"github.com/avast/retry-go"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-1.5-flash"

	temperature     = 0.7
	maxOutputTokens = 350

	instructions = "You are a music analyst predicting a listener's next-year taste. " +
		"Return only valid JSON with keys: summary (string) and predictions (array of 3-4 items). " +
		"Each prediction must include icon (single emoji), text (1 sentence), confidence (0 to 1). " +
		"No markdown, no extra text."
)

// Payload is what the model is told about the listener.
type Payload struct {
	ProfileName *string              `json:"profileName"`
	Mood        *domain.MoodSnapshot `json:"mood"`
	Drift       *domain.Drift        `json:"drift"`
	Genres      []string             `json:"genres"`
	TopArtists  []string             `json:"topArtists"`
	TopTracks   []TrackRef           `json:"topTracks"`
}

type TrackRef struct {
	Name   string `json:"name"`
	Artist string `json:"artist,omitempty"`
}

// GenerationError is a non-success answer from the model API.
type GenerationError struct {
	StatusCode int
	Detail     string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("forecast: model returned status %d: %s", e.StatusCode, e.Detail)
}

type generateRequest struct {
	Contents []content `json:"contents"`
	Config   struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	attempts   uint
}

// NewClient returns a model client. An empty apiKey gives a disabled client
// whose forecasts are {enabled: false}.
func NewClient(httpClient *http.Client, baseURL, apiKey, model string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		attempts:   2,
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Predict asks the model for a forecast. Unparseable model output is not an
// error; it gives an enabled forecast with no summary and no predictions.
func (c *Client) Predict(ctx context.Context, payload Payload) (Forecast, error) {
	if !c.Enabled() {
		return Forecast{Enabled: false}, nil
	}

	user, err := json.Marshal(payload)
	if err != nil {
		return Forecast{}, fmt.Errorf("forecast: encoding payload: %w", err)
	}
	var body generateRequest
	body.Contents = []content{{
		Role:  "user",
		Parts: []part{{Text: instructions + "\n\nUSER_DATA:\n" + string(user)}},
	}}
	body.Config.Temperature = temperature
	body.Config.MaxOutputTokens = maxOutputTokens
	encoded, err := json.Marshal(body)
	if err != nil {
		return Forecast{}, fmt.Errorf("forecast: encoding request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))

	var resp generateResponse
	err = retry.Do(
		func() error {
			return c.post(ctx, endpoint, encoded, &resp)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			gerr, ok := err.(*GenerationError)
			return ok && gerr.StatusCode/100 == 5
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("WARN forecast: attempt %d failed, retrying: %v", n+1, err)
		}),
	)
	if err != nil {
		return Forecast{}, err
	}

	var text strings.Builder
	if len(resp.Candidates) > 0 {
		for _, p := range resp.Candidates[0].Content.Parts {
			text.WriteString(p.Text)
		}
	}
	return ParseForecast(text.String()), nil
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte, out *generateResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return retry.Unrecoverable(fmt.Errorf("forecast: building request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("forecast: calling model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &GenerationError{StatusCode: resp.StatusCode, Detail: strings.TrimSpace(string(detail))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("forecast: decoding model response: %w", err)
	}
	return nil
}
