package emotion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jarvis/internal/domain"
)

// Client talks to the external analyzer service: it
// posts the raw message and expects a JSON object {S, D, C, user_emotion}.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

func (c *Client) Analyze(ctx context.Context, text string) (domain.Signal, error) {
	if !c.Enabled() {
		return domain.Signal{}, fmt.Errorf("analyzer service is not configured")
	}
	payload := map[string]string{"text": text}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/analyze", bytes.NewReader(body))
	if err != nil {
		return domain.Signal{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Signal{}, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return domain.Signal{}, fmt.Errorf("analyzer status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var out struct {
		S           float64 `json:"S"`
		D           float64 `json:"D"`
		C           float64 `json:"C"`
		UserEmotion string  `json:"user_emotion"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return domain.Signal{}, fmt.Errorf("analyzer malformed response: %w", err)
	}

	s, d, cc := Clamp(out.S, out.D, out.C)
	return domain.Signal{S: s, D: d, C: cc, UserEmotion: out.UserEmotion}, nil
}

// AnalyzeOrFallback runs the external analyzer, substituting the heuristic
// on any transport, timeout, or decode failure.
func AnalyzeOrFallback(ctx context.Context, c *Client, text string) domain.Signal {
	if c.Enabled() {
		if sig, err := c.Analyze(ctx, text); err == nil {
			return sig
		}
	}
	s, d, cc, label := Heuristic(text)
	return domain.Signal{S: s, D: d, C: cc, UserEmotion: label}
}
