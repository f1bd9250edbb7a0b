package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kibbyd/lifequest/internal/ability"
)

// #region doer
// Doer is the transport seam: tests inject a stub, production uses
// *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// #endregion doer

// #region client-struct
// Client calls the remote classification endpoint.
type Client struct {
	endpoint string
	http     Doer
}

// #endregion client-struct

// #region constructor
// NewClient builds a client for the given endpoint URL.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithDoer builds a client with an injected transport.
func NewClientWithDoer(endpoint string, doer Doer) *Client {
	return &Client{endpoint: endpoint, http: doer}
}

// #endregion constructor

// #region classify

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Stat       string  `json:"stat"`
	Tier       string  `json:"tier"`
	Confidence float64 `json:"confidence"`
}

// Classify sends the activity text to the remote endpoint. The response is
// validated: an unknown stat or tier is an error, not a silent repair, so
// callers can decide to fall back.
func (c *Client) Classify(ctx context.Context, text string) (Classification, error) {
	body, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return Classification{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Classification{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Classification{}, fmt.Errorf("classify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Classification{}, fmt.Errorf("classify endpoint returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Classification{}, fmt.Errorf("read response: %w", err)
	}

	var parsed classifyResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return Classification{}, fmt.Errorf("decode response: %w", err)
	}
	if !ability.IsStatKey(parsed.Stat) {
		return Classification{}, fmt.Errorf("unknown stat %q in response", parsed.Stat)
	}
	if !IsTier(parsed.Tier) {
		return Classification{}, fmt.Errorf("unknown tier %q in response", parsed.Tier)
	}

	confidence := parsed.Confidence
	if confidence < 0 || confidence > 1 {
		confidence = 0.5
	}

	return Classification{
		Stat:       ability.StatKey(parsed.Stat),
		Tier:       Tier(parsed.Tier),
		Confidence: confidence,
	}, nil
}

// #endregion classify
