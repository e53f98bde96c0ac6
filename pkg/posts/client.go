package posts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrAPI is returned when the post API answers with a non-2xx status or with
// a JSON body that does not decode
var ErrAPI = errors.New("post api error")

// Client submits posts to the backend API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the API rooted at baseURL
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("post api base URL is empty")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("post api base URL must be http(s): %s", baseURL)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type createResponse struct {
	ID int64 `json:"id"`
}

// Submit validates p and posts it to {base}/posts. The returned id is zero when
// the API does not echo one.
func (c *Client) Submit(ctx context.Context, p Post) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	body, err := json.Marshal(p)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/posts", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to submit post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(respBody))
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return 0, fmt.Errorf("%w: HTTP %d: %s", ErrAPI, resp.StatusCode, msg)
	}

	var created createResponse
	if len(bytes.TrimSpace(respBody)) == 0 {
		return 0, nil
	}
	if err := json.Unmarshal(respBody, &created); err != nil {
		// Plain text acknowledgements carry no id
		if !isJSON(resp.Header.Get("Content-Type")) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: malformed JSON response: %v", ErrAPI, err)
	}
	return created.ID, nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
