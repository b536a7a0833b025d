package avatar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"
)

// ErrUnavailable covers every way the meme source can fail us: transport
// errors, timeouts, bad status, or a response without a usable list.
var ErrUnavailable = errors.New("avatar source unavailable")

type memesResponse struct {
	Success bool `json:"success"`
	Data    *struct {
		Memes []struct {
			URL string `json:"url"`
		} `json:"memes"`
	} `json:"data"`
}

// Assigner picks a default profile picture from an imgflip-style meme list.
type Assigner struct {
	client    *http.Client
	sourceURL string
	timeout   time.Duration
	intn      func(n int) int
}

func NewAssigner(client *http.Client, sourceURL string, timeout time.Duration) *Assigner {
	if client == nil {
		client = http.DefaultClient
	}
	return &Assigner{
		client:    client,
		sourceURL: sourceURL,
		timeout:   timeout,
		intn:      rand.IntN,
	}
}

// PickDefault makes a single attempt against the source and returns one of
// its URLs at random.
func (a *Assigner) PickDefault(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var body memesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	if !body.Success || body.Data == nil {
		return "", fmt.Errorf("%w: unsuccessful response", ErrUnavailable)
	}

	urls := make([]string, 0, len(body.Data.Memes))
	for _, m := range body.Data.Memes {
		if m.URL != "" {
			urls = append(urls, m.URL)
		}
	}
	if len(urls) == 0 {
		return "", fmt.Errorf("%w: empty meme list", ErrUnavailable)
	}

	return urls[a.intn(len(urls))], nil
}
