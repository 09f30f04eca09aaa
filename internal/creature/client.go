package creature

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://pokeapi.co/api/v2"

// Client fetches creatures from a PokeAPI-compatible service.
type Client struct {
	baseURL string
	client  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client = &http.Client{Timeout: d}
	}
}

// NewClient creates a new creature API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type pokemonResponse struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Height  int    `json:"height"`
	Weight  int    `json:"weight"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
	} `json:"sprites"`
	Types []struct {
		Type struct {
			Name string `json:"name"`
		} `json:"type"`
	} `json:"types"`
}

// Fetch loads creature id.
func (c *Client) Fetch(ctx context.Context, id int) (Creature, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/pokemon/%d", c.baseURL, id), nil)
	if err != nil {
		return Creature{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Creature{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Creature{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Creature{}, fmt.Errorf("creature api error (status %d): %s", resp.StatusCode, string(body))
	}

	var p pokemonResponse
	if err := json.Unmarshal(body, &p); err != nil {
		return Creature{}, fmt.Errorf("unmarshal response: %w", err)
	}

	types := make([]string, 0, len(p.Types))
	for _, t := range p.Types {
		types = append(types, displayName(t.Type.Name))
	}
	image := p.Sprites.FrontDefault
	if image == "" {
		image = fmt.Sprintf(spriteURL, 0)
	}

	return Creature{
		ID:       p.ID,
		Name:     displayName(p.Name),
		Image:    image,
		Types:    strings.Join(types, "/"),
		HeightM:  float64(p.Height) / 10,
		WeightKg: float64(p.Weight) / 10,
		Source:   SourceAPI,
	}, nil
}
