package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/nodeworld/nodeworld-live/internal/core"
)

// Client resolves node names against the external node directory service.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zerolog.Logger
}

// NewClient builds a directory client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, logger *zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     logger,
	}
}

type nodesResponse struct {
	Nodes []core.Node `json:"nodes"`
}

// Resolve looks a node up by name. Returns core.ErrNodeNotFound when the
// directory does not know the name.
func (c *Client) Resolve(ctx context.Context, name string) (*core.Node, error) {
	endpoint := fmt.Sprintf("%s/nodes?name=%s&limit=1", c.baseURL, url.QueryEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build directory request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory returned status %d", resp.StatusCode)
	}

	var body nodesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode directory response: %w", err)
	}
	if len(body.Nodes) == 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrNodeNotFound, name)
	}

	node := body.Nodes[0]
	c.log.Debug().Str("node", node.Name).Str("node_id", node.ID).Msg("resolved node")
	return &node, nil
}
