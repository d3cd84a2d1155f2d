package gaia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/codes"

	log "github.com/chmouel/gaiacommit/internal/log"
	"github.com/chmouel/gaiacommit/internal/metrics"
	"github.com/chmouel/gaiacommit/internal/tracing"
)

// CompletionURL is where node answers chat completions.
func (c *Client) CompletionURL(node Node) string {
	u := url.URL{Scheme: c.opts.Scheme, Host: node.Subdomain, Path: completionPath}
	return u.String()
}

// Complete asks node for a commit message describing diff and returns the raw
// text of the first choice. An empty choice list returns "".
func (c *Client) Complete(ctx context.Context, node Node, diff string) (string, error) {
	ctx, span := tracing.Tracer().Start(ctx, "gaia.complete", tracing.NodeAttributes(node.Subdomain, node.ModelName))
	defer span.End()

	body, err := json.Marshal(ChatRequest{
		Messages: BuildMessages(c.opts.SystemPrompt, diff),
		Model:    node.ModelName,
	})
	if err != nil {
		return "", fmt.Errorf("encoding completion request: %w", err)
	}

	metrics.DiffBytes.Observe(float64(len(diff)))
	started := time.Now()
	defer func() { metrics.CompletionDuration.Observe(time.Since(started).Seconds()) }()

	var resp ChatResponse
	endpoint := c.CompletionURL(node)
	if err := c.http.doJSON(ctx, "completion", http.MethodPost, endpoint, body, c.policy(completionRetryCodes), &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("requesting completion from %s: %w", node.Subdomain, err)
	}

	content := resp.Content()
	log.Printf("gaia: completion from %s returned %d choices, %d bytes", node.Subdomain, len(resp.Choices), len(content))
	return content, nil
}
