package gaia

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	log "github.com/chmouel/gaiacommit/internal/log"
	"github.com/chmouel/gaiacommit/internal/utils"
)

// Nodes fetches every node the directory lists.
func (c *Client) Nodes(ctx context.Context) ([]Node, error) {
	var resp directoryResponse
	if err := c.http.doJSON(ctx, "directory", http.MethodGet, c.opts.DirectoryURL, nil, c.policy(directoryRetryCodes), &resp); err != nil {
		return nil, fmt.Errorf("listing nodes: %w", err)
	}
	log.Printf("gaia: directory listed %d nodes", len(resp.Data.Objects))
	return resp.Data.Objects, nil
}

// EligibleNodes returns the listed nodes that pass Node.Eligible, in directory order.
func (c *Client) EligibleNodes(ctx context.Context) ([]Node, error) {
	nodes, err := c.Nodes(ctx)
	if err != nil {
		return nil, err
	}
	return FilterEligible(nodes, c.opts.ModelFilter), nil
}

// PickNode picks one eligible node uniformly at random.
func (c *Client) PickNode(ctx context.Context) (Node, error) {
	nodes, err := c.EligibleNodes(ctx)
	if err != nil {
		return Node{}, err
	}
	return PickNode(nodes, c.opts.ModelFilter)
}

// FilterEligible keeps the nodes serving a model that matches filter.
func FilterEligible(nodes []Node, filter string) []Node {
	eligible := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Eligible(filter) {
			eligible = append(eligible, n)
		}
	}
	return eligible
}

// PickNode chooses one of nodes at random. An empty list yields ErrNoEligibleNode.
func PickNode(nodes []Node, filter string) (Node, error) {
	node, err := utils.PickRandom(nodes)
	if errors.Is(err, utils.ErrEmptyChoice) {
		return Node{}, fmt.Errorf("%w: no online node serves a model matching %q", ErrNoEligibleNode, filter)
	}
	if err != nil {
		return Node{}, fmt.Errorf("picking node: %w", err)
	}
	log.Printf("gaia: picked node %s (%s) out of %d", node.Subdomain, node.ModelName, len(nodes))
	return node, nil
}
