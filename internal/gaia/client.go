// Package gaia talks to the Gaia node directory and to the chat completion
// endpoint exposed by each node.
package gaia

import (
	"net/http"
	"time"
)

// Defaults match the public Gaia network.
const (
	DefaultDirectoryURL   = "https://api.gaianet.ai/api/v1/network/nodes/"
	DefaultModelFilter    = "llama"
	DefaultTimeout        = 50 * time.Second
	DefaultAttempts       = 3
	DefaultBackoffInitial = 300 * time.Millisecond
	DefaultBackoffLimit   = 3 * time.Second
	completionPath        = "/v1/chat/completions"
)

var (
	// completionRetryCodes are the statuses worth retrying for a POST.
	completionRetryCodes = []int{http.StatusRequestTimeout, http.StatusGatewayTimeout}

	// directoryRetryCodes are the statuses worth retrying for a GET.
	directoryRetryCodes = []int{
		http.StatusRequestTimeout,
		http.StatusRequestEntityTooLarge,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
	}
)

// Options configures a Client. Zero values fall back to the defaults above.
type Options struct {
	DirectoryURL   string
	ModelFilter    string
	Timeout        time.Duration
	Attempts       int
	BackoffInitial time.Duration
	BackoffLimit   time.Duration
	SystemPrompt   string
	// Scheme used to reach a node, "https" unless set.
	Scheme     string
	HTTPClient *http.Client
}

// Client queries the directory and requests completions from nodes.
type Client struct {
	opts Options
	http requester
}

// New returns a Client with opts applied over the defaults.
func New(opts Options) *Client {
	if opts.DirectoryURL == "" {
		opts.DirectoryURL = DefaultDirectoryURL
	}
	if opts.ModelFilter == "" {
		opts.ModelFilter = DefaultModelFilter
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultAttempts
	}
	if opts.BackoffInitial <= 0 {
		opts.BackoffInitial = DefaultBackoffInitial
	}
	if opts.BackoffLimit <= 0 {
		opts.BackoffLimit = DefaultBackoffLimit
	}
	if opts.BackoffInitial > opts.BackoffLimit {
		opts.BackoffInitial = opts.BackoffLimit
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = SystemPrompt
	}
	if opts.Scheme == "" {
		opts.Scheme = "https"
	}
	client := opts.HTTPClient
	if client == nil {
		client = newHTTPClient()
	}
	return &Client{
		opts: opts,
		http: requester{client: client, timeout: opts.Timeout},
	}
}

// ModelFilter returns the substring nodes must advertise.
func (c *Client) ModelFilter() string { return c.opts.ModelFilter }

func (c *Client) policy(codes []int) RetryPolicy {
	return RetryPolicy{
		Attempts:        c.opts.Attempts,
		StatusCodes:     codes,
		InitialInterval: c.opts.BackoffInitial,
		MaxInterval:     c.opts.BackoffLimit,
	}
}
