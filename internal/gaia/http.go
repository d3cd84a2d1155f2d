package gaia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/chmouel/gaiacommit/internal/buildinfo"
	log "github.com/chmouel/gaiacommit/internal/log"
	"github.com/chmouel/gaiacommit/internal/metrics"
)

// maxErrorBody bounds how much of a failed response ends up in a StatusError.
const maxErrorBody = 512

// RetryPolicy controls how a request is repeated.
type RetryPolicy struct {
	// Attempts is the total number of tries, first one included.
	Attempts int
	// StatusCodes lists the HTTP codes worth retrying.
	StatusCodes []int
	// InitialInterval is the wait before the second attempt; it doubles after that.
	InitialInterval time.Duration
	// MaxInterval caps the wait between attempts.
	MaxInterval time.Duration
}

func (p RetryPolicy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = p.MaxInterval
	return b
}

func (p RetryPolicy) tries() uint {
	if p.Attempts < 1 {
		return 1
	}
	return uint(p.Attempts)
}

// newHTTPClient returns a client whose transport records spans when tracing is on.
func newHTTPClient() *http.Client {
	return &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
}

type requester struct {
	client  *http.Client
	timeout time.Duration
}

// doJSON sends body (nil for GET) and decodes a 2xx answer into out.
// Every attempt gets its own timeout; retries follow policy.
func (r requester) doJSON(ctx context.Context, operation, method, url string, body []byte, policy RetryPolicy, out any) error {
	attempt := 0
	op := func() ([]byte, error) {
		attempt++
		data, status, err := r.once(ctx, method, url, body)
		code := "error"
		if status > 0 {
			code = strconv.Itoa(status)
		}
		metrics.HTTPAttempts.WithLabelValues(operation, code).Inc()
		log.Printf("http: %s %s attempt=%d status=%s", method, url, attempt, code)

		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if status < 200 || status > 299 {
			statusErr := &StatusError{Method: method, URL: url, StatusCode: status, Body: string(data)}
			if slices.Contains(policy.StatusCodes, status) {
				return nil, statusErr
			}
			return nil, backoff.Permanent(statusErr)
		}
		return data, nil
	}

	data, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(policy.backOff()),
		backoff.WithMaxTries(policy.tries()),
		backoff.WithNotify(func(err error, wait time.Duration) {
			log.Printf("http: %s %s retrying in %s: %v", method, url, wait, err)
		}),
	)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return malformed(operation, err)
	}
	if err := validate.Struct(out); err != nil {
		return malformed(operation, err)
	}
	return nil
}

func (r requester) once(ctx context.Context, method, url string, body []byte) ([]byte, int, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	limit := int64(-1)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		limit = maxErrorBody
	}
	var data []byte
	if limit > 0 {
		data, err = io.ReadAll(io.LimitReader(resp.Body, limit))
	} else {
		data, err = io.ReadAll(resp.Body)
	}
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response from %s: %w", url, err)
	}
	return data, resp.StatusCode, nil
}
