package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"inventory-sync/core/reconcile"

	"go.uber.org/zap"
)

// page is one response of the paginated listing endpoint.
type page struct {
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
	Total int              `json:"total"`
	Data  []map[string]any `json:"data"`
}

// HTTPClient reads the feed from a paginated JSON API.
type HTTPClient struct {
	endpoint   *url.URL
	pageSize   int
	maxPages   int
	keyField   string
	token      string
	attempts   int
	backoff    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPClient creates a feed client from the configuration.
func NewHTTPClient(cfg Config, logger *zap.Logger) (*HTTPClient, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("feed base url is required")
	}
	endpoint, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid feed url: %w", err)
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 200
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 10000
	}
	keyField := cfg.KeyField
	if keyField == "" {
		keyField = DefaultKeyField
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HTTPClient{
		endpoint:   endpoint,
		pageSize:   pageSize,
		maxPages:   maxPages,
		keyField:   keyField,
		token:      cfg.Token,
		attempts:   cfg.MaxRetries,
		backoff:    cfg.Backoff(),
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		logger:     logger,
	}, nil
}

// FetchAll pages through the feed starting at page 1.
// Paging stops on an empty or short page, or once page*limit reaches the reported
// total. A feed still returning full pages after maxPages fails as unavailable
// rather than being cut short.
func (c *HTTPClient) FetchAll(ctx context.Context) iter.Seq2[reconcile.Record, error] {
	return func(yield func(reconcile.Record, error) bool) {
		for n := 1; ; n++ {
			if n > c.maxPages {
				yield(reconcile.Record{}, unavailable("feed did not end within %d pages", c.maxPages))
				return
			}

			var p *page
			err := retry(ctx, c.attempts, c.backoff, func() error {
				var err error
				p, err = c.fetchPage(ctx, n)
				return err
			}, func(attempt int, err error) {
				c.logger.Warn("Feed page failed, retrying",
					zap.Int("page", n),
					zap.Int("attempt", attempt),
					zap.Error(err))
			})
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					yield(reconcile.Record{}, ctxErr)
					return
				}
				yield(reconcile.Record{}, unavailable("page %d: %w", n, err))
				return
			}

			if len(p.Data) == 0 {
				return
			}
			for _, row := range p.Data {
				if !yield(toRecord(row, c.keyField), nil) {
					return
				}
			}

			limit := p.Limit
			if limit <= 0 {
				limit = c.pageSize
			}
			if len(p.Data) < limit {
				return
			}
			if p.Total > 0 && n*limit >= p.Total {
				return
			}
		}
	}
}

func (c *HTTPClient) fetchPage(ctx context.Context, n int) (*page, error) {
	u := *c.endpoint
	query := u.Query()
	query.Set("page", strconv.Itoa(n))
	query.Set("limit", strconv.Itoa(c.pageSize))
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, permanent(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{Code: resp.StatusCode}
		if statusErr.Transient() {
			return nil, statusErr
		}
		return nil, permanent(statusErr)
	}

	var p page
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, permanent(fmt.Errorf("failed to decode response: %w", err))
	}
	return &p, nil
}
