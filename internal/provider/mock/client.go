package mock

import (
	"context"
	"sync"
	"time"

	"github.com/nexahq/nexa-server/internal/domain"
)

type Client struct {
	NameValue  string
	Configured bool
	Items      []domain.Item
	Error      error
	Delay      time.Duration

	CallCount  int
	LastQuery  string
	LastLimit  int
	AllQueries []string

	mu sync.Mutex
}

func New(name string) *Client {
	return &Client{NameValue: name, Configured: true}
}

func (c *Client) WithItems(items []domain.Item) *Client {
	c.Items = items
	return c
}

func (c *Client) WithError(err error) *Client {
	c.Error = err
	return c
}

func (c *Client) WithDelay(delay time.Duration) *Client {
	c.Delay = delay
	return c
}

func (c *Client) WithConfigured(ok bool) *Client {
	c.Configured = ok
	return c
}

func (c *Client) Name() string { return c.NameValue }

func (c *Client) Available() bool { return c.Configured }

func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Item, error) {
	c.mu.Lock()
	c.CallCount++
	c.LastQuery = query
	c.LastLimit = limit
	c.AllQueries = append(c.AllQueries, query)
	delay := c.Delay
	err := c.Error
	items := c.Items
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if err != nil {
		return nil, err
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	return items, nil
}

func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CallCount
}
