package mock

import (
	"context"
	"time"

	"github.com/nexahq/nexa-server/internal/llm"
)

type Client struct {
	ClientName string
	Configured bool
	Response   string
	Error      error
	Delay      time.Duration

	CallCount  int
	LastSystem string
	LastPrompt string
	AllCalls   []Call
}

type Call struct {
	System string
	Prompt string
}

func New() *Client {
	return &Client{
		ClientName: "mock",
		Configured: true,
		Response:   "Mock summary citing [#1] and [#2].",
	}
}

func (c *Client) WithName(name string) *Client {
	c.ClientName = name
	return c
}

func (c *Client) WithResponse(response string) *Client {
	c.Response = response
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

func (c *Client) WithConfigured(configured bool) *Client {
	c.Configured = configured
	return c
}

func (c *Client) Name() string { return c.ClientName }

func (c *Client) Available() bool { return c.Configured }

func (c *Client) CompleteWithSystem(ctx context.Context, system, prompt string) (string, error) {
	c.CallCount++
	c.LastSystem = system
	c.LastPrompt = prompt
	c.AllCalls = append(c.AllCalls, Call{System: system, Prompt: prompt})

	if c.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.Delay):
		}
	}

	if c.Error != nil {
		return "", c.Error
	}

	return c.Response, nil
}

func (c *Client) Reset() {
	c.CallCount = 0
	c.LastSystem = ""
	c.LastPrompt = ""
	c.AllCalls = nil
}

var _ llm.Client = (*Client)(nil)
