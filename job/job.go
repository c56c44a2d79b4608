// Package job drives server-side jobs via the p2core/Job service. A
// typical round trip creates a SOAP job, starts it, polls its status
// and finally reads the result.
package job

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/erptools/go-applus/soap"
)

// Job completion statuses passed to Finish.
const (
	StatusOK    = 2
	StatusError = 3
)

// resultURLPrefix marks a result URL that carries a plain string
// payload instead of a link.
const resultURLPrefix = "retstring://"

// Client wraps the p2core/Job service.
type Client struct {
	caller soap.Caller
}

// New creates a job client over the given p2core/Job caller.
func New(caller soap.Caller) *Client {
	return &Client{caller: caller}
}

// CreateSOAPJob registers a new job of type SOAP under a fresh ID and
// returns that ID.
func (c *Client) CreateSOAPJob(ctx context.Context, description string) (string, error) {
	id := uuid.NewString()
	if err := soap.CallVoid(ctx, c.caller, "create", id, "SOAP", "0", "about:soapcall", description); err != nil {
		return "", err
	}
	return id, nil
}

// Start starts a job.
func (c *Client) Start(ctx context.Context, id string) (bool, error) {
	return soap.CallBool(ctx, c.caller, "start", id)
}

// Restart restarts a job and returns its URL.
func (c *Client) Restart(ctx context.Context, id string) (string, error) {
	return soap.CallString(ctx, c.caller, "restart", id)
}

// Kill aborts a job.
func (c *Client) Kill(ctx context.Context, id string) error {
	return soap.CallVoid(ctx, c.caller, "kill", id)
}

// Finish completes a job with a status (StatusOK or StatusError) and a
// result URL.
func (c *Client) Finish(ctx context.Context, id string, status int, resultURL string) (bool, error) {
	return soap.CallBool(ctx, c.caller, "finish", id, status, resultURL)
}

// Status returns the job's status text.
func (c *Client) Status(ctx context.Context, id string) (string, error) {
	return soap.CallString(ctx, c.caller, "getStatus", id)
}

// SetPosition updates the job's progress display to pos of max steps.
func (c *Client) SetPosition(ctx context.Context, id string, pos, max int) (bool, error) {
	return soap.CallBool(ctx, c.caller, "setPosition", id, pos, max)
}

// SetResultURL sets the job's result URL.
func (c *Client) SetResultURL(ctx context.Context, id, url string) error {
	return soap.CallVoid(ctx, c.caller, "setResultURL", id, url)
}

// ResultURL returns the job's result URL.
func (c *Client) ResultURL(ctx context.Context, id string) (string, error) {
	return soap.CallString(ctx, c.caller, "getResultURL", id)
}

// ResultURLString returns the string payload of the job's result URL.
// Result URLs not carrying a string payload yield ok == false.
func (c *Client) ResultURLString(ctx context.Context, id string) (string, bool, error) {
	url, err := c.ResultURL(ctx, id)
	if err != nil {
		return "", false, err
	}
	if !strings.HasPrefix(url, resultURLPrefix) {
		return "", false, nil
	}
	return strings.TrimPrefix(url, resultURLPrefix), true, nil
}

// SetPtURL sets the job's processing-template URL.
func (c *Client) SetPtURL(ctx context.Context, id, url string) error {
	return soap.CallVoid(ctx, c.caller, "setPtURL", id, url)
}

// PtURL returns the job's processing-template URL.
func (c *Client) PtURL(ctx context.Context, id string) (string, error) {
	return soap.CallString(ctx, c.caller, "getPtURL", id)
}

// SetResult sets the job's result text.
func (c *Client) SetResult(ctx context.Context, id, result string) error {
	return soap.CallVoid(ctx, c.caller, "setResult", id, result)
}

// Result returns the job's result text.
func (c *Client) Result(ctx context.Context, id string) (string, error) {
	return soap.CallString(ctx, c.caller, "getResult", id)
}

// SetInfo sets the job's info text.
func (c *Client) SetInfo(ctx context.Context, id, info string) (bool, error) {
	return soap.CallBool(ctx, c.caller, "setInfo", id, info)
}

// Info returns the job's info text.
func (c *Client) Info(ctx context.Context, id string) (string, error) {
	return soap.CallString(ctx, c.caller, "getInfo", id)
}
