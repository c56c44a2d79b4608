package soap

import (
	"context"
	"sync"

	gosoap "github.com/hooklift/gowsdl/soap"

	"github.com/erptools/go-applus/internal/debug"
)

// Caller issues a SOAP call against one service endpoint. It is the
// interface the rest of the module programs against; tests substitute
// fakes for it.
type Caller interface {
	CallContext(ctx context.Context, soapAction string, request, response any) error
}

// Connection is a connection to an app server. It hands out one cached
// SOAP client per service endpoint and is safe for concurrent use.
type Connection struct {
	settings AppServerSettings

	mu      sync.Mutex
	clients map[string]Caller
}

// NewConnection creates a connection for the given settings. No network
// traffic happens until the first call.
func NewConnection(settings AppServerSettings) *Connection {
	return &Connection{
		settings: settings,
		clients:  map[string]Caller{},
	}
}

// Settings returns the settings the connection was created with.
func (c *Connection) Settings() AppServerSettings { return c.settings }

// Client returns the SOAP client for a service endpoint, e.g.
// Client("p2core", "Table"). Clients are created on first use and
// reused afterwards.
func (c *Connection) Client(pkg, name string) Caller {
	key := pkg + "/" + name

	c.mu.Lock()
	defer c.mu.Unlock()
	if client, ok := c.clients[key]; ok {
		return client
	}

	url := c.settings.BaseURL() + key + ".jws"
	debug.Debug("creating soap client", "url", url)
	client := gosoap.NewClient(url, gosoap.WithBasicAuth(c.settings.UserEnv(), ""))
	c.clients[key] = client
	return client
}
