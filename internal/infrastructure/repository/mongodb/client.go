package mongodb

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fitcoach-api/internal/platform/logging"
	"github.com/riskibarqy/fitcoach-api/internal/usecase"
	"go.mongodb.org/mongo-driver/v2/event"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const defaultDatabase = "fitcoach"

type State string

const (
	StateConnecting State = "connecting"
	StateConnected  State = "connected"
	StateFailed     State = "failed"
)

type Options struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	// Monitor observes every command the driver sends, e.g. for tracing.
	Monitor *event.CommandMonitor
}

// Client owns the single process-wide connection. Open never blocks on the
// network: reachability is checked once in the background and the outcome is
// logged. A failed check is not retried.
type Client struct {
	mu       sync.RWMutex
	client   *mongo.Client
	database string
	state    State
	connErr  error
	ready    chan struct{}
}

func Open(opts Options, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}

	c := &Client{
		database: resolveDatabase(opts.Database, opts.URI),
		state:    StateConnecting,
		ready:    make(chan struct{}),
	}

	uri := strings.TrimSpace(opts.URI)
	if uri == "" {
		c.fail(crerr.New("MONGO_URI is not set"))
		logger.Error("MongoDB connection error", "error", c.connErr)
		return c
	}

	clientOpts := options.Client().ApplyURI(uri)
	if opts.Monitor != nil {
		clientOpts.SetMonitor(opts.Monitor)
	}

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		c.fail(crerr.Wrap(err, "configure mongo client"))
		logger.Error("MongoDB connection error", "error", c.connErr)
		return c
	}
	c.client = client

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			c.fail(crerr.Wrap(err, "ping mongo"))
			logger.Error("MongoDB connection error", "error", c.connErr)
			return
		}

		c.mu.Lock()
		c.state = StateConnected
		c.mu.Unlock()
		close(c.ready)
		logger.Info("MongoDB connected", "database", c.database)
	}()

	return c
}

func (c *Client) fail(err error) {
	c.mu.Lock()
	c.state = StateFailed
	c.connErr = err
	c.mu.Unlock()
	close(c.ready)
}

func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Ready is closed once the connection attempt has settled either way.
func (c *Client) Ready() <-chan struct{} {
	return c.ready
}

func (c *Client) Database() string {
	return c.database
}

// Collection returns a handle while the client is usable. Before the
// background ping settles operations are attempted anyway and the driver's
// server selection decides their fate.
func (c *Client) Collection(name string) (*mongo.Collection, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.client == nil || c.state == StateFailed {
		return nil, fmt.Errorf("%w: mongo: %v", usecase.ErrDependencyUnavailable, c.connErr)
	}
	return c.client.Database(c.database).Collection(name), nil
}

func (c *Client) Disconnect(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Disconnect(ctx); err != nil {
		return crerr.Wrap(err, "disconnect mongo")
	}
	return nil
}

func resolveDatabase(explicit, uri string) string {
	if name := strings.TrimSpace(explicit); name != "" {
		return name
	}
	if name := databaseFromURI(uri); name != "" {
		return name
	}
	return defaultDatabase
}

// databaseFromURI reads the default database segment of a mongodb:// or
// mongodb+srv:// URI without resolving hosts.
func databaseFromURI(raw string) string {
	rest, ok := strings.CutPrefix(strings.TrimSpace(raw), "mongodb://")
	if !ok {
		if rest, ok = strings.CutPrefix(strings.TrimSpace(raw), "mongodb+srv://"); !ok {
			return ""
		}
	}

	_, path, found := strings.Cut(rest, "/")
	if !found {
		return ""
	}
	path, _, _ = strings.Cut(path, "?")
	name, err := url.PathUnescape(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(name)
}
