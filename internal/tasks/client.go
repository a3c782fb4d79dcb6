package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"

	"github.com/edoomio/studio/internal/logger"
	"github.com/edoomio/studio/internal/metrics"
)

// ErrUnknownQueue is returned when a task is enqueued for a queue that was
// never registered; backlite would accept it but no worker would run it.
var ErrUnknownQueue = errors.New("task queue not registered")

type clientState int

const (
	stateIdle clientState = iota
	stateRunning
	stateStopped
)

// Client runs backlite on a SQLite file of its own so long render jobs never
// hold locks on the document database.
type Client struct {
	client *backlite.Client
	db     *sql.DB
	config Config
	log    *logger.Logger

	mu     sync.RWMutex
	state  clientState
	queues map[string]struct{}
}

// QueueDBPath derives the queue database path: studio.db becomes studio-tasks.db.
func QueueDBPath(mainDBPath string) string {
	ext := filepath.Ext(mainDBPath)
	return strings.TrimSuffix(mainDBPath, ext) + "-tasks" + ext
}

func NewClient(mainDBPath string, cfg Config, log *logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("component", "tasks")
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}

	db, err := sql.Open("sqlite3", QueueDBPath(mainDBPath)+"?_journal=WAL&_timeout=5000&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open tasks database: %w", err)
	}
	// every worker holds a connection while a task runs
	db.SetMaxOpenConns(cfg.Workers + 5)
	db.SetMaxIdleConns(cfg.Workers + 2)
	db.SetConnMaxLifetime(time.Hour)

	client, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          &taskLogger{log: log},
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create backlite client: %w", err)
	}
	if err := client.Install(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to install backlite schema: %w", err)
	}

	return &Client{
		client: client,
		db:     db,
		config: cfg,
		log:    log,
		queues: make(map[string]struct{}),
	}, nil
}

// Register adds queues. It must be called before Start.
func (c *Client) Register(queues ...backlite.Queue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, q := range queues {
		c.client.Register(q)
		c.queues[q.Config().Name] = struct{}{}
	}
}

// Queues returns the registered queue names, sorted.
func (c *Client) Queues() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.queues))
	for name := range c.queues {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Start runs the workers until ctx is done or Stop is called. It does not
// block. A stopped client cannot be started again.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	if c.state != stateIdle {
		c.mu.Unlock()
		return
	}
	c.state = stateRunning
	c.mu.Unlock()

	c.log.Info("Task queue started", "workers", c.config.Workers, "queues", c.Queues())
	c.client.Start(ctx)
}

// Stop waits for running tasks until ctx expires. It reports whether every
// worker finished in time.
func (c *Client) Stop(ctx context.Context) bool {
	c.mu.Lock()
	running := c.state == stateRunning
	c.state = stateStopped
	c.mu.Unlock()
	if !running {
		return true
	}

	c.log.Info("Stopping task queue")
	if !c.client.Stop(ctx) {
		c.log.Warn("Task queue stopped with timeout, some tasks may not have completed")
		return false
	}
	c.log.Info("Task queue stopped gracefully")
	return true
}

// Close releases the queue database. Call it after Stop.
func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.client.Status(ctx, taskID)
}

// Enqueue saves tasks in one transaction and returns their IDs.
func (c *Client) Enqueue(ctx context.Context, tasks ...backlite.Task) ([]string, error) {
	c.mu.RLock()
	for _, task := range tasks {
		if _, ok := c.queues[task.Config().Name]; !ok {
			c.mu.RUnlock()
			return nil, fmt.Errorf("%w: %s", ErrUnknownQueue, task.Config().Name)
		}
	}
	c.mu.RUnlock()

	ids, err := c.client.Add(tasks...).Ctx(ctx).Save()
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}
	for _, task := range tasks {
		metrics.TasksEnqueued.WithLabelValues(task.Config().Name).Inc()
	}
	return ids, nil
}

// Ping checks the queue database with a short timeout.
func (c *Client) Ping() error {
	if c.db == nil {
		return errors.New("task queue is closed")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return c.db.PingContext(ctx)
}

// taskLogger implements backlite.Logger on top of the service logger.
type taskLogger struct {
	log *logger.Logger
}

func (l *taskLogger) Info(message string, params ...any) {
	l.log.Info(message, params...)
}

func (l *taskLogger) Error(message string, params ...any) {
	l.log.Error(message, params...)
}
