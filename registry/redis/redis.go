// Package redis stores registry records in redis hashes.
//
// Every scope is a hash at root/interface/category whose fields are record
// full strings and whose values are expiry times in unix milliseconds.
// Writers publish "register" or "unregister" on the hash key; subscribers
// pattern-subscribe to root/* and reload the scope named by each message.
// Registrations made through a Registry are renewed every Expiry/2 and
// expired fields are dropped on read.
package redis

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/govkit/errors"
	"github.com/kbukum/govkit/logger"
	"github.com/kbukum/govkit/record"
	"github.com/kbukum/govkit/registry"
)

// Pub/sub message payloads.
const (
	EventRegister   = "register"
	EventUnregister = "unregister"
)

func init() {
	registry.RegisterFactory(registry.ProviderRedis, func(cfg registry.Config, log *logger.Logger) (registry.Registry, error) {
		return New(cfg, log)
	})
}

type snapshot map[registry.Scope]map[string]*record.Record

// Registry implements registry.Registry on redis.
type Registry struct {
	rdb  *goredis.Client
	root string
	cfg  registry.RedisConfig
	log  *logger.Logger
	subs registry.Subscriptions
	now  func() time.Time

	regMu      sync.Mutex
	registered map[string]*record.Record

	// mu guards the subscription state and orders notifications.
	mu     sync.Mutex
	state  snapshot
	pubsub *goredis.PubSub
	closed bool

	stop      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

var (
	_ registry.Registry = (*Registry)(nil)
	_ registry.Pinger   = (*Registry)(nil)
)

// New creates a redis-backed Registry and starts its renewal loop.
func New(cfg registry.Config, log *logger.Logger) (*Registry, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("redis registry config: %w", err)
	}

	r := &Registry{
		rdb:        newClient(cfg.Redis),
		root:       cfg.Root,
		cfg:        cfg.Redis,
		log:        log,
		now:        time.Now,
		registered: make(map[string]*record.Record),
		stop:       make(chan struct{}),
	}
	log.Info("redis registry created", logger.Fields(
		logger.FieldAddress, cfg.Redis.Addr,
		"db", cfg.Redis.DB,
		"pool_size", cfg.Redis.PoolSize,
	))

	r.wg.Add(1)
	go r.renewLoop()
	return r, nil
}

// Ping verifies the connection is alive.
func (c *Registry) Ping(ctx context.Context) error {
	pong, err := c.rdb.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	if pong != "PONG" {
		return fmt.Errorf("unexpected redis ping response: %s", pong)
	}
	return nil
}

// Register writes r with a fresh expiry and announces it.
func (c *Registry) Register(ctx context.Context, r *record.Record) error {
	if r == nil {
		return errors.MissingField("record")
	}
	if r.ServiceInterface() == "" || r.IsTombstone() {
		return errors.InvalidInput("record", "only live records with an interface can be registered")
	}
	if c.isClosed() {
		return errors.ServiceUnavailable("registry")
	}

	key := registry.ScopeOf(r).Path(c.root)
	if err := c.rdb.HSet(ctx, key, r.FullString(), c.expiry()).Err(); err != nil {
		return errors.RegistryError("register", err)
	}
	c.regMu.Lock()
	c.registered[r.FullString()] = r
	c.regMu.Unlock()

	if err := c.rdb.Publish(ctx, key, EventRegister).Err(); err != nil {
		c.log.Warn("publish failed", logger.ErrorFields("register", err))
	}
	return nil
}

// Unregister removes r and announces it.
func (c *Registry) Unregister(ctx context.Context, r *record.Record) error {
	if r == nil {
		return errors.MissingField("record")
	}
	if c.isClosed() {
		return errors.ServiceUnavailable("registry")
	}

	c.regMu.Lock()
	delete(c.registered, r.FullString())
	c.regMu.Unlock()

	key := registry.ScopeOf(r).Path(c.root)
	if err := c.rdb.HDel(ctx, key, r.FullString()).Err(); err != nil {
		return errors.RegistryError("unregister", err)
	}
	if err := c.rdb.Publish(ctx, key, EventUnregister).Err(); err != nil {
		c.log.Warn("publish failed", logger.ErrorFields("unregister", err))
	}
	return nil
}

// Subscribe starts listening on root/*, loads every scope and delivers the
// current records to listener.
func (c *Registry) Subscribe(ctx context.Context, descriptor *record.Record, listener registry.NotifyListener) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.ServiceUnavailable("registry")
	}
	if c.pubsub == nil {
		ps := c.rdb.PSubscribe(ctx, c.root+"/*")
		if _, err := ps.Receive(ctx); err != nil {
			_ = ps.Close()
			return errors.RegistryError("subscribe", err)
		}
		state, err := c.loadAll(ctx)
		if err != nil {
			_ = ps.Close()
			return errors.RegistryError("subscribe", err)
		}
		c.state = state
		c.pubsub = ps
		c.wg.Add(1)
		go c.listen(ps)
	}

	sub, added := c.subs.Add(descriptor, listener)
	if !added {
		return nil
	}
	for _, scope := range sortedScopes(c.state) {
		c.subs.Deliver(sub, scope, sortedRecords(c.state[scope]))
	}
	return nil
}

// Unsubscribe implements registry.Registry.
func (c *Registry) Unsubscribe(ctx context.Context, descriptor *record.Record, listener registry.NotifyListener) error {
	if !c.subs.Remove(descriptor, listener) {
		return errors.NotFound("subscription", descriptor.FullString())
	}
	return nil
}

// Close stops the background loops and closes the connection. Registered
// records are left to expire.
func (c *Registry) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		ps := c.pubsub
		c.mu.Unlock()

		close(c.stop)
		if ps != nil {
			_ = ps.Close()
		}
		c.wg.Wait()
		c.subs.Clear()
		c.log.Info("closing redis connection")
		err = c.rdb.Close()
	})
	return err
}

func (c *Registry) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Registry) expiry() string {
	return strconv.FormatInt(c.now().Add(c.cfg.Expiry).UnixMilli(), 10)
}

func (c *Registry) listen(ps *goredis.PubSub) {
	defer c.wg.Done()
	for msg := range ps.Channel() {
		scope, ok := registry.ParseScopePath(c.root, msg.Channel)
		if !ok {
			continue
		}
		c.refresh(context.Background(), scope)
	}
}

func (c *Registry) renewLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.cfg.Expiry / 2)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			ctx := context.Background()
			c.renew(ctx)
			c.sweep(ctx)
		}
	}
}

// renew pushes the expiry of every record registered through c.
func (c *Registry) renew(ctx context.Context) {
	c.regMu.Lock()
	records := make([]*record.Record, 0, len(c.registered))
	for _, r := range c.registered {
		records = append(records, r)
	}
	c.regMu.Unlock()
	if len(records) == 0 {
		return
	}

	expiry := c.expiry()
	_, err := c.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		for _, r := range records {
			p.HSet(ctx, registry.ScopeOf(r).Path(c.root), r.FullString(), expiry)
		}
		return nil
	})
	if err != nil {
		c.log.Warn("renewal failed", logger.ErrorFields("renew", err))
	}
}

// sweep reloads every known scope so expirations reach subscribers.
func (c *Registry) sweep(ctx context.Context) {
	c.mu.Lock()
	scopes := sortedScopes(c.state)
	c.mu.Unlock()
	for _, scope := range scopes {
		c.refresh(ctx, scope)
	}
}

// refresh reloads one scope and notifies subscribers when it changed.
func (c *Registry) refresh(ctx context.Context, scope registry.Scope) {
	entries, err := c.loadScope(ctx, scope.Path(c.root))
	if err != nil {
		c.log.Warn("scope reload failed", logger.Fields(
			logger.FieldInterface, scope.Interface,
			logger.FieldCategory, scope.Category,
			logger.FieldError, err.Error(),
		))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.pubsub == nil {
		return
	}
	if sameKeys(c.state[scope], entries) {
		return
	}
	if len(entries) == 0 {
		delete(c.state, scope)
	} else {
		c.state[scope] = entries
	}
	c.subs.Broadcast(scope, sortedRecords(entries))
}

func (c *Registry) loadAll(ctx context.Context) (snapshot, error) {
	out := make(snapshot)
	iter := c.rdb.Scan(ctx, 0, c.root+"/*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		scope, ok := registry.ParseScopePath(c.root, key)
		if !ok || scope.Path(c.root) != key {
			continue
		}
		entries, err := c.loadScope(ctx, key)
		if err != nil {
			c.log.Warn("skipping unreadable key", logger.Fields(logger.FieldRecordID, key, logger.FieldError, err.Error()))
			continue
		}
		if len(entries) > 0 {
			out[scope] = entries
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// loadScope reads a scope hash, dropping expired and unparsable fields.
func (c *Registry) loadScope(ctx context.Context, key string) (map[string]*record.Record, error) {
	fields, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	now := c.now().UnixMilli()
	entries := make(map[string]*record.Record, len(fields))
	var expired []string
	for field, value := range fields {
		if exp, err := strconv.ParseInt(value, 10, 64); err == nil && exp < now {
			expired = append(expired, field)
			continue
		}
		r, err := record.Parse(field)
		if err != nil || r.IsTombstone() {
			continue
		}
		entries[r.FullString()] = r
	}
	if len(expired) > 0 {
		if err := c.rdb.HDel(ctx, key, expired...).Err(); err != nil {
			c.log.Warn("expired field cleanup failed", logger.ErrorFields("expire", err))
		}
	}
	return entries, nil
}

func sameKeys(a, b map[string]*record.Record) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func sortedScopes(s snapshot) []registry.Scope {
	out := make([]registry.Scope, 0, len(s))
	for scope := range s {
		out = append(out, scope)
	}
	slices.SortFunc(out, func(a, b registry.Scope) int {
		if c := strings.Compare(a.Interface, b.Interface); c != 0 {
			return c
		}
		return strings.Compare(a.Category, b.Category)
	})
	return out
}

func sortedRecords(entries map[string]*record.Record) []*record.Record {
	out := make([]*record.Record, 0, len(entries))
	for _, r := range entries {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b *record.Record) int {
		return strings.Compare(a.FullString(), b.FullString())
	})
	return out
}
