// Package consul stores registry records in the consul KV store.
//
// Each record lives under root/interface/category/<escaped full string>
// with the full string as its value. Subscriptions run one blocking query
// over the whole root and notify the scopes whose record set changed.
package consul

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/consul/api"

	"github.com/kbukum/govkit/errors"
	"github.com/kbukum/govkit/logger"
	"github.com/kbukum/govkit/record"
	"github.com/kbukum/govkit/registry"
)

func init() {
	registry.RegisterFactory(registry.ProviderConsul, func(cfg registry.Config, log *logger.Logger) (registry.Registry, error) {
		return New(cfg, log)
	})
}

type snapshot map[registry.Scope]map[string]*record.Record

// Registry implements registry.Registry on consul KV.
type Registry struct {
	client *api.Client
	kv     *api.KV
	root   string
	cfg    registry.ConsulConfig
	log    *logger.Logger
	subs   registry.Subscriptions

	// mu guards the watcher state and orders notifications.
	mu     sync.Mutex
	state  snapshot
	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

var (
	_ registry.Registry = (*Registry)(nil)
	_ registry.Pinger   = (*Registry)(nil)
)

// New creates a consul-backed Registry. No request is made until the first call.
func New(cfg registry.Config, log *logger.Logger) (*Registry, error) {
	cfg.ApplyDefaults()

	apiCfg := api.DefaultConfig()
	apiCfg.Address = strings.TrimPrefix(strings.TrimPrefix(cfg.Consul.Address, "http://"), "https://")
	apiCfg.Scheme = cfg.Consul.Scheme
	apiCfg.Token = cfg.Consul.Token
	if cfg.Consul.Datacenter != "" {
		apiCfg.Datacenter = cfg.Consul.Datacenter
	}

	client, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("consul client: %w", err)
	}
	return &Registry{
		client: client,
		kv:     client.KV(),
		root:   cfg.Root,
		cfg:    cfg.Consul,
		log:    log,
	}, nil
}

// Ping checks that the agent has an elected leader.
func (c *Registry) Ping(ctx context.Context) error {
	leader, err := c.client.Status().Leader()
	if err != nil {
		return err
	}
	if leader == "" {
		return fmt.Errorf("consul has no leader")
	}
	return nil
}

// Register writes r under its scope.
func (c *Registry) Register(ctx context.Context, r *record.Record) error {
	if r == nil {
		return errors.MissingField("record")
	}
	if r.ServiceInterface() == "" || r.IsTombstone() {
		return errors.InvalidInput("record", "only live records with an interface can be registered")
	}
	pair := &api.KVPair{Key: recordKey(c.root, r), Value: []byte(r.FullString())}
	if _, err := c.kv.Put(pair, (&api.WriteOptions{}).WithContext(ctx)); err != nil {
		c.log.Error("consul put failed", logger.ErrorFields("register", err))
		return errors.RegistryError("register", err)
	}
	c.log.Debug("record registered", logger.Fields(logger.FieldRecordID, pair.Key))
	return nil
}

// Unregister deletes r's key.
func (c *Registry) Unregister(ctx context.Context, r *record.Record) error {
	if r == nil {
		return errors.MissingField("record")
	}
	key := recordKey(c.root, r)
	if _, err := c.kv.Delete(key, (&api.WriteOptions{}).WithContext(ctx)); err != nil {
		c.log.Error("consul delete failed", logger.ErrorFields("unregister", err))
		return errors.RegistryError("unregister", err)
	}
	c.log.Debug("record unregistered", logger.Fields(logger.FieldRecordID, key))
	return nil
}

// Subscribe loads the current records, delivers them to listener and keeps
// a blocking query running until Close.
func (c *Registry) Subscribe(ctx context.Context, descriptor *record.Record, listener registry.NotifyListener) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.ServiceUnavailable("registry")
	}
	if c.cancel == nil {
		state, index, err := c.load(ctx, 0)
		if err != nil {
			return errors.RegistryError("subscribe", err)
		}
		c.state = state
		watchCtx, cancel := context.WithCancel(context.Background())
		c.cancel = cancel
		c.done = make(chan struct{})
		go c.watch(watchCtx, index)
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

// Unsubscribe implements registry.Registry. The blocking query keeps
// running until Close.
func (c *Registry) Unsubscribe(ctx context.Context, descriptor *record.Record, listener registry.NotifyListener) error {
	if !c.subs.Remove(descriptor, listener) {
		return errors.NotFound("subscription", descriptor.FullString())
	}
	return nil
}

// Close stops the watcher and drops every subscription.
func (c *Registry) Close() error {
	c.mu.Lock()
	c.closed = true
	cancel, done := c.cancel, c.done
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	c.subs.Clear()
	return nil
}

func (c *Registry) load(ctx context.Context, index uint64) (snapshot, uint64, error) {
	opts := &api.QueryOptions{WaitIndex: index, WaitTime: c.cfg.WaitTime}
	pairs, meta, err := c.kv.List(c.root+"/", opts.WithContext(ctx))
	if err != nil {
		return nil, 0, err
	}
	return decodePairs(c.root, pairs, c.log), meta.LastIndex, nil
}

func (c *Registry) watch(ctx context.Context, index uint64) {
	defer close(c.done)
	for {
		if ctx.Err() != nil {
			return
		}
		next, lastIndex, err := c.load(ctx, index)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Warn("consul watch error", logger.ErrorFields("watch", err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.cfg.RetryInterval):
			}
			continue
		}
		if lastIndex == index {
			continue
		}
		// Consul resets the index after a snapshot restore.
		if lastIndex < index {
			index = 0
			continue
		}
		index = lastIndex

		c.mu.Lock()
		changed := diffScopes(c.state, next)
		c.state = next
		for _, scope := range changed {
			c.subs.Broadcast(scope, sortedRecords(next[scope]))
		}
		c.mu.Unlock()
	}
}

func recordKey(root string, r *record.Record) string {
	return registry.ScopeOf(r).Path(root) + "/" + url.PathEscape(r.FullString())
}

// decodePairs turns KV pairs into records grouped by scope. Keys that are
// not record keys and values that do not parse are skipped.
func decodePairs(root string, pairs api.KVPairs, log *logger.Logger) snapshot {
	out := make(snapshot)
	for _, p := range pairs {
		rest, ok := strings.CutPrefix(p.Key, root+"/")
		if !ok {
			continue
		}
		parts := strings.SplitN(rest, "/", 3)
		if len(parts) != 3 || parts[2] == "" {
			continue
		}
		raw := string(p.Value)
		if raw == "" {
			var err error
			if raw, err = url.PathUnescape(parts[2]); err != nil {
				log.Warn("skipping undecodable key", logger.Fields(logger.FieldRecordID, p.Key))
				continue
			}
		}
		r, err := record.Parse(raw)
		if err != nil || r.IsTombstone() {
			log.Warn("skipping invalid record", logger.Fields(logger.FieldRecordID, p.Key))
			continue
		}
		scope := registry.ScopeOf(r)
		if out[scope] == nil {
			out[scope] = make(map[string]*record.Record)
		}
		out[scope][r.FullString()] = r
	}
	return out
}

// diffScopes returns the scopes whose record set differs between prev and
// next, sorted by interface then category.
func diffScopes(prev, next snapshot) []registry.Scope {
	seen := make(map[registry.Scope]struct{})
	var changed []registry.Scope
	check := func(s registry.Scope) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		if !sameKeys(prev[s], next[s]) {
			changed = append(changed, s)
		}
	}
	for s := range prev {
		check(s)
	}
	for s := range next {
		check(s)
	}
	slices.SortFunc(changed, compareScopes)
	return changed
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
	slices.SortFunc(out, compareScopes)
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

func compareScopes(a, b registry.Scope) int {
	if c := strings.Compare(a.Interface, b.Interface); c != 0 {
		return c
	}
	return strings.Compare(a.Category, b.Category)
}
