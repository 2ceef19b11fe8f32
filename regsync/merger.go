package regsync

import (
	"slices"

	"github.com/kbukum/govkit/logger"
	"github.com/kbukum/govkit/record"
)

// MergeResult summarizes one applied batch.
type MergeResult struct {
	// Categories lists the categories that were updated, sorted.
	Categories []string
	// Removed holds the service keys removed per category.
	Removed map[string][]string
	// Installed holds the service keys written per category.
	Installed map[string][]string
	// Records is the number of live records in the batch.
	Records int
	// RecordsByCategory splits Records by category.
	RecordsByCategory map[string]int
	// Tombstones is the number of tombstones applied.
	Tombstones int
	// NewIDs is the number of ids allocated for the batch.
	NewIDs int
}

// Empty reports whether the batch changed nothing.
func (r MergeResult) Empty() bool {
	return len(r.Categories) == 0
}

// Merger applies notification batches to a Cache. Batches must not be
// applied concurrently.
type Merger struct {
	cache *Cache
	ids   *IDAssigner
	log   *logger.Logger
}

// NewMerger creates a Merger writing to cache.
func NewMerger(cache *Cache, ids *IDAssigner, log *logger.Logger) *Merger {
	return &Merger{cache: cache, ids: ids, log: log}
}

type tombstone struct {
	iface   string
	group   string
	version string
}

// Apply merges one batch. A batch is the complete current state of the
// records it mentions: live records replace their service keys, keys of the
// batch interface missing from the batch are pruned, and tombstones remove
// keys outright.
func (m *Merger) Apply(batch []*record.Record) MergeResult {
	result := MergeResult{
		Removed:           make(map[string][]string),
		Installed:         make(map[string][]string),
		RecordsByCategory: make(map[string]int),
	}
	if len(batch) == 0 {
		return result
	}

	tombstones := make(map[string][]tombstone)
	staged := make(map[string]ServiceMap)
	var iface string

	for _, r := range batch {
		if r == nil {
			continue
		}
		category := r.Category()
		if r.IsTombstone() {
			t := tombstone{iface: r.ServiceInterface(), group: r.Group(), version: r.Version()}
			if t.iface == "" {
				m.log.Warn("skipping tombstone without interface", logger.Fields(
					logger.FieldCategory, category,
					"record", r.FullString(),
				))
				continue
			}
			tombstones[category] = append(tombstones[category], t)
			continue
		}

		if iface == "" {
			iface = r.ServiceInterface()
		}
		services := staged[category]
		if services == nil {
			services = make(ServiceMap)
			staged[category] = services
		}
		key := r.ServiceKey()
		ids := services[key]
		if ids == nil {
			ids = make(map[int64]*record.Record)
			services[key] = ids
		}
		id, fresh := m.ids.assign(r.FullString())
		if fresh {
			result.NewIDs++
		}
		ids[id] = r
		result.Records++
		result.RecordsByCategory[category]++
	}

	categories := make([]string, 0, len(tombstones)+len(staged))
	for c := range tombstones {
		categories = append(categories, c)
	}
	for c := range staged {
		if _, ok := tombstones[c]; !ok {
			categories = append(categories, c)
		}
	}
	slices.Sort(categories)

	for _, category := range categories {
		m.cache.Update(category, func(txn *CategoryTxn) {
			for _, t := range tombstones[category] {
				result.Tombstones++
				if t.group != record.AnyValue && t.version != record.AnyValue {
					key := record.BuildServiceKey(t.group, t.iface, t.version)
					if txn.RemoveServiceKey(key) {
						result.Removed[category] = append(result.Removed[category], key)
					}
					continue
				}
				removed := txn.RemoveMatchingKeysForInterface(t.iface, t.group, t.version)
				result.Removed[category] = append(result.Removed[category], removed...)
			}

			services, ok := staged[category]
			if !ok {
				return
			}
			for _, key := range txn.Keys() {
				if _, keep := services[key]; keep {
					continue
				}
				if record.ServiceInterface(key) == iface && txn.RemoveServiceKey(key) {
					result.Removed[category] = append(result.Removed[category], key)
				}
			}
			txn.Replace(services)
			installed := make([]string, 0, len(services))
			for key := range services {
				installed = append(installed, key)
			}
			slices.Sort(installed)
			result.Installed[category] = installed
		})
		result.Categories = append(result.Categories, category)
	}
	return result
}
