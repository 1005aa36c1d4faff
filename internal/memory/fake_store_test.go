package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/reflective-ai/reflective-server/internal/model"
	"github.com/reflective-ai/reflective-server/internal/vecstore"
)

// fakeStore is an in-memory vecstore.Store. Query distances are scripted per
// record id through the distances map; unscripted records rank last.
type fakeStore struct {
	mu          sync.Mutex
	collections map[string][]vecstore.Record
	distances   map[string]float64
	failCount   map[string]bool // collections whose Count fails
	failAll     bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		collections: make(map[string][]vecstore.Record),
		distances:   make(map[string]float64),
		failCount:   make(map[string]bool),
	}
}

func (f *fakeStore) EnsureCollection(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.collections[name]; !ok {
		f.collections[name] = nil
	}
	return nil
}

func (f *fakeStore) Add(ctx context.Context, collection string, recs []vecstore.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return fmt.Errorf("%w: fake failure", model.ErrStorage)
	}
	for _, r := range recs {
		for _, have := range f.collections[collection] {
			if have.ID == r.ID {
				return fmt.Errorf("%w: %s", model.ErrDuplicateID, r.ID)
			}
		}
		r.Metadata = vecstore.CleanMetadata(r.Metadata)
		f.collections[collection] = append(f.collections[collection], r)
	}
	return nil
}

func (f *fakeStore) Update(ctx context.Context, collection string, recs []vecstore.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return fmt.Errorf("%w: fake failure", model.ErrStorage)
	}
	for _, r := range recs {
		found := false
		for i, have := range f.collections[collection] {
			if have.ID == r.ID {
				r.Metadata = vecstore.CleanMetadata(r.Metadata)
				f.collections[collection][i] = r
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s", model.ErrNotFound, r.ID)
		}
	}
	return nil
}

func (f *fakeStore) Get(ctx context.Context, collection string, ids []string, where map[string]interface{}) ([]vecstore.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, fmt.Errorf("%w: fake failure", model.ErrStorage)
	}
	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}
	var out []vecstore.Record
	for _, r := range f.collections[collection] {
		if len(ids) > 0 && !idSet[r.ID] {
			continue
		}
		if !vecstore.MatchesWhere(r.Metadata, where) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) Query(ctx context.Context, collection, queryText string, k int) ([]vecstore.QueryHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, fmt.Errorf("%w: fake failure", model.ErrStorage)
	}
	var hits []vecstore.QueryHit
	for _, r := range f.collections[collection] {
		d, ok := f.distances[r.ID]
		if !ok {
			d = 1.0
		}
		hits = append(hits, vecstore.QueryHit{Record: r, Distance: d})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (f *fakeStore) Delete(ctx context.Context, collection string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		found := false
		recs := f.collections[collection]
		for i, r := range recs {
			if r.ID == id {
				f.collections[collection] = append(recs[:i], recs[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s", model.ErrNotFound, id)
		}
	}
	return nil
}

func (f *fakeStore) Count(ctx context.Context, collection string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCount[collection] {
		return 0, fmt.Errorf("%w: fake count failure", model.ErrStorage)
	}
	return len(f.collections[collection]), nil
}

func (f *fakeStore) Close() error { return nil }
