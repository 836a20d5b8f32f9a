package docstore

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"linkup/pkg/apperr"
)

// MemStore is an in-memory Store. It backs the test suite and is the
// zero-config fallback when no Mongo deployment is configured. Snapshot
// delivery happens synchronously on the mutating goroutine.
type MemStore struct {
	mu    sync.Mutex
	txnMu sync.Mutex
	cols  map[string]map[string]Document
	subs  map[int]*memSub
	next  int
	seq   uint64
	clock func() time.Time
}

type memSub struct {
	collection string
	filter     Filter
	order      Order
	onSnapshot SnapshotFunc
	cancelled  atomic.Bool

	deliverMu sync.Mutex
	seenSeq   uint64
}

// deliver hands a snapshot to the subscriber. Snapshots are stamped with a
// store-wide sequence number at compute time (under the store mutex); a
// snapshot older than the last delivered one is dropped, so deliveries racing
// on different goroutines cannot leave the mirror on stale contents.
func (sub *memSub) deliver(seq uint64, docs []Document) {
	sub.deliverMu.Lock()
	defer sub.deliverMu.Unlock()
	if sub.cancelled.Load() || seq <= sub.seenSeq {
		return
	}
	sub.seenSeq = seq
	sub.onSnapshot(docs)
}

func NewMemStore() *MemStore {
	return &MemStore{
		cols:  make(map[string]map[string]Document),
		subs:  make(map[int]*memSub),
		clock: time.Now,
	}
}

func (s *MemStore) Write(ctx context.Context, collection, id string, fields Document, merge bool) (string, error) {
	s.mu.Lock()
	col := s.col(collection)
	if id == "" {
		id = ulid.Make().String()
	}
	doc, exists := col[id]
	if !merge || !exists {
		doc = Document{}
	}
	for k, v := range fields {
		doc[k] = s.resolve(v)
	}
	doc["_id"] = id
	col[id] = doc
	deliveries := s.pending(collection)
	s.mu.Unlock()

	run(deliveries)
	return id, nil
}

func (s *MemStore) Read(ctx context.Context, collection, id string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.col(collection)[id]
	if !ok {
		return nil, apperr.NotFound("document not found: " + collection + "/" + id)
	}
	return deepCopy(doc).(Document), nil
}

func (s *MemStore) Query(ctx context.Context, collection string, filter Filter, order Order) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(collection, filter, order), nil
}

func (s *MemStore) Subscribe(ctx context.Context, collection string, filter Filter, order Order, onSnapshot SnapshotFunc, onError ErrorFunc) (CancelFunc, error) {
	sub := &memSub{collection: collection, filter: filter, order: order, onSnapshot: onSnapshot}

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = sub
	s.seq++
	seq := s.seq
	initial := s.snapshot(collection, filter, order)
	s.mu.Unlock()

	sub.deliver(seq, initial)

	cancel := func() {
		// taking deliverMu waits out an in-flight delivery, so none lands
		// after cancel returns
		sub.deliverMu.Lock()
		sub.cancelled.Store(true)
		sub.deliverMu.Unlock()
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
	return cancel, nil
}

func (s *MemStore) Apply(ctx context.Context, collection, id string, updates ...Update) error {
	s.mu.Lock()
	doc, ok := s.col(collection)[id]
	if !ok {
		s.mu.Unlock()
		return apperr.NotFound("document not found: " + collection + "/" + id)
	}
	for _, u := range updates {
		switch u.Op {
		case UpSet:
			doc[u.Field] = s.resolve(u.Value)
		case UpAddToSet:
			list := asAnyList(doc[u.Field])
			if !containsValue(list, u.Value) {
				list = append(list, deepCopy(u.Value))
			}
			doc[u.Field] = list
		case UpPull:
			list := asAnyList(doc[u.Field])
			kept := make([]any, 0, len(list))
			for _, v := range list {
				if !reflect.DeepEqual(v, u.Value) {
					kept = append(kept, v)
				}
			}
			doc[u.Field] = kept
		case UpPush:
			doc[u.Field] = append(asAnyList(doc[u.Field]), deepCopy(u.Value))
		}
	}
	deliveries := s.pending(collection)
	s.mu.Unlock()

	run(deliveries)
	return nil
}

func (s *MemStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	delete(s.col(collection), id)
	deliveries := s.pending(collection)
	s.mu.Unlock()

	run(deliveries)
	return nil
}

// RunTransaction serializes transactions against each other. Writes are not
// rolled back when fn fails part-way.
func (s *MemStore) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txnMu.Lock()
	defer s.txnMu.Unlock()
	return fn(ctx)
}

// SetClock overrides the write-timestamp clock. Test hook.
func (s *MemStore) SetClock(clock func() time.Time) {
	s.mu.Lock()
	s.clock = clock
	s.mu.Unlock()
}

// callers must hold mu

func (s *MemStore) col(name string) map[string]Document {
	col, ok := s.cols[name]
	if !ok {
		col = make(map[string]Document)
		s.cols[name] = col
	}
	return col
}

func (s *MemStore) resolve(v any) any {
	if _, ok := v.(serverTimestamp); ok {
		return s.clock()
	}
	return deepCopy(v)
}

func (s *MemStore) snapshot(collection string, filter Filter, order Order) []Document {
	docs := make([]Document, 0)
	for _, doc := range s.cols[collection] {
		if matches(doc, filter) {
			docs = append(docs, deepCopy(doc).(Document))
		}
	}
	sortDocs(docs, order)
	return docs
}

func (s *MemStore) pending(collection string) []func() {
	s.seq++
	seq := s.seq
	var deliveries []func()
	for _, sub := range s.subs {
		if sub.collection != collection {
			continue
		}
		sub := sub
		snap := s.snapshot(collection, sub.filter, sub.order)
		deliveries = append(deliveries, func() { sub.deliver(seq, snap) })
	}
	return deliveries
}

func run(deliveries []func()) {
	for _, d := range deliveries {
		d()
	}
}

func matches(doc Document, filter Filter) bool {
	for _, c := range filter {
		v := doc[c.Field]
		switch c.Op {
		case OpEq:
			if !reflect.DeepEqual(v, c.Value) {
				return false
			}
		case OpArrayContains:
			if !containsValue(asAnyList(v), c.Value) {
				return false
			}
		case OpPrefix:
			prefix, _ := c.Value.(string)
			if !hasPrefix(v, prefix) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func hasPrefix(v any, prefix string) bool {
	switch val := v.(type) {
	case string:
		return strings.HasPrefix(val, prefix)
	default:
		for _, el := range asAnyList(v) {
			if s, ok := el.(string); ok && strings.HasPrefix(s, prefix) {
				return true
			}
		}
	}
	return false
}

func containsValue(list []any, v any) bool {
	for _, el := range list {
		if reflect.DeepEqual(el, v) {
			return true
		}
	}
	return false
}

func asAnyList(v any) []any {
	switch list := v.(type) {
	case []any:
		return list
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out
	default:
		return nil
	}
}

func sortDocs(docs []Document, order Order) {
	if order.Field == "" {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]
		cmp := compareValues(a[order.Field], b[order.Field])
		if cmp == 0 {
			// stable tie-break on the (time-ordered) document ID
			cmp = strings.Compare(asID(a), asID(b))
		}
		if order.Desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

func asID(doc Document) string {
	id, _ := doc["_id"].(string)
	return id
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0
		}
		switch {
		case av.Before(bv):
			return -1
		case av.After(bv):
			return 1
		}
		return 0
	case string:
		bv, _ := b.(string)
		return strings.Compare(av, bv)
	case int:
		bv, _ := b.(int)
		return av - bv
	case int64:
		bv, _ := b.(int64)
		return int(av - bv)
	case float64:
		bv, _ := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	}
	return 0
}

func deepCopy(v any) any {
	switch val := v.(type) {
	case Document:
		out := make(Document, len(val))
		for k, inner := range val {
			out[k] = deepCopy(inner)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = deepCopy(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = deepCopy(inner)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return v
	}
}

