package actions

import (
	"cmp"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// entry keeps the caller's predicate in desc.Condition; only memo wraps it,
// so descriptors handed out never carry a memo.
type entry struct {
	desc Descriptor
	memo *conditionMemo
	seq  uint64
}

type viewKey struct {
	group   Group
	context Context
}

// snapshot is an immutable view of the descriptor set. Derived views are
// computed lazily and cached on the snapshot, so replacing the snapshot is
// what invalidates them.
type snapshot struct {
	byID   map[string]*entry
	sorted []*entry

	groups sync.Map // Group -> []*entry
	views  sync.Map // viewKey -> []*entry
}

func newSnapshot(byID map[string]*entry) *snapshot {
	sorted := slices.Collect(maps.Values(byID))
	slices.SortFunc(sorted, func(a, b *entry) int {
		if c := cmp.Compare(a.desc.Order, b.desc.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	return &snapshot{byID: byID, sorted: sorted}
}

func (s *snapshot) group(g Group) []*entry {
	if v, ok := s.groups.Load(g); ok {
		return v.([]*entry)
	}
	var out []*entry
	if g != "" {
		for _, e := range s.sorted {
			if e.desc.InGroup(g) {
				out = append(out, e)
			}
		}
	}
	v, _ := s.groups.LoadOrStore(g, out)
	return v.([]*entry)
}

func (s *snapshot) view(g Group, c Context) []*entry {
	key := viewKey{group: g, context: c}
	if v, ok := s.views.Load(key); ok {
		return v.([]*entry)
	}
	var out []*entry
	for _, e := range s.group(g) {
		if e.desc.ValidIn(c) {
			out = append(out, e)
		}
	}
	v, _ := s.views.LoadOrStore(key, out)
	return v.([]*entry)
}

// Registry is the live set of message action descriptors.
//
// Mutations serialize on a mutex and publish a fresh snapshot; queries read
// the current snapshot without taking that mutex.
type Registry struct {
	mu   sync.Mutex
	snap atomic.Pointer[snapshot]
	seq  uint64

	memoTTL time.Duration
	now     func() time.Time
	logger  *slog.Logger

	lmu          sync.Mutex
	listeners    map[int]func()
	nextListener int
}

// Option configures a Registry.
type Option func(*Registry)

// WithMemoTTL sets the memoization window for condition results.
// A non-positive value disables memoization.
func WithMemoTTL(d time.Duration) Option {
	return func(r *Registry) {
		r.memoTTL = d
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// WithLogger sets the logger used for dropped registrations and failing conditions.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		memoTTL:   DefaultMemoTTL,
		now:       time.Now,
		logger:    slog.Default(),
		listeners: make(map[int]func()),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.snap.Store(newSnapshot(map[string]*entry{}))
	return r
}

// Register inserts the descriptor, replacing any descriptor with the same id.
// A descriptor without an id is logged and dropped.
func (r *Registry) Register(d Descriptor) {
	if d.ID == "" {
		r.logger.Warn("Ignoring message action without id", "label", d.Label)
		return
	}
	d = d.clone()
	d.Groups = normalizeGroups(d.Groups)

	r.mutate(func(byID map[string]*entry) bool {
		e := &entry{desc: d}
		if prev, ok := byID[d.ID]; ok {
			e.seq = prev.seq
		} else {
			r.seq++
			e.seq = r.seq
		}
		r.wrapCondition(e)
		byID[d.ID] = e
		return true
	})
	r.logger.Debug("Registered message action", "id", d.ID, "groups", d.Groups, "order", d.Order)
}

// Remove deletes the descriptor for id. Unknown ids are ignored.
func (r *Registry) Remove(id string) {
	r.mutate(func(byID map[string]*entry) bool {
		if _, ok := byID[id]; !ok {
			return false
		}
		delete(byID, id)
		return true
	})
}

// Update merges the patch into the descriptor for id and reports whether
// the id was known.
func (r *Registry) Update(id string, p Patch) bool {
	var found bool
	r.mutate(func(byID map[string]*entry) bool {
		prev, ok := byID[id]
		if !ok {
			return false
		}
		found = true
		e := &entry{desc: prev.desc.clone(), memo: prev.memo, seq: prev.seq}
		p.apply(&e.desc)
		if p.Condition != nil {
			r.wrapCondition(e)
		}
		byID[id] = e
		return true
	})
	return found
}

// Clear removes every descriptor.
func (r *Registry) Clear() {
	r.mutate(func(byID map[string]*entry) bool {
		clear(byID)
		return true
	})
}

// Get returns a copy of the descriptor for id.
func (r *Registry) Get(id string) (Descriptor, bool) {
	e, ok := r.snap.Load().byID[id]
	if !ok {
		return Descriptor{}, false
	}
	return e.desc.clone(), true
}

// Len returns the number of live descriptors.
func (r *Registry) Len() int {
	return len(r.snap.Load().byID)
}

// All returns every descriptor ordered by Order, ties by registration order.
func (r *Registry) All() []Descriptor {
	return descriptors(r.snap.Load().sorted)
}

// ByGroup returns the descriptors carrying the group tag, ordered by Order
// with ties in registration order. Unknown groups yield an empty slice.
func (r *Registry) ByGroup(g Group) []Descriptor {
	return descriptors(r.snap.Load().group(g))
}

// ByContext filters candidates down to those valid in context c.
// An empty context keeps every candidate.
func (r *Registry) ByContext(c Context, candidates []Descriptor) []Descriptor {
	out := make([]Descriptor, 0, len(candidates))
	for _, d := range candidates {
		if d.ValidIn(c) {
			out = append(out, d)
		}
	}
	return out
}

// Visible returns the actions of group g that are valid in context c and
// whose condition holds for ec. With a nil ec the whole group is returned.
// A condition that panics hides its own action only.
func (r *Registry) Visible(ec *EvalContext, c Context, g Group) []Descriptor {
	snap := r.snap.Load()
	if ec == nil {
		return descriptors(snap.group(g))
	}

	view := snap.view(g, c)
	out := make([]Descriptor, 0, len(view))
	for _, e := range view {
		if r.visible(e, ec) {
			out = append(out, e.desc.clone())
		}
	}
	return out
}

// Allowed returns the descriptor for id when it is valid in context c and its
// condition holds for ec. Callers use it to re-check an action before
// running its handler.
func (r *Registry) Allowed(id string, ec *EvalContext, c Context) (Descriptor, bool) {
	e, ok := r.snap.Load().byID[id]
	if !ok || !e.desc.ValidIn(c) {
		return Descriptor{}, false
	}
	if ec != nil && !r.visible(e, ec) {
		return Descriptor{}, false
	}
	return e.desc.clone(), true
}

// Subscribe registers a listener that runs after every successful mutation.
// The returned function removes it.
func (r *Registry) Subscribe(fn func()) (unsubscribe func()) {
	r.lmu.Lock()
	id := r.nextListener
	r.nextListener++
	r.listeners[id] = fn
	r.lmu.Unlock()

	return func() {
		r.lmu.Lock()
		delete(r.listeners, id)
		r.lmu.Unlock()
	}
}

func (r *Registry) visible(e *entry, ec *EvalContext) (ok bool) {
	if e.memo == nil {
		return true
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Message action condition panicked", "id", e.desc.ID, "panic", rec)
			ok = false
		}
	}()
	return e.memo.eval(ec)
}

func (r *Registry) wrapCondition(e *entry) {
	if e.desc.Condition == nil {
		e.memo = nil
		return
	}
	e.memo = newConditionMemo(e.desc.Condition, r.memoTTL, r.now)
}

// mutate runs fn on a copy of the descriptor map. When fn reports a change,
// the copy becomes the new snapshot, memoized results are dropped and
// listeners are notified.
func (r *Registry) mutate(fn func(byID map[string]*entry) bool) {
	r.mu.Lock()
	byID := maps.Clone(r.snap.Load().byID)
	if !fn(byID) {
		r.mu.Unlock()
		return
	}
	for _, e := range byID {
		if e.memo != nil {
			e.memo.reset()
		}
	}
	r.snap.Store(newSnapshot(byID))
	r.mu.Unlock()

	r.notify()
}

func (r *Registry) notify() {
	r.lmu.Lock()
	fns := slices.Collect(maps.Values(r.listeners))
	r.lmu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func descriptors(entries []*entry) []Descriptor {
	out := make([]Descriptor, len(entries))
	for i, e := range entries {
		out[i] = e.desc.clone()
	}
	return out
}
