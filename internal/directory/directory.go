// Package directory keeps an in-memory index of the breed catalog for
// client-side lookups.
//
// A Directory is populated by a single fetch of the full breed list. After
// that every lookup is answered synchronously from memory. State is held in
// an immutable snapshot that Init swaps atomically, so readers never observe
// a partially built index.
package directory

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"petmarket/catalog/internal/client"
	"petmarket/catalog/internal/domain"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// DefaultFetchTimeout bounds a breed list fetch unless WithFetchTimeout says otherwise
const DefaultFetchTimeout = 10 * time.Second

// Snapshot is one fully built generation of the directory. Snapshots handed
// out by Directory own their slices.
type Snapshot struct {
	Breeds     []domain.Breed
	Categories []domain.Category

	byCategory map[string][]domain.Breed
	byCode     map[string]domain.Breed
}

// newSnapshot copies breeds so the source keeps no handle on directory state
func newSnapshot(source []domain.Breed) *Snapshot {
	breeds := cloneBreeds(source)
	categories, byCategory := domain.GroupByCategory(breeds)

	byCode := make(map[string]domain.Breed, len(breeds))
	for _, breed := range breeds {
		if _, ok := byCode[breed.Code]; !ok {
			byCode[breed.Code] = breed
		}
	}

	return &Snapshot{
		Breeds:     breeds,
		Categories: categories,
		byCategory: byCategory,
		byCode:     byCode,
	}
}

func (s *Snapshot) clone() Snapshot {
	categories := make([]domain.Category, len(s.Categories))
	copy(categories, s.Categories)

	return Snapshot{
		Breeds:     cloneBreeds(s.Breeds),
		Categories: categories,
		byCategory: s.byCategory,
		byCode:     s.byCode,
	}
}

// fetchResult is shared by every caller of one coalesced fetch
type fetchResult struct {
	snapshot *Snapshot
	notified sync.Once
}

// Option configures a Directory
type Option func(*Directory)

// WithFetchTimeout bounds a single breed list fetch. Zero disables the bound.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(d *Directory) {
		d.fetchTimeout = timeout
	}
}

// Directory is the in-memory breed catalog. Lookups are safe for concurrent use.
type Directory struct {
	source       client.BreedSource
	fetchTimeout time.Duration

	inflight singleflight.Group
	state    atomic.Pointer[Snapshot]

	readyOnce sync.Once
	ready     chan struct{}

	subscribersMutex sync.Mutex
	subscribers      map[int]func(Snapshot)
	nextSubscriberID int
}

// New creates an empty, not ready directory. Call Init (or Start) to populate it.
func New(source client.BreedSource, opts ...Option) *Directory {
	d := &Directory{
		source:       source,
		fetchTimeout: DefaultFetchTimeout,
		ready:        make(chan struct{}),
		subscribers:  make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.state.Store(newSnapshot(nil))
	return d
}

// Init fetches the full breed list and replaces the directory contents with it.
//
// Overlapping calls share one in-flight fetch and all receive its result. A
// failed fetch leaves the previous contents untouched and returns the source
// error. A cancelled ctx releases the caller but does not abort a fetch that
// other callers may be waiting for; the fetch itself is bounded by the fetch
// timeout.
//
// Subscribers run after the fetch has left the in-flight group, so a
// subscriber may call Init itself.
func (d *Directory) Init(ctx context.Context) error {
	ch := d.inflight.DoChan("breed_list", func() (any, error) {
		snapshot, err := d.fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		return &fetchResult{snapshot: snapshot}, nil
	})

	select {
	case <-ctx.Done():
		// whoever receives the result first notifies, even if every caller gave up
		go func() { d.notifyOnce(<-ch) }()
		return ctx.Err()
	case res := <-ch:
		if res.Shared {
			log.Debugf("Breed directory init shared an in-flight fetch")
		}
		d.notifyOnce(res)
		return res.Err
	}
}

func (d *Directory) notifyOnce(res singleflight.Result) {
	result, ok := res.Val.(*fetchResult)
	if res.Err != nil || !ok {
		return
	}
	result.notified.Do(func() { d.notify(result.snapshot) })
}

// Start runs Init in the background. The returned channel receives the
// result once and is then closed.
func (d *Directory) Start(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- d.Init(ctx)
	}()
	return done
}

func (d *Directory) fetch(ctx context.Context) (*Snapshot, error) {
	if d.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.fetchTimeout)
		defer cancel()
	}

	started := time.Now()
	breeds, err := d.source.GetBreedList(ctx)
	if err != nil {
		log.Errorf("❌ Failed to load breed list: %v", err)
		return nil, err
	}

	snapshot := newSnapshot(breeds)
	d.state.Store(snapshot)

	log.Infof("✅ Breed directory loaded: %d breeds in %d categories (%v)",
		len(snapshot.Breeds), len(snapshot.Categories), time.Since(started).Round(time.Millisecond))

	if len(snapshot.Categories) > 0 {
		d.readyOnce.Do(func() { close(d.ready) })
	}

	return snapshot, nil
}

// IsReady reports whether the directory holds at least one category
func (d *Directory) IsReady() bool {
	return len(d.state.Load().Categories) > 0
}

// Ready is closed the first time the directory becomes ready
func (d *Directory) Ready() <-chan struct{} {
	return d.ready
}

// Snapshot returns a copy of the current generation of the directory
func (d *Directory) Snapshot() Snapshot {
	return d.state.Load().clone()
}

// Breeds returns the full breed list in source order
func (d *Directory) Breeds() []domain.Breed {
	return cloneBreeds(d.state.Load().Breeds)
}

// Categories returns the categories in order of first appearance
func (d *Directory) Categories() []domain.Category {
	categories := d.state.Load().Categories
	out := make([]domain.Category, len(categories))
	copy(out, categories)
	return out
}

// BreedsByCategory returns the breeds of one category, empty for unknown codes
func (d *Directory) BreedsByCategory(categoryCode string) []domain.Breed {
	return cloneBreeds(d.state.Load().byCategory[categoryCode])
}

// FindBreedByCode looks a breed up by its code
func (d *Directory) FindBreedByCode(code string) (domain.Breed, bool) {
	breed, ok := d.state.Load().byCode[code]
	return breed, ok
}

// FindBreedByName filters breeds by category and by a case-insensitive
// substring of the display name. Either filter may be empty; with both empty
// the full list is returned. The result is never nil.
func (d *Directory) FindBreedByName(filter domain.BreedFilter) []domain.Breed {
	snapshot := d.state.Load()

	switch {
	case filter.CategoryCode != "" && filter.Subtext == "":
		return cloneBreeds(snapshot.byCategory[filter.CategoryCode])
	case filter.CategoryCode == "" && filter.Subtext != "":
		return filterByName(snapshot.Breeds, filter.Subtext)
	case filter.CategoryCode != "" && filter.Subtext != "":
		return filterByName(snapshot.byCategory[filter.CategoryCode], filter.Subtext)
	default:
		return cloneBreeds(snapshot.Breeds)
	}
}

// Subscribe registers fn to be called with the new snapshot after every
// successful Init. The returned func removes the subscription.
func (d *Directory) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	d.subscribersMutex.Lock()
	defer d.subscribersMutex.Unlock()

	id := d.nextSubscriberID
	d.nextSubscriberID++
	d.subscribers[id] = fn

	return func() {
		d.subscribersMutex.Lock()
		defer d.subscribersMutex.Unlock()
		delete(d.subscribers, id)
	}
}

func (d *Directory) notify(snapshot *Snapshot) {
	d.subscribersMutex.Lock()
	subscribers := make([]func(Snapshot), 0, len(d.subscribers))
	for _, fn := range d.subscribers {
		subscribers = append(subscribers, fn)
	}
	d.subscribersMutex.Unlock()

	for _, fn := range subscribers {
		fn(snapshot.clone())
	}
}

func filterByName(breeds []domain.Breed, subtext string) []domain.Breed {
	needle := strings.ToLower(subtext)

	out := make([]domain.Breed, 0)
	for _, breed := range breeds {
		if breed.NameContains(needle) {
			out = append(out, breed)
		}
	}
	return out
}

func cloneBreeds(breeds []domain.Breed) []domain.Breed {
	out := make([]domain.Breed, len(breeds))
	copy(out, breeds)
	return out
}
