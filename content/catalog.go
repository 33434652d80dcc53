package content

import "sync"

// Catalog holds the set of available (published) records and fans out every
// new snapshot to its subscribers.
type Catalog struct {
	mu        sync.RWMutex
	records   []Record
	published bool
	subs      map[*Subscription]struct{}
}

// Subscription receives catalog snapshots on C until Close is called. Only the
// newest snapshot is buffered; a slow reader skips intermediate ones.
type Subscription struct {
	C <-chan []Record

	ch      chan []Record
	catalog *Catalog
	once    sync.Once
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{subs: make(map[*Subscription]struct{})}
}

// Publish replaces the catalog content with the published subset of records.
func (c *Catalog) Publish(records []Record) {
	available := make([]Record, 0, len(records))
	for _, r := range records {
		if r.IsPublished() {
			available = append(available, r.Clone())
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = available
	c.published = true
	for sub := range c.subs {
		sub.deliver(CloneAll(available))
	}
}

// Snapshot returns a copy of the current records.
func (c *Catalog) Snapshot() []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CloneAll(c.records)
}

// Subscribe registers a new subscriber. When the catalog already holds a
// snapshot it is delivered immediately.
func (c *Catalog) Subscribe() *Subscription {
	ch := make(chan []Record, 1)
	sub := &Subscription{C: ch, ch: ch, catalog: c}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs[sub] = struct{}{}
	if c.published {
		sub.deliver(CloneAll(c.records))
	}
	return sub
}

// Subscribers reports the number of live subscriptions.
func (c *Catalog) Subscribers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs)
}

// Close releases the subscription and closes C. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.catalog.mu.Lock()
		delete(s.catalog.subs, s)
		close(s.ch)
		s.catalog.mu.Unlock()
	})
}

// deliver must be called with the catalog lock held.
func (s *Subscription) deliver(records []Record) {
	select {
	case <-s.ch:
	default:
	}
	s.ch <- records
}
