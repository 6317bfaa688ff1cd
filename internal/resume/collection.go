package resume

import (
	"errors"
	"sync"
	"time"

	"cvstudio/api/internal/store"
)

var ErrNoActive = errors.New("no active document")

// Collection is the working set behind one editor session: the owner's
// documents plus at most one active document receiving edits. Every
// mutation of the active document fires the change hook, which is where
// the autosave scheduler plugs in.
type Collection struct {
	mu       sync.Mutex
	docs     map[string]*store.Resume
	activeID string
	onChange func(store.Resume)
}

func NewCollection(docs []store.Resume, onChange func(store.Resume)) *Collection {
	c := &Collection{
		docs:     make(map[string]*store.Resume, len(docs)),
		onChange: onChange,
	}
	for i := range docs {
		d := docs[i]
		c.docs[d.ID] = &d
	}
	return c
}

func (c *Collection) Open(id string) (store.Resume, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.docs[id]
	if !ok {
		return store.Resume{}, store.ErrNotFound
	}
	c.activeID = id
	return *d, nil
}

func (c *Collection) Close() {
	c.mu.Lock()
	c.activeID = ""
	c.mu.Unlock()
}

func (c *Collection) Active() (store.Resume, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.activeID == "" {
		return store.Resume{}, ErrNoActive
	}
	return *c.docs[c.activeID], nil
}

// Add registers a document and makes it active.
func (c *Collection) Add(r store.Resume) {
	c.mu.Lock()
	d := r
	c.docs[d.ID] = &d
	c.activeID = d.ID
	c.mu.Unlock()
}

func (c *Collection) Remove(id string) {
	c.mu.Lock()
	delete(c.docs, id)
	if c.activeID == id {
		c.activeID = ""
	}
	c.mu.Unlock()
}

// Apply patches the active document. Without an active document it reports
// ErrNoActive and fires nothing.
func (c *Collection) Apply(p Patch, now time.Time) (store.Resume, error) {
	c.mu.Lock()
	if c.activeID == "" {
		c.mu.Unlock()
		return store.Resume{}, ErrNoActive
	}
	d := c.docs[c.activeID]
	ApplyUpdate(d, p, now)
	snapshot := *d
	hook := c.onChange
	c.mu.Unlock()

	if hook != nil {
		hook(snapshot)
	}
	return snapshot, nil
}
