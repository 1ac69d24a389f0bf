package admin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Hansade2005/shopsavvy/internal/records"
)

var ErrConfirmationRequired = errors.New("delete requires confirmation")

// Panel is the admin CRUD surface over one collection. It keeps a
// local mirror of the list so successful mutations do not trigger a
// full re-fetch: each remote success applies the same insert,
// replace-by-id or remove-by-id to the mirror. A remote failure
// leaves the mirror untouched; mutations are never partially
// applied.
type Panel struct {
	store      records.Store
	collection string

	mu     sync.Mutex
	mirror []records.Record
	loaded bool
}

func NewPanel(store records.Store, collection string) *Panel {
	return &Panel{store: store, collection: collection}
}

// Refresh re-fetches the full list from the record store.
func (p *Panel) Refresh(ctx context.Context) error {
	recs, err := p.store.Select(ctx, p.collection, nil)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", p.collection, err)
	}

	p.mu.Lock()
	p.mirror = recs
	p.loaded = true
	p.mu.Unlock()
	return nil
}

// List returns the mirrored list, fetching it on first use.
func (p *Panel) List(ctx context.Context) ([]records.Record, error) {
	p.mu.Lock()
	loaded := p.loaded
	p.mu.Unlock()

	if !loaded {
		if err := p.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]records.Record, len(p.mirror))
	copy(out, p.mirror)
	return out, nil
}

// Create inserts remotely, then appends to the mirror.
func (p *Panel) Create(ctx context.Context, rec records.Record) (records.Record, error) {
	created, err := p.store.Insert(ctx, p.collection, rec)
	if err != nil {
		return nil, fmt.Errorf("create in %s: %w", p.collection, err)
	}

	p.mu.Lock()
	p.mirror = append(p.mirror, created)
	p.mu.Unlock()
	return created, nil
}

// Update applies changes remotely, then replaces the mirrored record
// by id.
func (p *Panel) Update(ctx context.Context, id string, changes records.Record) (records.Record, error) {
	updated, err := p.store.Update(ctx, p.collection, id, changes)
	if err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", p.collection, id, err)
	}

	p.mu.Lock()
	for i, rec := range p.mirror {
		if rec.ID() == id {
			p.mirror[i] = updated
			break
		}
	}
	p.mu.Unlock()
	return updated, nil
}

// Delete removes a record. The caller must pass confirmed=true; the
// remote call is never issued without it.
func (p *Panel) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}

	if err := p.store.Delete(ctx, p.collection, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", p.collection, id, err)
	}

	p.mu.Lock()
	for i, rec := range p.mirror {
		if rec.ID() == id {
			p.mirror = append(p.mirror[:i], p.mirror[i+1:]...)
			break
		}
	}
	p.mu.Unlock()
	return nil
}
