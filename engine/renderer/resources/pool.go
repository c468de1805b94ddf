package resources

import (
	"fmt"
	"sync"

	"github.com/iftodebogdan/gitechdemo/engine/core"
)

// pool is a slot array of resources. Released slots stay nil so that
// handles already handed out keep pointing at nothing instead of at a
// recycled resource.
type pool[T any] struct {
	mutex sync.RWMutex
	name  string
	items []*T
	live  int
}

func newPool[T any](name string) *pool[T] {
	return &pool[T]{name: name}
}

func (p *pool[T]) add(item *T) Handle[T] {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.items = append(p.items, item)
	p.live++
	return Handle[T]{index: uint32(len(p.items) - 1), valid: true}
}

func (p *pool[T]) get(h Handle[T]) (*T, error) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	if !h.valid || int(h.index) >= len(p.items) || p.items[h.index] == nil {
		return nil, fmt.Errorf("%s %s: %w", p.name, h, core.ErrInvalidHandle)
	}
	return p.items[h.index], nil
}

// remove detaches the resource from the pool and hands it back so the caller
// can release whatever it owns.
func (p *pool[T]) remove(h Handle[T]) (*T, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if !h.valid || int(h.index) >= len(p.items) || p.items[h.index] == nil {
		return nil, fmt.Errorf("%s %s: %w", p.name, h, core.ErrInvalidHandle)
	}
	item := p.items[h.index]
	p.items[h.index] = nil
	p.live--
	return item, nil
}

func (p *pool[T]) count() int {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.live
}

// handles returns a snapshot of the live handles, in creation order.
func (p *pool[T]) handles() []Handle[T] {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	out := make([]Handle[T], 0, p.live)
	for i, item := range p.items {
		if item != nil {
			out = append(out, Handle[T]{index: uint32(i), valid: true})
		}
	}
	return out
}

// find returns the first live resource accepted by match.
func (p *pool[T]) find(match func(*T) bool) (Handle[T], bool) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	for i, item := range p.items {
		if item != nil && match(item) {
			return Handle[T]{index: uint32(i), valid: true}, true
		}
	}
	return None[T](), false
}
