package wait

import (
	"log"
	"sync"
)

const (
	defaultListElementLength = 64
)

// Wait pairs a broker response with the request that carried the same
// correlation id. Register before writing the request, Trigger when the
// response frame arrives.
type Wait interface {
	// Register returns a chan that waits on the given correlation id.
	// The chan will be triggered when Trigger is called with
	// the same id. Registering a duplicate id is a programming error.
	Register(id uint32) <-chan interface{}
	// Trigger triggers the waiting chan with the given id.
	Trigger(id uint32, x interface{})
	// Deregister drops the waiter without triggering it. Used on
	// request timeout or cancellation.
	Deregister(id uint32)
	IsRegistered(id uint32) bool
}

type listElement struct {
	l sync.RWMutex
	m map[uint32]chan interface{}
}

type list struct {
	e []listElement
}

// New creates a Wait.
func New() Wait {
	res := list{
		e: make([]listElement, defaultListElementLength),
	}
	for i := 0; i < len(res.e); i++ {
		res.e[i].m = make(map[uint32]chan interface{})
	}
	return &res
}

func (w *list) Register(id uint32) <-chan interface{} {
	idx := id % defaultListElementLength
	newCh := make(chan interface{}, 1)
	w.e[idx].l.Lock()
	defer w.e[idx].l.Unlock()
	if _, ok := w.e[idx].m[id]; !ok {
		w.e[idx].m[id] = newCh
	} else {
		log.Panicf("dup id %x", id)
	}
	return newCh
}

func (w *list) Trigger(id uint32, x interface{}) {
	idx := id % defaultListElementLength
	w.e[idx].l.Lock()
	ch := w.e[idx].m[id]
	delete(w.e[idx].m, id)
	w.e[idx].l.Unlock()
	if ch != nil {
		ch <- x
		close(ch)
	}
}

func (w *list) Deregister(id uint32) {
	idx := id % defaultListElementLength
	w.e[idx].l.Lock()
	delete(w.e[idx].m, id)
	w.e[idx].l.Unlock()
}

func (w *list) IsRegistered(id uint32) bool {
	idx := id % defaultListElementLength
	w.e[idx].l.RLock()
	defer w.e[idx].l.RUnlock()
	_, ok := w.e[idx].m[id]
	return ok
}
