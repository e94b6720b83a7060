package main

import (
	"fmt"
	"sync"

	"github.com/soypat/levelset/bridge"
	"github.com/soypat/levelset/internal/logger"
	"go.uber.org/zap"
)

// handleTable maps opaque integer handles given to C callers to grids.
// Zero is never a valid handle.
type handleTable struct {
	mu    sync.Mutex
	next  uintptr
	grids map[uintptr]*bridge.Grid
}

func newHandleTable() *handleTable {
	return &handleTable{grids: make(map[uintptr]*bridge.Grid)}
}

func (t *handleTable) add(g *bridge.Grid) uintptr {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.grids[t.next] = g
	return t.next
}

// get returns the grid for h or nil if h is unknown.
func (t *handleTable) get(h uintptr) *bridge.Grid {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.grids[h]
}

// remove destroys the grid behind h and reports whether h was live.
func (t *handleTable) remove(h uintptr) bool {
	t.mu.Lock()
	g, ok := t.grids[h]
	delete(t.grids, h)
	t.mu.Unlock()
	g.Destroy()
	return ok
}

func (t *handleTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.grids)
}

// catch must be deferred directly. It turns a panic into a logged failure
// and calls fail so the entry point reports it to the caller.
func catch(name string, fail func()) {
	if r := recover(); r != nil {
		logger.Error("panic in entry point", zap.String("func", name), zap.String("panic", fmt.Sprint(r)))
		fail()
	}
}

func logFailure(name string, err error) {
	logger.Debug("entry point failed", zap.String("func", name), zap.Error(err))
}
