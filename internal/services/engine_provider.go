package services

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/buddemax/kontext/internal/engine"
	"github.com/buddemax/kontext/internal/locale"
)

// EngineProvider hands out the current compiled engine. The engine itself
// is immutable; a locale reload compiles a fresh one and swaps the pointer,
// so in-flight retrievals keep the table they started with.
type EngineProvider struct {
	current atomic.Pointer[engine.Engine]
	stop    func()
}

// NewEngineProvider compiles the initial engine from the built-in German
// table, overlaid with the locale file at path when one is configured.
func NewEngineProvider(localePath string) (*EngineProvider, error) {
	table := locale.German()
	if localePath != "" {
		loaded, err := locale.LoadFile(localePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load locale file: %w", err)
		}
		table = loaded
	}

	eng, err := engine.New(table)
	if err != nil {
		return nil, fmt.Errorf("failed to compile locale table: %w", err)
	}

	p := &EngineProvider{}
	p.current.Store(eng)
	log.Printf("✅ [ENGINE] Compiled locale table %q", table.Name)

	if localePath != "" {
		stop, err := locale.Watch(localePath, p.reload)
		if err != nil {
			return nil, fmt.Errorf("failed to watch locale file: %w", err)
		}
		p.stop = stop
	}

	return p, nil
}

// Engine returns the current engine. Callers hold the returned pointer for
// the duration of one operation and must not cache it across requests.
func (p *EngineProvider) Engine() *engine.Engine {
	return p.current.Load()
}

// Close stops the locale watcher if one is running
func (p *EngineProvider) Close() {
	if p.stop != nil {
		p.stop()
	}
}

func (p *EngineProvider) reload(table *locale.Table) {
	eng, err := engine.New(table)
	if err != nil {
		log.Printf("❌ [ENGINE] Failed to compile reloaded table, keeping previous: %v", err)
		return
	}
	p.current.Store(eng)
	log.Printf("✅ [ENGINE] Hot-swapped locale table %q", table.Name)
}
