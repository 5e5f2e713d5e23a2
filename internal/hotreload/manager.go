package hotreload

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Reloadable is a component that can re-apply its configuration at runtime.
type Reloadable interface {
	Reload(ctx context.Context) error
	Name() string
}

const reloadTimeout = 10 * time.Second

// Manager watches registered paths and, after a debounce window, asks every
// registered component to reload. A failed reload leaves the component on its
// previous configuration.
type Manager struct {
	watcher     *Watcher
	reloadables map[string]Reloadable
	debounce    time.Duration
	logger      *zap.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.RWMutex
	started     bool
}

// NewManager creates a hot reload manager
func NewManager(logger *zap.Logger) (*Manager, error) {
	watcher, err := NewWatcher(logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		watcher:     watcher,
		reloadables: make(map[string]Reloadable),
		debounce:    500 * time.Millisecond,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Watch adds a file to watch
func (m *Manager) Watch(path string) error {
	return m.watcher.Add(path)
}

// Register adds a reloadable component
func (m *Manager) Register(r Reloadable) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := r.Name()
	if _, exists := m.reloadables[name]; exists {
		return fmt.Errorf("reloadable %s already registered", name)
	}

	m.reloadables[name] = r
	return nil
}

// SetDebounce sets the debounce window. Must be called before Start.
func (m *Manager) SetDebounce(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d > 0 {
		m.debounce = d
	}
}

// Start begins watching and coordinating reloads
func (m *Manager) Start() error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return fmt.Errorf("hot reload manager already running")
	}
	m.started = true
	m.mu.Unlock()

	m.watcher.Start()
	m.wg.Add(1)
	go m.run()

	m.logger.Info("Hot reload started")
	return nil
}

// Shutdown stops the manager and waits for the event loop to drain
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = false
	m.mu.Unlock()

	m.cancel()
	m.watcher.Stop()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.logger.Info("Hot reload stopped")
	return nil
}

func (m *Manager) run() {
	defer m.wg.Done()

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)

	m.mu.RLock()
	debounce := m.debounce
	m.mu.RUnlock()

	for {
		select {
		case <-m.ctx.Done():
			return

		case event, ok := <-m.watcher.Events():
			if !ok {
				return
			}
			m.logger.Debug("Change detected",
				zap.String("path", event.Path),
				zap.String("op", event.Op.String()),
			)
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			m.reloadAll()
		}
	}
}

func (m *Manager) reloadAll() {
	m.mu.RLock()
	targets := make([]Reloadable, 0, len(m.reloadables))
	for _, r := range m.reloadables {
		targets = append(targets, r)
	}
	m.mu.RUnlock()

	for _, r := range targets {
		ctx, cancel := context.WithTimeout(m.ctx, reloadTimeout)
		if err := r.Reload(ctx); err != nil {
			m.logger.Error("Reload failed, keeping previous configuration",
				zap.String("component", r.Name()),
				zap.Error(err),
			)
		} else {
			m.logger.Info("Reloaded", zap.String("component", r.Name()))
		}
		cancel()
	}
}
