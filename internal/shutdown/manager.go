// Package shutdown turns an interrupt into cancellation of the batch context.
// Images already inside a stage finish that stage; the analyzer then observes
// the cancelled context and stops.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"grainscope/internal/logger"
)

type Manager struct {
	logger logger.Logger
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	hooks  []func()
	mu     sync.Mutex
}

func NewManager(parent context.Context, log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Manager{logger: log, ctx: ctx, cancel: cancel}
}

// OnShutdown registers fn to run, in reverse registration order, when the
// manager shuts down.
func (m *Manager) OnShutdown(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, fn)
}

// Listen shuts the manager down on SIGINT or SIGTERM. The returned function
// stops listening.
func (m *Manager) Listen() func() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			m.logger.Warning("Shutdown", "signal received, cancelling analysis", map[string]interface{}{
				"signal": sig.String(),
			})
			m.Shutdown()
		case <-m.ctx.Done():
		}
	}()

	return func() { signal.Stop(sigChan) }
}

// Shutdown cancels the context and runs the hooks once.
func (m *Manager) Shutdown() {
	m.once.Do(func() {
		m.cancel()

		m.mu.Lock()
		hooks := m.hooks
		m.mu.Unlock()

		for i := len(hooks) - 1; i >= 0; i-- {
			hooks[i]()
		}
		m.logger.Debug("Shutdown", "shutdown completed", map[string]interface{}{"hooks": len(hooks)})
	})
}

func (m *Manager) Context() context.Context {
	return m.ctx
}
