package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"cv-analyser/internal/logger"
)

// ExitInterrupted is the conventional status for a run ended by SIGINT.
const ExitInterrupted = 130

const defaultComponentTimeout = 10 * time.Second

type Shutdownable interface {
	Shutdown()
}

// Func adapts a plain teardown function to Shutdownable.
type Func func()

func (f Func) Shutdown() { f() }

// Manager cancels the shared context and tears down registered components
// in reverse registration order, once.
type Manager struct {
	components       []Shutdownable
	logger           logger.Logger
	mu               sync.Mutex
	done             chan struct{}
	ctx              context.Context
	cancel           context.CancelFunc
	componentTimeout time.Duration
	exit             func(code int)
}

func NewManager(log logger.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		components:       make([]Shutdownable, 0),
		logger:           log,
		done:             make(chan struct{}),
		ctx:              ctx,
		cancel:           cancel,
		componentTimeout: defaultComponentTimeout,
		exit:             os.Exit,
	}
}

func (m *Manager) Register(component Shutdownable) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.components = append(m.components, component)
}

// Listen tears everything down on SIGINT or SIGTERM and then terminates the
// process with ExitInterrupted.
func (m *Manager) Listen() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			m.logger.Info("ShutdownManager", "shutdown signal received", map[string]interface{}{
				"signal": sig.String(),
			})
			m.Shutdown()
			m.exit(ExitInterrupted)
		case <-m.done:
		}
		signal.Stop(sigChan)
	}()
}

func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.done:
		return
	default:
		close(m.done)
	}

	m.logger.Info("ShutdownManager", "shutdown sequence initiated", map[string]interface{}{
		"components": len(m.components),
	})

	m.cancel()

	for i := len(m.components) - 1; i >= 0; i-- {
		component := m.components[i]

		done := make(chan struct{})
		go func() {
			defer close(done)
			component.Shutdown()
		}()

		select {
		case <-done:
		case <-time.After(m.componentTimeout):
			m.logger.Warning("ShutdownManager", "component shutdown timeout", map[string]interface{}{
				"component_index": i,
			})
		}
	}

	m.logger.Info("ShutdownManager", "shutdown sequence completed", nil)
}

func (m *Manager) Context() context.Context {
	return m.ctx
}
