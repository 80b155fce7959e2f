package query

import (
	"sync"

	"go.uber.org/zap"
)

// Registry resolves a condition to the handler that renders it. Resolution
// walks three tiers in order: custom handlers in registration order, the
// built-in specialised handlers (JSON, array, date, between), and finally the
// per-type default handler. The first handler whose CanHandle reports true
// wins; an empty Process result jumps straight to the default handler.
type Registry struct {
	custom   []Handler
	builtin  []Handler
	fallback *DefaultHandler
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewRegistry creates a registry holding only the built-in handlers.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		builtin: []Handler{
			&JSONHandler{},
			&ArrayHandler{},
			&DateHandler{},
			&BetweenHandler{},
		},
		fallback: &DefaultHandler{},
		logger:   logger,
	}
}

// Register appends a custom handler. Custom handlers are consulted before
// every built-in handler.
func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.custom = append(r.custom, h)
	r.logger.Info("Registered condition handler", zap.String("handler", h.Name()))
}

// Handlers returns every handler in resolution order, default last.
func (r *Registry) Handlers() []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Handler, 0, len(r.custom)+len(r.builtin)+1)
	out = append(out, r.custom...)
	out = append(out, r.builtin...)
	return append(out, r.fallback)
}

// Resolve renders cond with the first matching handler.
func (r *Registry) Resolve(cond FilterCondition, ctx *Context) (string, error) {
	r.mu.RLock()
	chain := make([]Handler, 0, len(r.custom)+len(r.builtin))
	chain = append(chain, r.custom...)
	chain = append(chain, r.builtin...)
	r.mu.RUnlock()

	for _, h := range chain {
		if !h.CanHandle(cond, ctx) {
			continue
		}
		fragment, err := h.Process(cond, ctx)
		if err != nil {
			return "", err
		}
		if fragment != "" {
			return fragment, nil
		}
		r.logger.Debug("Handler deferred to default",
			zap.String("handler", h.Name()),
			zap.String("column", cond.Column),
			zap.String("operator", string(cond.Operator)))
		break
	}
	return r.fallback.Process(cond, ctx)
}
