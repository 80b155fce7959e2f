// Package authz executes permission batches against a database and turns the
// outcome into allow/deny decisions, failing closed on any error.
package authz

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/asaidimu/go-events"
	"github.com/asaidimu/go-sieve/core"
	"github.com/asaidimu/go-sieve/core/permission"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Decisions maps every requested check key to allow (true) or deny (false).
type Decisions map[string]bool

// Allowed reports the decision for key; unknown keys are denied.
func (d Decisions) Allowed(key string) bool {
	return d[key]
}

// Service runs permission batches through a caller-supplied executor.
type Service struct {
	compiler      *permission.Compiler
	bus           *events.TypedEventBus[Event]
	logger        *zap.Logger
	subscriptions map[string]*SubscriptionInfo
	subMu         sync.RWMutex
}

// NewService creates a Service around a permission compiler.
func NewService(compiler *permission.Compiler, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if compiler == nil {
		var err error
		compiler, err = permission.NewCompiler(logger, nil)
		if err != nil {
			return nil, err
		}
	}
	bus, err := events.NewTypedEventBus[Event](events.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}
	return &Service{
		compiler:      compiler,
		bus:           bus,
		logger:        logger,
		subscriptions: make(map[string]*SubscriptionInfo),
	}, nil
}

func (s *Service) emit(event Event) {
	if s.bus != nil {
		s.bus.Emit(string(event.Type), event)
	}
}

func checkKeys(checks []permission.Check) []string {
	keys := make([]string, 0, len(checks))
	for _, c := range checks {
		if c != nil {
			keys = append(keys, c.CheckKey())
		}
	}
	return keys
}

// Execute compiles checks into one query, runs it once through exec, and
// returns the typed results. Keys the database did not answer are absent.
// Any failure is returned as a PERMISSION_CHECK_FAILURE wrapping the cause.
func (s *Service) Execute(ctx context.Context, exec core.Executor, checks []permission.Check) (permission.Results, error) {
	if len(checks) == 0 {
		return permission.Results{}, nil
	}

	startTime := time.Now()
	batchID := uuid.New().String()
	keys := checkKeys(checks)
	s.emit(createEvent(CheckStart, batchID, keys, nil, nil, time.Time{}))

	results, err := s.run(ctx, exec, checks)
	if err != nil {
		failure := core.PermissionCheckFailure(err)
		msg := failure.Error()
		s.emit(createEvent(CheckFailed, batchID, keys, nil, &msg, startTime))
		return nil, failure
	}

	s.emit(createEvent(CheckSuccess, batchID, keys, results, nil, startTime))
	return results, nil
}

func (s *Service) run(ctx context.Context, exec core.Executor, checks []permission.Check) (permission.Results, error) {
	if exec == nil {
		return nil, fmt.Errorf("no executor supplied")
	}
	plan, err := s.compiler.BuildQuery(checks)
	if err != nil {
		return nil, err
	}
	rows, err := exec.Execute(ctx, plan.Text, plan.Params...)
	if err != nil {
		return nil, err
	}
	resultRows, err := permission.RowsToResults(rows)
	if err != nil {
		return nil, err
	}
	return permission.ParseResults(resultRows)
}

// Authorize runs checks and returns a decision for every requested key.
//
// This is the fail-closed call site: a compile or execution failure denies
// every key, and a key missing from the results or holding a non-boolean
// value is denied. The projector leaves such keys unknown; defaulting them
// to deny is policy of this caller. Errors are logged and emitted as
// CheckFailed events, never returned.
func (s *Service) Authorize(ctx context.Context, exec core.Executor, checks []permission.Check) Decisions {
	keys := checkKeys(checks)
	decisions := make(Decisions, len(keys))
	for _, key := range keys {
		decisions[key] = false
	}

	results, err := s.Execute(ctx, exec, checks)
	if err != nil {
		s.logger.Warn("Permission batch failed, denying all checks",
			zap.Int("checks", len(keys)),
			zap.Error(err))
		return decisions
	}

	for _, key := range keys {
		if allowed, ok := results.Bool(key); ok {
			decisions[key] = allowed
		} else {
			s.logger.Debug("Permission check missing from results, denying", zap.String("key", key))
		}
	}
	return decisions
}

// Subscribe registers a callback for an event type and returns its id.
func (s *Service) Subscribe(options SubscriptionOptions) (string, error) {
	if options.Callback == nil {
		return "", fmt.Errorf("subscription to %q has no callback", options.Event)
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()

	callback := options.Callback
	unsubscribe := s.bus.Subscribe(string(options.Event), func(ctx context.Context, event Event) error {
		return callback(ctx, event)
	})
	id := uuid.New().String()

	s.subscriptions[id] = &SubscriptionInfo{
		Id:          &id,
		Event:       options.Event,
		Label:       options.Label,
		Description: options.Description,
		Unsubscribe: unsubscribe,
	}
	return id, nil
}

// Unsubscribe removes a subscription by id.
func (s *Service) Unsubscribe(id string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if info, ok := s.subscriptions[id]; ok {
		info.Unsubscribe()
		delete(s.subscriptions, id)
	}
}

// Subscriptions lists the active subscriptions.
func (s *Service) Subscriptions() []SubscriptionInfo {
	s.subMu.RLock()
	defer s.subMu.RUnlock()

	subs := make([]SubscriptionInfo, 0, len(s.subscriptions))
	for _, sub := range s.subscriptions {
		subs = append(subs, *sub)
	}
	return subs
}
