package automation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/scenewatch/vision-backend/internal/shared"
)

var ErrUnknownAction = errors.New("unknown action id")

// Persister is the optional write-through collaborator for rule mutations.
// The in-memory store stays authoritative; persistence keeps the rule set
// across restarts when a database is configured.
type Persister interface {
	SaveRule(ctx context.Context, r Rule) error
	DeleteRule(ctx context.Context, id string) error
}

// Store holds the live automation config. Window processing reads a snapshot
// once per window while the config API mutates rules; a reader-writer lock
// plus copy-on-read keeps every snapshot consistent as of invocation time.
type Store struct {
	logger  *slog.Logger
	persist Persister

	mu      sync.RWMutex
	actions []Action
	rules   []Rule
}

type StoreOption func(*Store)

func WithPersister(p Persister) StoreOption {
	return func(s *Store) { s.persist = p }
}

func NewStore(cfg Config, logger *slog.Logger, opts ...StoreOption) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		logger:  logger.With("component", "automation-store"),
		actions: append([]Action(nil), cfg.Actions...),
		rules:   append([]Rule(nil), cfg.Rules...),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a deep copy of the current actions and rules.
func (s *Store) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Config{
		Actions: append([]Action(nil), s.actions...),
		Rules:   append([]Rule(nil), s.rules...),
	}
}

// CreateRule validates the payload against the current action set, assigns a
// fresh rule id and appends the rule atomically.
func (s *Store) CreateRule(ctx context.Context, conditionText, actionID string) (Rule, error) {
	conditionText = strings.TrimSpace(conditionText)
	actionID = strings.TrimSpace(actionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	known := false
	for _, a := range s.actions {
		if a.ID == actionID {
			known = true
			break
		}
	}
	if !known {
		return Rule{}, ErrUnknownAction
	}

	rule := Rule{
		ID:            shared.NewID("rule_"),
		ConditionText: conditionText,
		ActionID:      actionID,
	}

	if s.persist != nil {
		if err := s.persist.SaveRule(ctx, rule); err != nil {
			return Rule{}, err
		}
	}

	s.rules = append(s.rules, rule)
	s.logger.Info("rule created", "rule_id", rule.ID, "action_id", rule.ActionID)
	return rule, nil
}

// DeleteRule removes a rule by id. Deleting a rule whose id was already
// captured in an in-flight decision is safe: resolution skips unknown ids.
func (s *Store) DeleteRule(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, r := range s.rules {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return shared.ErrNotFound
	}

	if s.persist != nil {
		if err := s.persist.DeleteRule(ctx, id); err != nil {
			return err
		}
	}

	s.rules = append(s.rules[:idx], s.rules[idx+1:]...)
	s.logger.Info("rule deleted", "rule_id", id)
	return nil
}

// RuleCount reports how many rules are currently configured.
func (s *Store) RuleCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}
