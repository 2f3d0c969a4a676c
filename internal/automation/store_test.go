package automation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/scenewatch/vision-backend/internal/shared"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(opts ...StoreOption) *Store {
	return NewStore(resolverConfig(), discardLogger(), opts...)
}

func TestStore_SnapshotIsolation(t *testing.T) {
	s := newTestStore()

	snap := s.Snapshot()
	if len(snap.Rules) != 3 {
		t.Fatalf("snapshot has %d rules, want 3", len(snap.Rules))
	}

	// Mutating the store must not change an already captured snapshot.
	if err := s.DeleteRule(context.Background(), "rule_a"); err != nil {
		t.Fatalf("DeleteRule: %v", err)
	}
	if len(snap.Rules) != 3 {
		t.Errorf("snapshot changed after store mutation: %d rules", len(snap.Rules))
	}
	if got := s.RuleCount(); got != 2 {
		t.Errorf("RuleCount() = %d, want 2", got)
	}

	// Mutating the snapshot must not change the store.
	snap.Rules[0].ConditionText = "tampered"
	if s.Snapshot().Rules[0].ConditionText == "tampered" {
		t.Error("snapshot mutation leaked into the store")
	}
}

func TestStore_CreateRule(t *testing.T) {
	s := newTestStore()

	rule, err := s.CreateRule(context.Background(), "  a dog appears  ", "send_alert")
	if err != nil {
		t.Fatalf("CreateRule: %v", err)
	}
	if rule.ConditionText != "a dog appears" {
		t.Errorf("ConditionText = %q, want trimmed input", rule.ConditionText)
	}
	if !strings.HasPrefix(rule.ID, "rule_") {
		t.Errorf("ID = %q, want a rule_ prefix", rule.ID)
	}
	if got := s.RuleCount(); got != 4 {
		t.Errorf("RuleCount() = %d, want 4", got)
	}

	if _, err := s.CreateRule(context.Background(), "anything", "no_such_action"); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("CreateRule with unknown action = %v, want ErrUnknownAction", err)
	}
}

func TestStore_DeleteRule(t *testing.T) {
	s := newTestStore()

	if err := s.DeleteRule(context.Background(), "rule_b"); err != nil {
		t.Fatalf("DeleteRule: %v", err)
	}
	if err := s.DeleteRule(context.Background(), "rule_b"); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("second delete = %v, want shared.ErrNotFound", err)
	}
}

type recordingPersister struct {
	saved   []Rule
	deleted []string
	err     error
}

func (p *recordingPersister) SaveRule(ctx context.Context, r Rule) error {
	if p.err != nil {
		return p.err
	}
	p.saved = append(p.saved, r)
	return nil
}

func (p *recordingPersister) DeleteRule(ctx context.Context, id string) error {
	if p.err != nil {
		return p.err
	}
	p.deleted = append(p.deleted, id)
	return nil
}

func TestStore_WriteThroughPersistence(t *testing.T) {
	p := &recordingPersister{}
	s := newTestStore(WithPersister(p))

	rule, err := s.CreateRule(context.Background(), "a cat appears", "send_alert")
	if err != nil {
		t.Fatalf("CreateRule: %v", err)
	}
	if len(p.saved) != 1 || p.saved[0].ID != rule.ID {
		t.Errorf("persisted rules = %v, want the created rule", p.saved)
	}

	if err := s.DeleteRule(context.Background(), rule.ID); err != nil {
		t.Fatalf("DeleteRule: %v", err)
	}
	if len(p.deleted) != 1 || p.deleted[0] != rule.ID {
		t.Errorf("persisted deletes = %v, want the deleted id", p.deleted)
	}
}

func TestStore_PersistFailureLeavesMemoryUnchanged(t *testing.T) {
	p := &recordingPersister{err: errors.New("db down")}
	s := newTestStore(WithPersister(p))

	if _, err := s.CreateRule(context.Background(), "a cat appears", "send_alert"); err == nil {
		t.Fatal("CreateRule succeeded despite persistence failure")
	}
	if got := s.RuleCount(); got != 3 {
		t.Errorf("RuleCount() = %d, want 3 (no partial write)", got)
	}

	if err := s.DeleteRule(context.Background(), "rule_a"); err == nil {
		t.Fatal("DeleteRule succeeded despite persistence failure")
	}
	if got := s.RuleCount(); got != 3 {
		t.Errorf("RuleCount() = %d, want 3 (no partial delete)", got)
	}
}
