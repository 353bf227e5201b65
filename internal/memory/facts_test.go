package memory

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"jarvis/internal/domain"
	"jarvis/internal/store"
)

// fakeStore is a minimal in-memory store.Store used to exercise
// FactStore without a database.
type fakeStore struct {
	facts map[string]domain.Fact
}

func newFakeStore() *fakeStore { return &fakeStore{facts: map[string]domain.Fact{}} }

func (f *fakeStore) CreateConversation(context.Context, domain.Conversation) error { return nil }
func (f *fakeStore) GetConversation(context.Context, string) (domain.Conversation, error) {
	return domain.Conversation{}, store.ErrNotFound
}
func (f *fakeStore) UpdateConversation(context.Context, domain.Conversation) error { return nil }
func (f *fakeStore) ListConversations(context.Context, string, int) ([]domain.Conversation, error) {
	return nil, nil
}
func (f *fakeStore) CreateMessage(context.Context, domain.Message) error { return nil }
func (f *fakeStore) GetMessages(context.Context, string, int) ([]domain.Message, error) {
	return nil, nil
}
func (f *fakeStore) GetRecentMessages(context.Context, string, int) ([]domain.Message, error) {
	return nil, nil
}
func (f *fakeStore) SaveEVCState(context.Context, string, json.RawMessage, time.Time) error {
	return nil
}
func (f *fakeStore) GetEVCState(context.Context, string) (json.RawMessage, time.Time, error) {
	return nil, time.Time{}, store.ErrNotFound
}

func (f *fakeStore) UpsertFact(_ context.Context, fact domain.Fact) error {
	for _, existing := range f.facts {
		if existing.UserID == fact.UserID && existing.Category == fact.Category && existing.Key == fact.Key {
			existing.Value = fact.Value
			existing.Confidence = fact.Confidence
			existing.MentionCount++
			f.facts[existing.ID] = existing
			return nil
		}
	}
	f.facts[fact.ID] = fact
	return nil
}
func (f *fakeStore) GetFacts(_ context.Context, userID string) ([]domain.Fact, error) {
	var out []domain.Fact
	for _, fact := range f.facts {
		if fact.UserID == userID {
			out = append(out, fact)
		}
	}
	return out, nil
}
func (f *fakeStore) GetFact(_ context.Context, id string) (domain.Fact, error) {
	fact, ok := f.facts[id]
	if !ok {
		return domain.Fact{}, store.ErrNotFound
	}
	return fact, nil
}
func (f *fakeStore) DeleteFact(_ context.Context, userID, id string) error {
	fact, ok := f.facts[id]
	if !ok {
		return store.ErrNotFound
	}
	if fact.UserID != userID {
		return store.ErrNotFound
	}
	delete(f.facts, id)
	return nil
}

func (f *fakeStore) CreateUser(context.Context, domain.User) error { return nil }
func (f *fakeStore) GetUserByUsername(context.Context, string) (domain.User, error) {
	return domain.User{}, store.ErrNotFound
}
func (f *fakeStore) GetUserByID(context.Context, string) (domain.User, error) {
	return domain.User{}, store.ErrNotFound
}
func (f *fakeStore) GetUserByGoogleSub(context.Context, string) (domain.User, error) {
	return domain.User{}, store.ErrNotFound
}
func (f *fakeStore) UpdateUser(context.Context, domain.User) error { return nil }
func (f *fakeStore) Close() error                                  { return nil }

func TestFactStoreLearnAndAll(t *testing.T) {
	fs := NewFactStore(newFakeStore())
	ctx := context.Background()
	if _, err := fs.Learn(ctx, "u1", "personal", "name", "Ada", 0.9); err != nil {
		t.Fatalf("Learn: %v", err)
	}
	facts, err := fs.All(ctx, "u1")
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(facts) != 1 || facts[0].Value != "Ada" {
		t.Fatalf("unexpected facts: %+v", facts)
	}
}

func TestFactStoreForgetRequiresOwnership(t *testing.T) {
	fake := newFakeStore()
	fs := NewFactStore(fake)
	ctx := context.Background()
	fact, err := fs.Learn(ctx, "u1", "personal", "name", "Ada", 0.9)
	if err != nil {
		t.Fatalf("Learn: %v", err)
	}
	if err := fs.Forget(ctx, "someone-else", fact.ID); err != ErrFactNotOwned {
		t.Fatalf("expected ErrFactNotOwned, got %v", err)
	}
	if err := fs.Forget(ctx, "u1", fact.ID); err != nil {
		t.Fatalf("Forget: %v", err)
	}
}

func TestBuildProfileContextNewUser(t *testing.T) {
	got := BuildProfileContext(nil)
	if got == "" {
		t.Fatalf("expected non-empty placeholder")
	}
}

func TestBuildMemoryContextFiltersLowConfidence(t *testing.T) {
	facts := []domain.Fact{
		{Key: "food", Value: "ramen", Category: "preference", Confidence: 0.9},
		{Key: "guess", Value: "maybe", Category: "general", Confidence: 0.2},
	}
	got := BuildMemoryContext(facts)
	if got == "" {
		t.Fatalf("expected non-empty context")
	}
	if !strings.Contains(got, "ramen") {
		t.Fatalf("expected high-confidence fact in context: %q", got)
	}
	if strings.Contains(got, "maybe") {
		t.Fatalf("low-confidence fact leaked into context: %q", got)
	}
}
