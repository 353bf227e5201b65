// Package memory implements the user-memory adapter: a fact store backed
// by the persistence layer, an in-process note index with BM25 keyword
// search, and the profile-context renderer the orchestrator injects into
// prompts.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"jarvis/internal/domain"
	"jarvis/internal/store"
)

// FactCategories mirrors the original backend's grouping; "general" is
// the catch-all for anything that doesn't match a known category.
var FactCategories = map[string][]string{
	"personal":     {"name", "nickname", "age", "birthday", "gender", "location", "hometown"},
	"preference":   {"language", "food", "music", "color", "hobby", "style"},
	"work":         {"job", "company", "school", "major", "project", "schedule"},
	"relationship": {"family", "partner", "friend", "pet"},
	"general":      {},
}

var ErrFactNotOwned = errors.New("memory: fact not owned by user")

// FactStore manages what the engine knows about a specific user.
type FactStore struct {
	store store.Store
}

func NewFactStore(s store.Store) *FactStore {
	return &FactStore{store: s}
}

// Learn stores or updates a fact about the user. Upsert key is
// (user_id, category, key); the store layer increments mention_count on
// conflict.
func (f *FactStore) Learn(ctx context.Context, userID, category, key, value string, confidence float64) (domain.Fact, error) {
	if category == "" {
		category = "general"
	}
	fact := domain.Fact{
		ID:         uuid.NewString(),
		UserID:     userID,
		Category:   category,
		Key:        key,
		Value:      value,
		Confidence: confidence,
	}
	if err := f.store.UpsertFact(ctx, fact); err != nil {
		return domain.Fact{}, err
	}
	return fact, nil
}

func (f *FactStore) All(ctx context.Context, userID string) ([]domain.Fact, error) {
	return f.store.GetFacts(ctx, userID)
}

func (f *FactStore) ByCategory(ctx context.Context, userID, category string) ([]domain.Fact, error) {
	facts, err := f.store.GetFacts(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := facts[:0]
	for _, fact := range facts {
		if fact.Category == category {
			out = append(out, fact)
		}
	}
	return out, nil
}

// Forget deletes a fact, requiring the caller to own it. Returns
// ErrFactNotOwned (and leaves the fact untouched) if the fact belongs
// to a different user, and store.ErrNotFound if it doesn't exist.
func (f *FactStore) Forget(ctx context.Context, userID, factID string) error {
	fact, err := f.store.GetFact(ctx, factID)
	if err != nil {
		return err
	}
	if fact.UserID != userID {
		return ErrFactNotOwned
	}
	return f.store.DeleteFact(ctx, userID, factID)
}

// BuildProfileContext renders the "[USER PROFILE]" block grouped by
// category, the long form injected on every turn of a user with stored
// facts.
func BuildProfileContext(facts []domain.Fact) string {
	if len(facts) == 0 {
		return "[USER PROFILE]\n  (New user, no information yet)"
	}
	byCategory := make(map[string][]domain.Fact)
	var order []string
	for _, fact := range facts {
		if _, seen := byCategory[fact.Category]; !seen {
			order = append(order, fact.Category)
		}
		byCategory[fact.Category] = append(byCategory[fact.Category], fact)
	}

	var b strings.Builder
	b.WriteString("[USER PROFILE]\n")
	for _, category := range order {
		items := byCategory[category]
		if len(items) > 10 {
			items = items[:10]
		}
		parts := make([]string, 0, len(items))
		for _, it := range items {
			parts = append(parts, fmt.Sprintf("%s: %s", it.Key, it.Value))
		}
		b.WriteString(fmt.Sprintf("  %s: %s\n", strings.Title(category), strings.Join(parts, ", ")))
	}
	return strings.TrimRight(b.String(), "\n")
}

// BuildMemoryContext renders the shorter "[KNOWN ABOUT USER]" block used
// for per-turn injection: only facts confident enough to state plainly.
func BuildMemoryContext(facts []domain.Fact) string {
	high := make([]domain.Fact, 0, len(facts))
	for _, fact := range facts {
		if fact.Confidence >= 0.6 {
			high = append(high, fact)
		}
	}
	if len(high) == 0 {
		return ""
	}
	sort.SliceStable(high, func(i, j int) bool { return high[i].Confidence > high[j].Confidence })
	if len(high) > 15 {
		high = high[:15]
	}
	var b strings.Builder
	b.WriteString("[KNOWN ABOUT USER]\n")
	for _, fact := range high {
		b.WriteString(fmt.Sprintf("- %s: %s (%s)\n", fact.Key, fact.Value, fact.Category))
	}
	return strings.TrimRight(b.String(), "\n")
}
