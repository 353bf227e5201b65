package orchestrator

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"jarvis/internal/domain"
	"jarvis/internal/emotion"
	"jarvis/internal/memory"
	"jarvis/internal/session"
	"jarvis/internal/skillmatch"
	"jarvis/internal/store"
)

// fakeStore is a minimal in-memory store.Store for exercising HandleChat
// without a database.
type fakeStore struct {
	convs    map[string]domain.Conversation
	messages map[string][]domain.Message
	blobs    map[string]json.RawMessage
	facts    map[string]domain.Fact
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		convs:    map[string]domain.Conversation{},
		messages: map[string][]domain.Message{},
		blobs:    map[string]json.RawMessage{},
		facts:    map[string]domain.Fact{},
	}
}

func (f *fakeStore) CreateConversation(_ context.Context, conv domain.Conversation) error {
	f.convs[conv.ID] = conv
	return nil
}
func (f *fakeStore) GetConversation(_ context.Context, id string) (domain.Conversation, error) {
	c, ok := f.convs[id]
	if !ok {
		return domain.Conversation{}, store.ErrNotFound
	}
	return c, nil
}
func (f *fakeStore) UpdateConversation(_ context.Context, conv domain.Conversation) error {
	f.convs[conv.ID] = conv
	return nil
}
func (f *fakeStore) ListConversations(_ context.Context, userID string, limit int) ([]domain.Conversation, error) {
	var out []domain.Conversation
	for _, c := range f.convs {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}
func (f *fakeStore) CreateMessage(_ context.Context, msg domain.Message) error {
	f.messages[msg.ConversationID] = append(f.messages[msg.ConversationID], msg)
	return nil
}
func (f *fakeStore) GetMessages(_ context.Context, convID string, limit int) ([]domain.Message, error) {
	msgs := f.messages[convID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}
func (f *fakeStore) GetRecentMessages(context.Context, string, int) ([]domain.Message, error) {
	return nil, nil
}
func (f *fakeStore) SaveEVCState(_ context.Context, convID string, blob json.RawMessage, _ time.Time) error {
	f.blobs[convID] = blob
	return nil
}
func (f *fakeStore) GetEVCState(_ context.Context, convID string) (json.RawMessage, time.Time, error) {
	b, ok := f.blobs[convID]
	if !ok {
		return nil, time.Time{}, store.ErrNotFound
	}
	return b, time.Now(), nil
}
func (f *fakeStore) UpsertFact(_ context.Context, fact domain.Fact) error {
	f.facts[fact.ID] = fact
	return nil
}
func (f *fakeStore) GetFacts(_ context.Context, userID string) ([]domain.Fact, error) {
	var out []domain.Fact
	for _, ft := range f.facts {
		if ft.UserID == userID {
			out = append(out, ft)
		}
	}
	return out, nil
}
func (f *fakeStore) GetFact(_ context.Context, id string) (domain.Fact, error) {
	ft, ok := f.facts[id]
	if !ok {
		return domain.Fact{}, store.ErrNotFound
	}
	return ft, nil
}
func (f *fakeStore) DeleteFact(_ context.Context, userID, id string) error {
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

// fakeLLM returns a fixed chat reply, or errors when forced. When
// factJSON is set, calls whose system prompt is the fact extractor's
// get that response instead, so fact extraction can be exercised
// independently of the chat reply.
type fakeLLM struct {
	reply    string
	factJSON string
	failing  bool
}

func (l *fakeLLM) Complete(_ context.Context, req domain.LLMRequest) (domain.LLMResponse, error) {
	if l.failing {
		return domain.LLMResponse{}, context.DeadlineExceeded
	}
	if req.System == memory.FactExtractorPrompt {
		if l.factJSON == "" {
			return domain.LLMResponse{Content: `{"facts": []}`}, nil
		}
		return domain.LLMResponse{Content: l.factJSON}, nil
	}
	return domain.LLMResponse{Content: l.reply}, nil
}

func newTestService(fs *fakeStore, llmResp string) *Service {
	return &Service{
		Sessions:    session.NewManager(nil, time.Hour),
		Store:       fs,
		LLM:         &fakeLLM{reply: llmResp},
		LLMModel:    "test-model",
		FactModel:   "test-fact-model",
		Analyzer:    emotion.NewClient("", time.Second),
		Facts:       memory.NewFactStore(fs),
		Notes:       memory.NewNoteStore(),
		Skills:      skillmatch.Default(),
		TurnSeconds: 300,
	}
}

func TestHandleChatGuestProducesReply(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs, "Hello there!")
	guest := &domain.User{ID: "g1", Username: "guest", IsGuest: true}
	resp, err := svc.HandleChat(context.Background(), guest, domain.ChatHTTPRequest{
		SessionID: "guest-1",
		Message:   "I'm so happy today!",
	})
	if err != nil {
		t.Fatalf("HandleChat: %v", err)
	}
	if resp.Response != "Hello there!" {
		t.Fatalf("unexpected response: %q", resp.Response)
	}
	if resp.BotState.Turn != 1 {
		t.Fatalf("expected first turn, got %d", resp.BotState.Turn)
	}
	if len(fs.messages) != 0 {
		t.Fatalf("guest turns must not be persisted")
	}
}

func TestHandleChatPersistsForAuthenticatedUser(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs, "Got it.")
	user := &domain.User{ID: "u1", Username: "ada", IsGuest: false}
	resp, err := svc.HandleChat(context.Background(), user, domain.ChatHTTPRequest{
		SessionID: "conv_abc",
		Message:   "Remember that I like tea.",
	})
	if err != nil {
		t.Fatalf("HandleChat: %v", err)
	}
	if resp.Response != "Got it." {
		t.Fatalf("unexpected response: %q", resp.Response)
	}
	if _, ok := fs.convs["conv_abc"]; !ok {
		t.Fatalf("expected conversation to be created")
	}
	if len(fs.messages["conv_abc"]) != 2 {
		t.Fatalf("expected user+assistant messages persisted, got %d", len(fs.messages["conv_abc"]))
	}
	if _, ok := fs.blobs["conv_abc"]; !ok {
		t.Fatalf("expected EVC state to be saved")
	}
}

func TestHandleChatFallsBackOnLLMFailure(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs, "")
	svc.LLM = &fakeLLM{failing: true}
	resp, err := svc.HandleChat(context.Background(), nil, domain.ChatHTTPRequest{
		SessionID: "guest-2",
		Message:   "hi",
	})
	if err != nil {
		t.Fatalf("HandleChat: %v", err)
	}
	if resp.Response != genericReply {
		t.Fatalf("expected generic fallback reply, got %q", resp.Response)
	}
}

func TestHandleChatLearnsExtractedFacts(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs, "Nice to meet you, Ada.")
	svc.LLM = &fakeLLM{
		reply:    "Nice to meet you, Ada.",
		factJSON: `{"facts": [{"key": "name", "value": "Ada", "category": "personal", "confidence": 0.9}, {"key": "mood", "value": "happy", "category": "general", "confidence": 0.2}]}`,
	}
	user := &domain.User{ID: "u2", Username: "ada", IsGuest: false}
	resp, err := svc.HandleChat(context.Background(), user, domain.ChatHTTPRequest{
		SessionID: "conv_facts",
		Message:   "Hi, my name is Ada.",
	})
	if err != nil {
		t.Fatalf("HandleChat: %v", err)
	}
	if len(resp.LearnedFacts) != 1 || resp.LearnedFacts[0].Key != "name" {
		t.Fatalf("expected only the high-confidence fact to be learned, got %+v", resp.LearnedFacts)
	}
	facts, err := fs.GetFacts(context.Background(), "u2")
	if err != nil {
		t.Fatalf("GetFacts: %v", err)
	}
	if len(facts) != 1 || facts[0].Value != "Ada" {
		t.Fatalf("expected the learned fact to be persisted, got %+v", facts)
	}
}

func TestHandleChatSkipsFactExtractionForGuests(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs, "Sure thing.")
	svc.LLM = &fakeLLM{
		reply:    "Sure thing.",
		factJSON: `{"facts": [{"key": "name", "value": "Ada", "category": "personal", "confidence": 0.9}]}`,
	}
	guest := &domain.User{ID: "g2", Username: "guest", IsGuest: true}
	resp, err := svc.HandleChat(context.Background(), guest, domain.ChatHTTPRequest{
		SessionID: "guest-4",
		Message:   "Hi, my name is Ada.",
	})
	if err != nil {
		t.Fatalf("HandleChat: %v", err)
	}
	if len(resp.LearnedFacts) != 0 {
		t.Fatalf("guests must not trigger fact persistence, got %+v", resp.LearnedFacts)
	}
}

func TestHandleChatMatchesSkill(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs, "It's sunny.")
	resp, err := svc.HandleChat(context.Background(), nil, domain.ChatHTTPRequest{
		SessionID: "guest-3",
		Message:   "what's the weather like",
	})
	if err != nil {
		t.Fatalf("HandleChat: %v", err)
	}
	if resp.MatchedSkill == nil || *resp.MatchedSkill != "weather" {
		t.Fatalf("expected weather skill match, got %v", resp.MatchedSkill)
	}
}
