// Package orchestrator implements the Turn Orchestrator (C6): the
// per-turn procedure that resolves a session, scales elapsed time,
// calls the analyzer, steps the tracker and main engine, assembles a
// prompt (C8), calls the LLM, and persists the result.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"jarvis/internal/domain"
	"jarvis/internal/emotion"
	"jarvis/internal/llm"
	"jarvis/internal/memory"
	"jarvis/internal/session"
	"jarvis/internal/skillmatch"
	"jarvis/internal/store"
)

const (
	minDeltaT          = 0.05
	maxDeltaT          = 12.0
	genericReply       = "Sorry, I'm having trouble forming a reply right now. Could you say that again?"
	noteSearchTopK     = 3
	previewRunes       = 60
	analyzerTimeout    = 10 * time.Second
	llmTimeout         = 10 * time.Second
	factExtractTimeout = 5 * time.Second
	factConfidence     = 0.5
)

// Service wires the session manager, analyzer, LLM, persistence, and
// user-memory collaborators into the single HandleChat entrypoint.
type Service struct {
	Sessions    *session.Manager
	Store       store.Store
	LLM         llm.Provider
	LLMModel    string
	FactModel   string
	Analyzer    *emotion.Client
	Facts       *memory.FactStore
	Notes       *memory.NoteStore
	Skills      *skillmatch.Matcher
	TurnSeconds float64
	Logger      *slog.Logger
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func previewOf(message string) string {
	runes := []rune(strings.TrimSpace(message))
	if len(runes) > previewRunes {
		return string(runes[:previewRunes])
	}
	return string(runes)
}

// HandleChat runs one full turn for an optionally-authenticated user.
// user is nil for unauthenticated callers; guest accounts arrive with
// IsGuest set. Neither is hydrated from or saved to the store.
func (s *Service) HandleChat(ctx context.Context, user *domain.User, req domain.ChatHTTPRequest) (domain.ChatHTTPResponse, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	message := strings.TrimSpace(req.Message)

	state := s.Sessions.GetOrCreate(sessionID)
	state.Turn.Lock()
	defer state.Turn.Unlock()

	isRestoredConversation := false
	if !state.Hydrated {
		state.Hydrated = true
		if strings.HasPrefix(sessionID, "conv_") && user != nil && !user.IsGuest && s.Store != nil {
			if blob, ts, err := s.Store.GetEVCState(ctx, sessionID); err == nil {
				var saved store.EVCBlob
				if jsonErr := json.Unmarshal(blob, &saved); jsonErr == nil {
					state.Engine.LoadState(saved.EVCState)
					if saved.UserEmotionTracker != nil {
						state.Tracker.LoadState(*saved.UserEmotionTracker)
					}
					state.LastTurnTS = ts
					isRestoredConversation = true
				}
			}
		}
	}

	now := time.Now()
	var deltaT float64
	if state.LastTurnTS.IsZero() {
		deltaT = 1.0
	} else {
		deltaT = clampFloat(now.Sub(state.LastTurnTS).Seconds()/s.TurnSeconds, minDeltaT, maxDeltaT)
	}
	state.LastTurnTS = now

	if isRestoredConversation && s.Store != nil {
		if msgs, err := s.Store.GetMessages(ctx, sessionID, historyLimit); err == nil {
			state.History = toChatMessages(msgs)
		}
	}

	var profile, memoryContext string
	var facts []domain.Fact
	memoryUsed := false
	if user != nil && !user.IsGuest && s.Facts != nil {
		var err error
		facts, err = s.Facts.All(ctx, user.ID)
		if err != nil {
			s.logWarn("facts lookup failed", "error", err)
		} else if len(facts) > 0 {
			profile = memory.BuildProfileContext(facts)
			memoryContext = memory.BuildMemoryContext(facts)
			memoryUsed = true
		}
	}
	if s.Notes != nil {
		if results := s.Notes.Search(message, noteSearchTopK); len(results) > 0 {
			var b strings.Builder
			b.WriteString("[RELEVANT NOTES]\n")
			for _, r := range results {
				fmt.Fprintf(&b, "- %s: %s\n", r.Path, r.Snippet)
			}
			if memoryContext != "" {
				memoryContext = memoryContext + "\n---\n" + b.String()
			} else {
				memoryContext = b.String()
			}
			memoryUsed = true
		}
	}
	var matchedSkill *string
	var skillContext string
	if s.Skills != nil {
		if skill, ok := s.Skills.Match(message); ok {
			name := skill.Name
			matchedSkill = &name
			skillContext = skill.Context
		}
	}

	analyzeCtx, cancelAnalyze := context.WithTimeout(ctx, analyzerTimeout)
	sig := emotion.AnalyzeOrFallback(analyzeCtx, s.Analyzer, message)
	cancelAnalyze()

	preview := previewOf(message)
	s.Sessions.Touch(sessionID)
	_ = state.Tracker.RecordTurn(sig.S, sig.D, sig.C, deltaT, sig.UserEmotion, preview)
	turn := state.Engine.ProcessTurn(sig.S, sig.D, sig.C, deltaT, message)

	prompt := BuildSystemPrompt(PromptInputs{
		TurnResult:     turn,
		UserEmotion:    sig.UserEmotion,
		TrackerSummary: state.Tracker.BuildUserEmotionSummary(),
		Profile:        profile,
		MemoryContext:  memoryContext,
		SkillContext:   skillContext,
	})
	messages := BuildMessages(state.History, message)

	llmCtx, cancelLLM := context.WithTimeout(ctx, llmTimeout)
	resp, err := s.LLM.Complete(llmCtx, domain.LLMRequest{
		Model:       s.LLMModel,
		System:      prompt,
		Messages:    messages,
		MaxTokens:   800,
		Temperature: 0.7,
	})
	cancelLLM()

	reply := genericReply
	if err != nil {
		s.logWarn("llm completion failed, using generic reply", "error", err)
	} else if strings.TrimSpace(resp.Content) != "" {
		reply = strings.TrimSpace(resp.Content)
	}

	state.History = append(state.History,
		domain.ChatMessage{Role: "user", Content: message},
		domain.ChatMessage{Role: "assistant", Content: reply},
	)
	if len(state.History) > historyLimit {
		state.History = state.History[len(state.History)-historyLimit:]
	}

	s.persistTurn(ctx, user, sessionID, message, reply, turn, state)
	learnedFacts := s.extractAndLearnFacts(ctx, user, message)

	mood := domain.UserMood{
		Current: state.Tracker.GetCurrentMood(),
		Trend:   state.Tracker.Trend(),
	}
	stats := state.Tracker.GetEmotionStats()
	mood.Stats = domain.UserMoodStats{AvgS: stats.AvgS, AvgD: stats.AvgD, AvgC: stats.AvgC, Turns: stats.Turns}

	return domain.ChatHTTPResponse{
		Response:     reply,
		UserEmotion:  sig.UserEmotion,
		Signals:      domain.ChatSignals{S: sig.S, D: sig.D, C: sig.C},
		DeltaT:       deltaT,
		BotState:     turn,
		MatchedSkill: matchedSkill,
		MemoryUsed:   memoryUsed,
		LearnedFacts: learnedFacts,
		UserMood:     mood,
	}, nil
}

// persistTurn writes the turn's messages and EVC snapshot. Every step
// here is non-fatal: persistence failures are logged, not returned,
// since the turn has already produced a reply.
func (s *Service) persistTurn(ctx context.Context, user *domain.User, sessionID, userMessage, reply string, turn domain.TurnResult, state *session.State) {
	if s.Store == nil || user == nil || user.IsGuest {
		return
	}
	if !strings.HasPrefix(sessionID, "conv_") {
		return
	}

	if _, err := s.Store.GetConversation(ctx, sessionID); err != nil {
		conv := domain.Conversation{ID: sessionID, UserID: user.ID, Title: previewOf(userMessage)}
		if err := s.Store.CreateConversation(ctx, conv); err != nil {
			s.logWarn("create conversation failed", "error", err)
			return
		}
	}

	if err := s.Store.CreateMessage(ctx, domain.Message{ID: uuid.NewString(), ConversationID: sessionID, Role: "user", Content: userMessage}); err != nil {
		s.logWarn("persist user message failed", "error", err)
	}
	if err := s.Store.CreateMessage(ctx, domain.Message{ID: uuid.NewString(), ConversationID: sessionID, Role: "assistant", Content: reply}); err != nil {
		s.logWarn("persist assistant message failed", "error", err)
	}

	blob := store.EVCBlob{EVCState: state.Engine.GetFullState()}
	trackerState := state.Tracker.GetState()
	blob.UserEmotionTracker = &trackerState
	raw, err := json.Marshal(blob)
	if err != nil {
		s.logWarn("marshal evc blob failed", "error", err)
		return
	}
	if err := s.Store.SaveEVCState(ctx, sessionID, raw, state.LastTurnTS); err != nil {
		s.logWarn("save evc state failed", "error", err)
	}
}

// ExtractedFact upserts a single candidate fact if its confidence meets
// the persistence bar, returning whether it was stored.
func (s *Service) ExtractedFact(ctx context.Context, userID string, fact domain.LearnedFact, category string, confidence float64) bool {
	if s.Facts == nil || confidence < factConfidence {
		return false
	}
	if _, err := s.Facts.Learn(ctx, userID, category, fact.Key, fact.Value, confidence); err != nil {
		s.logWarn("learn fact failed", "error", err)
		return false
	}
	return true
}

// extractAndLearnFacts runs best-effort fact extraction over the user's
// message and upserts anything confident enough to keep. It runs before
// the response is returned, bounded by factExtractTimeout. Guests and anonymous
// callers are skipped: there is nowhere to persist a fact for them.
func (s *Service) extractAndLearnFacts(ctx context.Context, user *domain.User, message string) []domain.LearnedFact {
	if user == nil || user.IsGuest || s.Facts == nil || s.LLM == nil {
		return nil
	}

	extractCtx, cancel := context.WithTimeout(ctx, factExtractTimeout)
	defer cancel()
	candidates, err := memory.ExtractFacts(extractCtx, s.LLM, s.FactModel, message)
	if err != nil {
		s.logWarn("fact extraction failed", "error", err)
		return nil
	}

	var learned []domain.LearnedFact
	for _, c := range candidates {
		fact := domain.LearnedFact{Key: c.Key, Value: c.Value}
		if s.ExtractedFact(ctx, user.ID, fact, c.Category, c.Confidence) {
			learned = append(learned, fact)
		}
	}
	return learned
}

func toChatMessages(msgs []domain.Message) []domain.ChatMessage {
	out := make([]domain.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, domain.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

func (s *Service) logWarn(msg string, args ...any) {
	if s.Logger != nil {
		s.Logger.Warn(msg, args...)
	}
}
