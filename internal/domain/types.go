// Package domain holds the value types shared across the hormone/emotion
// dynamics, the orchestrator, persistence, and the HTTP layer.
package domain

// Hormone and emotion index orders are contractual: every configuration
// matrix and sensitivity vector in internal/hormones and internal/emotion
// indexes into these same positions.
const (
	Dopamine = iota
	Serotonin
	Oxytocin
	Endorphin
	Cortisol
	Adrenaline
	GABA
	Norepinephrine
	HormoneCount
)

const (
	Joy = iota
	Serenity
	Love
	Excitement
	Sadness
	Fear
	Anger
	Surprise
	EmotionCount
)

var HormoneNames = [HormoneCount]string{
	Dopamine:       "Dopamine",
	Serotonin:      "Serotonin",
	Oxytocin:       "Oxytocin",
	Endorphin:      "Endorphin",
	Cortisol:       "Cortisol",
	Adrenaline:     "Adrenaline",
	GABA:           "GABA",
	Norepinephrine: "Norepinephrine",
}

var EmotionNames = [EmotionCount]string{
	Joy:        "Joy",
	Serenity:   "Serenity",
	Love:       "Love",
	Excitement: "Excitement",
	Sadness:    "Sadness",
	Fear:       "Fear",
	Anger:      "Anger",
	Surprise:   "Surprise",
}

// HormoneVector and EmotionVector are dense fixed-size vectors, not slices:
// index order is fixed and shared with the hormone/emotion name tables
// above, not a runtime property.
type HormoneVector [HormoneCount]float64

type EmotionVector [EmotionCount]float64

func (h HormoneVector) ToMap() map[string]float64 {
	m := make(map[string]float64, HormoneCount)
	for i, name := range HormoneNames {
		m[name] = h[i]
	}
	return m
}

func (e EmotionVector) ToMap() map[string]float64 {
	m := make(map[string]float64, EmotionCount)
	for i, name := range EmotionNames {
		m[name] = e[i]
	}
	return m
}

// Signal is the analyzer's (S, D, C) reading for one message, plus its
// short label.
type Signal struct {
	S           float64 `json:"S"`
	D           float64 `json:"D"`
	C           float64 `json:"C"`
	UserEmotion string  `json:"user_emotion"`
}

// TurnResult is one immutable row of an engine's turn log.
type TurnResult struct {
	Turn            int                `json:"turn"`
	Message         string             `json:"message"`
	DeltaT          float64            `json:"delta_t"`
	Input           Signal             `json:"input"`
	Hormones        map[string]float64 `json:"hormones"`
	HormoneDelta    map[string]float64 `json:"hormone_delta"`
	Emotions        map[string]float64 `json:"emotions"`
	DominantEmotion string             `json:"dominant_emotion"`
	DominantScore   float64            `json:"dominant_score"`
	Top3Emotions    []EmotionScore     `json:"top3_emotions"`
	EmotionBlend    string             `json:"emotion_blend"`
	Memory          map[string]float64 `json:"memory"`
	Trust           float64            `json:"trust"`
	OutputIntensity float64            `json:"output_intensity"`
}

type EmotionScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// EVCState is the exact shape persisted and restored by an engine's
// snapshot/restore pair.
type EVCState struct {
	Turn                int                `json:"turn"`
	Hormones            []float64          `json:"hormones"`
	Memory              []float64          `json:"memory"`
	Trust               float64            `json:"trust"`
	Name                string             `json:"name"`
	UserEmotionTracker  *TrackerState      `json:"user_emotion_tracker,omitempty"`
}

// EmotionRecord is one entry in the tracker's bounded history.
type EmotionRecord struct {
	Turn            int     `json:"turn"`
	S               float64 `json:"S"`
	D               float64 `json:"D"`
	C               float64 `json:"C"`
	UserEmotion     string  `json:"user_emotion"`
	MessagePreview  string  `json:"message_preview"`
}

// TrackerState is the user-emotion tracker's serialization shape.
type TrackerState struct {
	TurnCount       int             `json:"turn_count"`
	EngineState     EVCState        `json:"engine_state"`
	LastTurnResult  *TurnResult     `json:"last_turn_result,omitempty"`
	History         []EmotionRecord `json:"history"`
}

// Personality is a hormone sensitivity vector.
type Personality HormoneVector

// LLM request/response types shared by every internal/llm backend.

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type LLMRequest struct {
	Model       string        `json:"model"`
	System      string        `json:"system,omitempty"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type LLMResponse struct {
	Content string `json:"content"`
}

// Persistence-layer entities.

type User struct {
	ID           string `json:"id"`
	Username     string `json:"username,omitempty"`
	Email        string `json:"email,omitempty"`
	PasswordHash string `json:"-"`
	IsGuest      bool   `json:"is_guest"`
	GoogleSub    string `json:"-"`
	CreatedAt    string `json:"created_at"`
}

type Conversation struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type Message struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	CreatedAt      string `json:"created_at"`
}

type Fact struct {
	ID             string  `json:"id"`
	UserID         string  `json:"user_id"`
	Category       string  `json:"category"`
	Key            string  `json:"key"`
	Value          string  `json:"value"`
	Confidence     float64 `json:"confidence"`
	MentionCount   int     `json:"mention_count"`
	LastConfirmed  string  `json:"last_confirmed"`
}

// SkillDefinition names a matchable skill and the keywords that trigger it.
type SkillDefinition struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
	Context  string   `json:"context"`
}

// HTTP DTOs. Field names and JSON keys below are contractual: the
// external interface names them verbatim.

type ChatHTTPRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatSignals is the {S,D,C} triple as returned to a caller, without
// the internal-only user_emotion label (reported separately).
type ChatSignals struct {
	S float64 `json:"S"`
	D float64 `json:"D"`
	C float64 `json:"C"`
}

type LearnedFact struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type UserMoodStats struct {
	AvgS  float64 `json:"avg_S"`
	AvgD  float64 `json:"avg_D"`
	AvgC  float64 `json:"avg_C"`
	Turns int     `json:"turns"`
}

type UserMood struct {
	Current string        `json:"current"`
	Trend   string        `json:"trend"`
	Stats   UserMoodStats `json:"stats"`
}

type ChatHTTPResponse struct {
	Response     string        `json:"response"`
	UserEmotion  string        `json:"user_emotion"`
	Signals      ChatSignals   `json:"signals"`
	DeltaT       float64       `json:"delta_t"`
	BotState     TurnResult    `json:"bot_state"`
	MatchedSkill *string       `json:"matched_skill"`
	MemoryUsed   bool          `json:"memory_used"`
	LearnedFacts []LearnedFact `json:"learned_facts"`
	UserMood     UserMood      `json:"user_mood"`
}

type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type GoogleLoginRequest struct {
	Credential string `json:"credential"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
