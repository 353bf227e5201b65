package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"
	"sync"
)

const (
	chunkTokens   = 400
	overlapTokens = 80
)

// Chunk is one overlapping slice of a Markdown document, line-addressed
// so a search hit can be traced back to its source lines.
type Chunk struct {
	Path      string
	StartLine int
	EndLine   int
	Text      string
	Hash      string
}

// SearchResult is a scored chunk returned from a keyword query.
type SearchResult struct {
	Path      string
	StartLine int
	EndLine   int
	Score     float64
	Snippet   string
}

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

func tokenize(text string) []string {
	matches := tokenPattern.FindAllString(strings.ToLower(text), -1)
	return matches
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// ChunkMarkdown splits content into ~chunkTokens-token chunks (4 chars
// per token, the same heuristic as the original chunker) with
// overlapTokens of trailing context carried into the next chunk.
func ChunkMarkdown(path, content string) []Chunk {
	lines := strings.Split(content, "\n")
	maxChars := chunkTokens * 4
	overlapChars := overlapTokens * 4

	type numberedLine struct {
		text string
		no   int
	}
	var current []numberedLine
	currentChars := 0
	var chunks []Chunk

	flush := func() {
		if len(current) == 0 {
			return
		}
		texts := make([]string, len(current))
		for i, l := range current {
			texts[i] = l.text
		}
		text := strings.Join(texts, "\n")
		chunks = append(chunks, Chunk{
			Path:      path,
			StartLine: current[0].no,
			EndLine:   current[len(current)-1].no,
			Text:      text,
			Hash:      hashText(text),
		})
	}
	carryOverlap := func() {
		if overlapChars <= 0 || len(current) == 0 {
			current = nil
			currentChars = 0
			return
		}
		var kept []numberedLine
		acc := 0
		for i := len(current) - 1; i >= 0; i-- {
			acc += len(current[i].text) + 1
			kept = append([]numberedLine{current[i]}, kept...)
			if acc >= overlapChars {
				break
			}
		}
		current = kept
		currentChars = 0
		for _, l := range current {
			currentChars += len(l.text) + 1
		}
	}

	for i, line := range lines {
		lineNo := i + 1
		lineSize := len(line) + 1
		if currentChars+lineSize > maxChars && len(current) > 0 {
			flush()
			carryOverlap()
		}
		current = append(current, numberedLine{text: line, no: lineNo})
		currentChars += lineSize
	}
	flush()
	return chunks
}

// bm25 scores a single document against query tokens, Okapi BM25 with
// the original's fixed k1/b/avg_dl constants.
func bm25(queryTokens, docTokens []string) float64 {
	const k1 = 1.5
	const b = 0.75
	const avgDL = 100.0
	if len(queryTokens) == 0 || len(docTokens) == 0 {
		return 0
	}
	tf := make(map[string]int, len(docTokens))
	for _, t := range docTokens {
		tf[t]++
	}
	dl := float64(len(docTokens))
	var score float64
	for _, qt := range queryTokens {
		count := tf[qt]
		if count == 0 {
			continue
		}
		freq := float64(count)
		numerator := freq * (k1 + 1)
		denominator := freq + k1*(1-b+b*dl/avgDL)
		score += numerator / denominator
	}
	return score
}

// NoteStore is an in-process keyword index over Markdown notes: chunk on
// write, BM25-rank on search. One index is shared by every caller; it is
// not partitioned by user. The original backend persisted the same index
// in SQLite next to the note files; this port keeps it in memory only,
// starting empty and filled solely through Put.
type NoteStore struct {
	mu     sync.RWMutex
	chunks map[string][]Chunk // path -> chunks
	tokens map[string][][]string
}

func NewNoteStore() *NoteStore {
	return &NoteStore{
		chunks: make(map[string][]Chunk),
		tokens: make(map[string][][]string),
	}
}

// Put (re)indexes a document, replacing any chunks previously stored
// under the same path.
func (n *NoteStore) Put(path, content string) {
	chunks := ChunkMarkdown(path, content)
	tokens := make([][]string, len(chunks))
	for i, c := range chunks {
		tokens[i] = tokenize(c.Text)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.chunks[path] = chunks
	n.tokens[path] = tokens
}

func (n *NoteStore) Delete(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.chunks, path)
	delete(n.tokens, path)
}

// Search ranks every indexed chunk against query by BM25 and returns
// the topK highest scoring, ties broken by path then start line.
func (n *NoteStore) Search(query string, topK int) []SearchResult {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}
	n.mu.RLock()
	defer n.mu.RUnlock()

	var results []SearchResult
	for path, chunks := range n.chunks {
		docTokens := n.tokens[path]
		for i, c := range chunks {
			score := bm25(queryTokens, docTokens[i])
			if score <= 0 {
				continue
			}
			snippet := c.Text
			if len(snippet) > 200 {
				snippet = snippet[:200]
			}
			results = append(results, SearchResult{
				Path: c.Path, StartLine: c.StartLine, EndLine: c.EndLine,
				Score: score, Snippet: snippet,
			})
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Path != results[j].Path {
			return results[i].Path < results[j].Path
		}
		return results[i].StartLine < results[j].StartLine
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}
