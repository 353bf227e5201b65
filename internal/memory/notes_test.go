package memory

import "testing"

func TestChunkMarkdownSplitsLongDocument(t *testing.T) {
	var long string
	for i := 0; i < 200; i++ {
		long += "this is a line of filler text that repeats to grow the document\n"
	}
	chunks := ChunkMarkdown("doc.md", long)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks for a long document, got %d", len(chunks))
	}
	for _, c := range chunks {
		if c.Hash == "" {
			t.Fatalf("chunk missing hash")
		}
	}
}

func TestChunkMarkdownSingleChunkForShortDocument(t *testing.T) {
	chunks := ChunkMarkdown("short.md", "line one\nline two\n")
	if len(chunks) != 1 {
		t.Fatalf("expected a single chunk, got %d", len(chunks))
	}
}

func TestNoteStoreSearchRanksRelevantChunkHigher(t *testing.T) {
	n := NewNoteStore()
	n.Put("a.md", "the user loves hiking and mountain trails")
	n.Put("b.md", "the weather today is cloudy with a chance of rain")

	results := n.Search("hiking mountain", 5)
	if len(results) == 0 {
		t.Fatalf("expected at least one result")
	}
	if results[0].Path != "a.md" {
		t.Fatalf("expected a.md to rank first, got %s", results[0].Path)
	}
}

func TestNoteStoreSearchEmptyQuery(t *testing.T) {
	n := NewNoteStore()
	n.Put("a.md", "some content")
	if got := n.Search("", 5); got != nil {
		t.Fatalf("expected nil results for empty query, got %v", got)
	}
}

func TestNoteStoreDeleteRemovesChunks(t *testing.T) {
	n := NewNoteStore()
	n.Put("a.md", "hiking trails in the mountains")
	n.Delete("a.md")
	if got := n.Search("hiking", 5); len(got) != 0 {
		t.Fatalf("expected no results after delete, got %v", got)
	}
}
