package telegram

import (
	"strings"
	"testing"
)

func TestChunkText_ShortTextSinglePiece(t *testing.T) {
	chunks := chunkText("hello")
	if len(chunks) != 1 || chunks[0] != "hello" {
		t.Errorf("chunks = %q, want [hello]", chunks)
	}
}

func TestChunkText_ExactLimit(t *testing.T) {
	text := strings.Repeat("a", maxMessageLen)
	chunks := chunkText(text)
	if len(chunks) != 1 {
		t.Errorf("chunks = %d for text at the limit, want 1", len(chunks))
	}
}

func TestChunkText_SplitsOverLimit(t *testing.T) {
	text := strings.Repeat("a", maxMessageLen+1)
	chunks := chunkText(text)
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(chunks))
	}
	if len(chunks[0]) != maxMessageLen || len(chunks[1]) != 1 {
		t.Errorf("chunk lengths = %d/%d, want %d/1", len(chunks[0]), len(chunks[1]), maxMessageLen)
	}
}

func TestChunkText_CountsRunesNotBytes(t *testing.T) {
	// Each я is two bytes; 5000 runes must split as 4096+904 runes.
	text := strings.Repeat("я", 5000)
	chunks := chunkText(text)
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(chunks))
	}
	if n := len([]rune(chunks[0])); n != maxMessageLen {
		t.Errorf("first chunk = %d runes, want %d", n, maxMessageLen)
	}
	if n := len([]rune(chunks[1])); n != 904 {
		t.Errorf("second chunk = %d runes, want 904", n)
	}
	if strings.Join(chunks, "") != text {
		t.Error("chunks do not reassemble into the original text")
	}
}

func TestChunkText_Empty(t *testing.T) {
	chunks := chunkText("")
	if len(chunks) != 1 || chunks[0] != "" {
		t.Errorf("chunks = %q, want a single empty piece", chunks)
	}
}
