package telegram

// maxMessageLen is Telegram's hard limit on message text length.
const maxMessageLen = 4096

// chunkText splits text into pieces of at most maxMessageLen runes. Splits
// fall on the limit boundary, not on whitespace; Telegram renders the pieces
// back to back as separate messages.
func chunkText(text string) []string {
	runes := []rune(text)
	if len(runes) <= maxMessageLen {
		return []string{text}
	}

	chunks := make([]string, 0, (len(runes)+maxMessageLen-1)/maxMessageLen)
	for start := 0; start < len(runes); start += maxMessageLen {
		end := start + maxMessageLen
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
