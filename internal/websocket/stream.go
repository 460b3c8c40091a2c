package websocket

import "strings"

// Chunks slices a finished response into cumulative word prefixes for
// pseudo-streaming: each element extends the previous one, and the last
// element is the full text. wordsPerChunk controls the step size.
func Chunks(text string, wordsPerChunk int) []string {
	if wordsPerChunk <= 0 {
		wordsPerChunk = 1
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		if text == "" {
			return nil
		}
		return []string{text}
	}

	var chunks []string
	for i := wordsPerChunk; i < len(words); i += wordsPerChunk {
		chunks = append(chunks, strings.Join(words[:i], " "))
	}
	// The final chunk is always the untouched original, whitespace and all.
	chunks = append(chunks, text)
	return chunks
}
