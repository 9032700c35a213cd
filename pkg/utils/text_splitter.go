package utils

// SplitText slices extracted document text into chunks of roughly
// chunkSize characters with the given overlap, mirroring how the
// backend chunker sizes generation parts. Used for the wizard's local
// chunk-boundary preview; the authoritative parts always come from the
// backend chunk endpoint.
func SplitText(text string, chunkSize int, overlap int) []string {
	if chunkSize <= 0 {
		return []string{text}
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		// Overlap at or above the chunk size would never advance.
		step = chunkSize
	}

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}
