package utils

import "unicode"

// SplitText splits text into chunks of at most chunkSize runes with the
// given overlap between consecutive chunks. When possible a chunk is cut
// back to the nearest whitespace so words stay intact. Product descriptions
// are short, so most catalog entries stay a single chunk.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize
	}

	var chunks []string
	for i := 0; i < len(runes); i += step {
		end := i + chunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[i:]))
			break
		}

		// Pull the cut back to a whitespace boundary when one is nearby.
		cut := end
		for j := end; j > i+chunkSize/2; j-- {
			if unicode.IsSpace(runes[j-1]) {
				cut = j
				break
			}
		}
		chunks = append(chunks, string(runes[i:cut]))
	}

	return chunks
}
