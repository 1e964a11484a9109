package markdown

import (
	"fmt"
	"math"
	"strings"
)

const wordsPerMinute = 200

// ReadTime estimates reading time for a markdown body, never below one minute.
func ReadTime(body []byte) string {
	words := len(strings.Fields(string(body)))
	minutes := max(1, int(math.Round(float64(words)/wordsPerMinute)))
	return fmt.Sprintf("%d min read", minutes)
}
