package metrics

import "math"

// GenerationStats summarizes one finished generation.
type GenerationStats struct {
	CompletionTokens int   `json:"completionTokens"`
	ElapsedMs        int64 `json:"elapsedMs"`
	TokensPerSecond  int   `json:"tokensPerSecond"`
}

// Throughput derives the rounded tokens/second figure shown to the user.
func Throughput(tokens int, elapsedMs int64) int {
	if elapsedMs <= 0 || tokens <= 0 {
		return 0
	}
	return int(math.Round(float64(tokens) / (float64(elapsedMs) / 1000.0)))
}
