package memory

import (
	"context"
	"fmt"
	"math"

	"github.com/kiddoHope/steadysocial-sub000/internal/engine"
)

// EmbedFunc produces a float32 embedding vector from text.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// NewEngineEmbedFunc embeds through the loaded inference engine. Vectors are
// normalized to unit length before storage; chromem assumes cosine space.
func NewEngineEmbedFunc(eng engine.Engine) EmbedFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		vec, err := eng.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed history entry: %w", err)
		}
		if len(vec) == 0 {
			return nil, fmt.Errorf("embed history entry: empty vector")
		}
		normalizeVector(vec)
		return vec, nil
	}
}

func normalizeVector(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
}
