// Package semantic offers approximate token-similarity lookups used to widen
// retrieval beyond exact spelling. Tokens are embedded with a deterministic
// character-trigram hash, so related word forms land close together without
// an external model, and neighbors come from an HNSW graph over the
// vocabulary.
package semantic

import (
	"hash/fnv"
	"math"

	"github.com/coder/hnsw"
)

const vectorDim = 64

// Lexicon answers nearest-neighbor queries over an indexed vocabulary.
type Lexicon struct {
	graph *hnsw.Graph[string]
	size  int
}

// NewLexicon indexes vocabulary for neighbor lookups.
func NewLexicon(vocabulary []string) *Lexicon {
	g := hnsw.NewGraph[string]()
	g.Distance = hnsw.CosineDistance
	g.M = 16
	g.EfSearch = 40

	for _, tok := range vocabulary {
		g.Add(hnsw.MakeNode(tok, Vectorize(tok)))
	}
	return &Lexicon{graph: g, size: len(vocabulary)}
}

// Size returns the number of indexed tokens.
func (l *Lexicon) Size() int { return l.size }

// Neighbors returns up to k vocabulary tokens most similar to token,
// excluding the token itself.
func (l *Lexicon) Neighbors(token string, k int) []string {
	if l == nil || l.size == 0 || k <= 0 {
		return nil
	}
	nodes := l.graph.Search(Vectorize(token), k+1)
	out := make([]string, 0, k)
	for _, node := range nodes {
		if node.Key == token {
			continue
		}
		out = append(out, node.Key)
		if len(out) == k {
			break
		}
	}
	return out
}

// Vectorize embeds a token as an L2-normalized bag of hashed character
// trigrams. The token is padded with spaces so leading and trailing
// characters contribute their own trigrams.
func Vectorize(token string) []float32 {
	vec := make([]float32, vectorDim)
	padded := " " + token + " "
	runes := []rune(padded)
	if len(runes) < 3 {
		runes = append(runes, ' ', ' ')
	}
	for i := 0; i+3 <= len(runes); i++ {
		h := fnv.New32a()
		h.Write([]byte(string(runes[i : i+3])))
		vec[h.Sum32()%vectorDim]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}
