package indexer

import (
	"math"
)

// computeWeights calculates the entropy-style global weight of every term in
// vocab:
//
//     weight(t) = 1 + sum over docs d containing t of p*log2(p) / log2(M)
//
// where p = local(t, d) / global(t) and M is the number of documents.  Terms
// concentrated in few documents score close to 1; terms spread evenly across
// the corpus score close to 0.
func computeWeights(vocab []string, counts map[string]int, docs []*Document) ([]float64, error) {
	if len(docs) <= 1 {
		return nil, ErrInsufficientCorpus
	}

	logN := math.Log2(float64(len(docs)))
	weights := make([]float64, len(vocab))

	for i, term := range vocab {
		var (
			global = float64(counts[term])
			weight = 1.0
		)
		for _, doc := range docs {
			local, ok := doc.counts[term]
			if !ok {
				continue
			}
			ratio := float64(local) / global
			weight += ratio * math.Log2(ratio) / logN
		}
		weights[i] = weight
	}
	return weights, nil
}
