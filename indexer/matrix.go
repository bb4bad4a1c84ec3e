package indexer

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// buildWordFrequency returns the dense terms x documents matrix of local
// counts.  Terms absent from index are ignored.
func buildWordFrequency(index map[string]int, docs []*Document) *mat.Dense {
	wfm := mat.NewDense(len(index), len(docs), nil)
	for j, doc := range docs {
		for term, local := range doc.counts {
			if i, ok := index[term]; ok {
				wfm.Set(i, j, float64(local))
			}
		}
	}
	return wfm
}

// buildTFIDF weights every cell of wfm: weight(term) * log2(local + 1).
func buildTFIDF(wfm *mat.Dense, weights []float64) *mat.Dense {
	var tfidf mat.Dense
	tfidf.Apply(func(i, j int, v float64) float64 {
		return tfidfCell(weights[i], v)
	}, wfm)
	return &tfidf
}

func tfidfCell(weight float64, local float64) float64 {
	return weight * math.Log2(local+1.0)
}
