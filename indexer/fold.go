package indexer

// foldWordFrequency maps term counts onto the fitted vocabulary.  Terms
// outside the vocabulary and non-positive counts are dropped.
func foldWordFrequency(index map[string]int, counts map[string]int) []float64 {
	vec := make([]float64, len(index))
	for term, n := range counts {
		if n <= 0 {
			continue
		}
		if i, ok := index[term]; ok {
			vec[i] = float64(n)
		}
	}
	return vec
}

// foldTFIDF maps term counts onto the fitted vocabulary, weighting each with
// the frozen global weights.
func foldTFIDF(index map[string]int, weights []float64, counts map[string]int) []float64 {
	vec := make([]float64, len(index))
	for term, n := range counts {
		if n <= 0 {
			continue
		}
		if i, ok := index[term]; ok {
			vec[i] = tfidfCell(weights[i], float64(n))
		}
	}
	return vec
}
