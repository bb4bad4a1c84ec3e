package indexer

import (
	"time"

	"gonum.org/v1/gonum/mat"
)

// Model is the immutable result of fitting a Corpus: the frozen vocabulary,
// package names and references, global weights, matrices and the latent
// factors of the projection chosen at fit time.
//
// A Model holds no per-document term maps.  It is safe for concurrent use.
type Model struct {
	terms       []string
	index       map[string]int
	names       []string
	refs        []string
	weights     []float64
	wfm         *mat.Dense
	tfidf       *mat.Dense
	lsi         *LSIModel
	projection  Projection
	maxFeatures int
	fittedAt    time.Time
}

// Dims returns the number of fitted terms and documents.
func (m *Model) Dims() (terms int, documents int) {
	return len(m.terms), len(m.names)
}

func (m *Model) Projection() Projection { return m.projection }
func (m *Model) MaxFeatures() int       { return m.maxFeatures }
func (m *Model) FittedAt() time.Time    { return m.fittedAt }

func (m *Model) TermIndices() []string  { return copyStrings(m.terms) }
func (m *Model) PackageNames() []string { return copyStrings(m.names) }
func (m *Model) PackageRefs() []string  { return copyStrings(m.refs) }

func (m *Model) GlobalWeights() []float64 {
	weights := make([]float64, len(m.weights))
	copy(weights, m.weights)
	return weights
}

// Weight returns the global weight of term, and false when term is not in
// the fitted vocabulary.
func (m *Model) Weight(term string) (float64, bool) {
	i, ok := m.index[term]
	if !ok {
		return 0, false
	}
	return m.weights[i], true
}

func (m *Model) WordFrequencyMatrix() *mat.Dense { return mat.DenseCopyOf(m.wfm) }
func (m *Model) TFIDFMatrix() *mat.Dense         { return mat.DenseCopyOf(m.tfidf) }

// SVD returns the TF-IDF factorization.  Fails with ErrProjectionMismatch for
// a model fit with ProjectWordFrequency.
func (m *Model) SVD() (*LSIModel, error) {
	if m.projection != ProjectTFIDF {
		return nil, ErrProjectionMismatch
	}
	return m.lsi, nil
}

// SVDWordFrequency returns the word frequency factorization.  Fails with
// ErrProjectionMismatch for a model fit with ProjectTFIDF.
func (m *Model) SVDWordFrequency() (*LSIModel, error) {
	if m.projection != ProjectWordFrequency {
		return nil, ErrProjectionMismatch
	}
	return m.lsi, nil
}

// Latent returns the factorization of whichever projection the model was fit
// with.
func (m *Model) Latent() *LSIModel { return m.lsi }

func (m *Model) FoldWordFrequency(counts map[string]int) []float64 {
	defer FoldTimer.UpdateSince(time.Now())
	return foldWordFrequency(m.index, counts)
}

func (m *Model) FoldTFIDF(counts map[string]int) []float64 {
	defer FoldTimer.UpdateSince(time.Now())
	return foldTFIDF(m.index, m.weights, counts)
}

func (m *Model) FoldSVD(counts map[string]int) ([]float64, error) {
	if m.projection != ProjectTFIDF {
		return nil, ErrProjectionMismatch
	}
	return m.lsi.fold(m.FoldTFIDF(counts))
}

func (m *Model) FoldSVDWordFrequency(counts map[string]int) ([]float64, error) {
	if m.projection != ProjectWordFrequency {
		return nil, ErrProjectionMismatch
	}
	return m.lsi.fold(m.FoldWordFrequency(counts))
}

// FoldLatent folds counts through whichever projection the model was fit
// with.
func (m *Model) FoldLatent(counts map[string]int) ([]float64, error) {
	if m.projection == ProjectWordFrequency {
		return m.FoldSVDWordFrequency(counts)
	}
	return m.FoldSVD(counts)
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
