package indexer

import (
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// State of a Corpus.  A corpus starts out Building and becomes Fitted once
// Fit succeeds; Fitted is terminal.
type State int

const (
	Building State = iota
	Fitted
)

func (s State) String() string {
	switch s {
	case Building:
		return "building"
	case Fitted:
		return "fitted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Projection selects which matrix the latent space is factorized from.
type Projection int

const (
	ProjectTFIDF Projection = iota
	ProjectWordFrequency
)

func (p Projection) String() string {
	switch p {
	case ProjectTFIDF:
		return "tfidf"
	case ProjectWordFrequency:
		return "wfm"
	default:
		return fmt.Sprintf("Projection(%d)", int(p))
	}
}

// ParseProjection parses "tfidf" or "wfm" (also "word-frequency").
func ParseProjection(s string) (Projection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tfidf", "tf-idf":
		return ProjectTFIDF, nil
	case "wfm", "word-frequency", "wordfrequency":
		return ProjectWordFrequency, nil
	default:
		return 0, fmt.Errorf("unrecognized projection %q", s)
	}
}

var (
	DefaultMaxFeatures = 0 // <= 0 signifies an uncapped vocabulary.
	DefaultProjection  = ProjectTFIDF
)

type FitOptions struct {
	MaxFeatures int        // Keep only the top-K terms by global count.
	Projection  Projection // Matrix the latent space is fit from.
}

func NewFitOptions() *FitOptions {
	opts := &FitOptions{
		MaxFeatures: DefaultMaxFeatures,
		Projection:  DefaultProjection,
	}
	return opts
}

// Corpus owns the global vocabulary, the per-term global occurrence counts and
// every registered Document.
//
// Registration is unsynchronized: documents sharing a corpus must be
// populated by a single writer.
type Corpus struct {
	terms  []string       // First-registration order.
	counts map[string]int // Global occurrence counts.
	docs   []*Document
	state  State
	opts   FitOptions

	// Frozen at fit time.
	vocab    []string
	index    map[string]int
	fittedAt time.Time

	cache derived
}

// derived holds every lazily computed value.  A nil field is stale.
type derived struct {
	weights []float64
	wfm     *mat.Dense
	tfidf   *mat.Dense
	lsi     *LSIModel
	model   *Model
}

func NewCorpus() *Corpus {
	c := &Corpus{
		terms:  []string{},
		counts: map[string]int{},
		docs:   []*Document{},
		state:  Building,
	}
	return c
}

// RegisterPackage creates a new document owned by the corpus.  ref is an
// optional external reference, e.g. the package's source URL.
func (c *Corpus) RegisterPackage(name string, ref string) (*Document, error) {
	if c.state != Building {
		return nil, ErrAlreadyFitted
	}
	doc := newDocument(c, name, ref)
	c.docs = append(c.docs, doc)
	c.Invalidate()
	return doc, nil
}

// registerTerm is the reporting side of Document.RegisterTerm.
func (c *Corpus) registerTerm(term string, n int) error {
	if c.state != Building {
		return ErrAlreadyFitted
	}
	if _, ok := c.counts[term]; !ok {
		c.terms = append(c.terms, term)
	}
	c.counts[term] += n
	c.Invalidate()
	return nil
}

// Invalidate drops every cached derived value, forcing full recomputation on
// next access.
func (c *Corpus) Invalidate() {
	c.cache = derived{}
}

func (c *Corpus) State() State { return c.state }

// Len returns the number of registered documents.
func (c *Corpus) Len() int { return len(c.docs) }

// NumTerms returns the size of the full, uncapped vocabulary.
func (c *Corpus) NumTerms() int { return len(c.terms) }

// Count returns the global occurrence count of term.
func (c *Corpus) Count(term string) int { return c.counts[term] }

// Documents returns the registered documents in registration order.
func (c *Corpus) Documents() []*Document {
	docs := make([]*Document, len(c.docs))
	copy(docs, c.docs)
	return docs
}

// TermIndices returns the vocabulary in matrix row order.  Before fitting this
// is every registered term; afterwards it is the frozen, possibly
// feature-limited, vocabulary.
func (c *Corpus) TermIndices() []string {
	src := c.terms
	if c.state == Fitted {
		src = c.vocab
	}
	terms := make([]string, len(src))
	copy(terms, src)
	return terms
}

// PackageNames returns document names in registration (matrix column) order.
func (c *Corpus) PackageNames() []string {
	names := make([]string, len(c.docs))
	for i, doc := range c.docs {
		names[i] = doc.name
	}
	return names
}

// PackageRefs returns document external references in registration order.
func (c *Corpus) PackageRefs() []string {
	refs := make([]string, len(c.docs))
	for i, doc := range c.docs {
		refs[i] = doc.ref
	}
	return refs
}

// Fit freezes the corpus.  The vocabulary is narrowed to the top
// opts.MaxFeatures terms (if positive) and the projection path is fixed for
// every subsequent latent-space operation.  Weights, matrices and factors
// are computed lazily on first access.
func (c *Corpus) Fit(opts *FitOptions) error {
	if opts == nil {
		opts = NewFitOptions()
	}
	if c.state != Building {
		return ErrAlreadyFitted
	}
	if len(c.docs) <= 1 {
		return ErrInsufficientCorpus
	}
	if len(c.terms) == 0 {
		return ErrEmptyVocabulary
	}

	defer FitTimer.UpdateSince(time.Now())

	c.vocab = selectFeatures(c.terms, c.counts, opts.MaxFeatures)
	c.index = indexTerms(c.vocab)
	c.opts = *opts
	c.fittedAt = time.Now()
	c.state = Fitted
	c.Invalidate()

	for _, doc := range c.docs {
		DocumentTerms.Update(int64(len(doc.terms)))
	}

	log.WithField("terms", len(c.vocab)).
		WithField("vocabulary", len(c.terms)).
		WithField("documents", len(c.docs)).
		WithField("projection", opts.Projection).
		Debug("Corpus fit")
	return nil
}

// FitOptions returns the options the corpus was fit with.
func (c *Corpus) FitOptions() (FitOptions, error) {
	if c.state != Fitted {
		return FitOptions{}, ErrNotFitted
	}
	return c.opts, nil
}

// GlobalWeights returns the global weight of every fitted term, in
// TermIndices order.
func (c *Corpus) GlobalWeights() ([]float64, error) {
	weights, err := c.globalWeights()
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(weights))
	copy(out, weights)
	return out, nil
}

// WordFrequencyMatrix returns a copy of the terms x documents local count
// matrix.
func (c *Corpus) WordFrequencyMatrix() (*mat.Dense, error) {
	wfm, err := c.wordFrequency()
	if err != nil {
		return nil, err
	}
	return mat.DenseCopyOf(wfm), nil
}

// TFIDFMatrix returns a copy of the terms x documents TF-IDF matrix.
func (c *Corpus) TFIDFMatrix() (*mat.Dense, error) {
	tfidf, err := c.tfidf()
	if err != nil {
		return nil, err
	}
	return mat.DenseCopyOf(tfidf), nil
}

// SVD returns the factorization of the TF-IDF matrix.  Only valid for a
// corpus fit with ProjectTFIDF.
func (c *Corpus) SVD() (*LSIModel, error) {
	return c.latent(ProjectTFIDF)
}

// SVDWordFrequency returns the factorization of the word frequency matrix.
// Only valid for a corpus fit with ProjectWordFrequency.
func (c *Corpus) SVDWordFrequency() (*LSIModel, error) {
	return c.latent(ProjectWordFrequency)
}

// FoldWordFrequency maps an unseen document into the fitted term space as raw
// counts.
func (c *Corpus) FoldWordFrequency(counts map[string]int) ([]float64, error) {
	if c.state != Fitted {
		return nil, ErrNotFitted
	}
	defer FoldTimer.UpdateSince(time.Now())
	return foldWordFrequency(c.index, counts), nil
}

// FoldTFIDF maps an unseen document into the fitted term space using the
// weights frozen at fit time.
func (c *Corpus) FoldTFIDF(counts map[string]int) ([]float64, error) {
	weights, err := c.globalWeights()
	if err != nil {
		return nil, err
	}
	defer FoldTimer.UpdateSince(time.Now())
	return foldTFIDF(c.index, weights, counts), nil
}

// FoldSVD maps an unseen document into the latent space fit from the TF-IDF
// matrix.
func (c *Corpus) FoldSVD(counts map[string]int) ([]float64, error) {
	lsi, err := c.latent(ProjectTFIDF)
	if err != nil {
		return nil, err
	}
	vec, err := c.FoldTFIDF(counts)
	if err != nil {
		return nil, err
	}
	return lsi.fold(vec)
}

// FoldSVDWordFrequency maps an unseen document into the latent space fit from
// the word frequency matrix.
func (c *Corpus) FoldSVDWordFrequency(counts map[string]int) ([]float64, error) {
	lsi, err := c.latent(ProjectWordFrequency)
	if err != nil {
		return nil, err
	}
	vec, err := c.FoldWordFrequency(counts)
	if err != nil {
		return nil, err
	}
	return lsi.fold(vec)
}

// Model returns the immutable fitted model, computing every derived value
// that has not been computed yet.
func (c *Corpus) Model() (*Model, error) {
	if c.state != Fitted {
		return nil, ErrNotFitted
	}
	if c.cache.model != nil {
		return c.cache.model, nil
	}

	weights, err := c.globalWeights()
	if err != nil {
		return nil, err
	}
	wfm, err := c.wordFrequency()
	if err != nil {
		return nil, err
	}
	tfidf, err := c.tfidf()
	if err != nil {
		return nil, err
	}
	lsi, err := c.latent(c.opts.Projection)
	if err != nil {
		return nil, err
	}

	m := &Model{
		terms:       c.TermIndices(),
		index:       c.index,
		names:       c.PackageNames(),
		refs:        c.PackageRefs(),
		weights:     weights,
		wfm:         wfm,
		tfidf:       tfidf,
		lsi:         lsi,
		projection:  c.opts.Projection,
		maxFeatures: c.opts.MaxFeatures,
		fittedAt:    c.fittedAt,
	}
	c.cache.model = m
	return m, nil
}

func (c *Corpus) globalWeights() ([]float64, error) {
	if c.state != Fitted {
		return nil, ErrNotFitted
	}
	if c.cache.weights == nil {
		start := time.Now()
		weights, err := computeWeights(c.vocab, c.counts, c.docs)
		if err != nil {
			return nil, err
		}
		WeightsTimer.UpdateSince(start)
		c.cache.weights = weights
	}
	return c.cache.weights, nil
}

func (c *Corpus) wordFrequency() (*mat.Dense, error) {
	if c.state != Fitted {
		return nil, ErrNotFitted
	}
	if c.cache.wfm == nil {
		c.cache.wfm = buildWordFrequency(c.index, c.docs)
	}
	return c.cache.wfm, nil
}

func (c *Corpus) tfidf() (*mat.Dense, error) {
	if c.cache.tfidf == nil {
		weights, err := c.globalWeights()
		if err != nil {
			return nil, err
		}
		wfm, err := c.wordFrequency()
		if err != nil {
			return nil, err
		}
		c.cache.tfidf = buildTFIDF(wfm, weights)
	}
	return c.cache.tfidf, nil
}

func (c *Corpus) latent(p Projection) (*LSIModel, error) {
	if c.state != Fitted {
		return nil, ErrNotFitted
	}
	if p != c.opts.Projection {
		return nil, ErrProjectionMismatch
	}
	if c.cache.lsi == nil {
		var (
			src *mat.Dense
			err error
		)
		switch p {
		case ProjectWordFrequency:
			src, err = c.wordFrequency()
		default:
			src, err = c.tfidf()
		}
		if err != nil {
			return nil, err
		}
		lsi, err := factorize(src)
		if err != nil {
			return nil, err
		}
		c.cache.lsi = lsi
	}
	return c.cache.lsi, nil
}

// indexTerms builds a term -> row lookup.
func indexTerms(terms []string) map[string]int {
	index := make(map[string]int, len(terms))
	for i, term := range terms {
		index[term] = i
	}
	return index
}
