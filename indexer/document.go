package indexer

// termRegistrar receives term registrations reported by documents.
type termRegistrar interface {
	registerTerm(term string, n int) error
}

// Document is a per-package bag of terms.  It is created and owned by a
// Corpus, and reports every registration back to it.
type Document struct {
	name   string
	ref    string
	terms  []string // First-occurrence order.
	counts map[string]int
	corpus termRegistrar
}

func newDocument(corpus termRegistrar, name string, ref string) *Document {
	doc := &Document{
		name:   name,
		ref:    ref,
		terms:  []string{},
		counts: map[string]int{},
		corpus: corpus,
	}
	return doc
}

// RegisterTerm records one occurrence of term in the document and in the
// owning corpus.
func (doc *Document) RegisterTerm(term string) error {
	return doc.RegisterTermCount(term, 1)
}

// RegisterTermCount records n occurrences of term at once.  Non-positive n
// is a no-op.
func (doc *Document) RegisterTermCount(term string, n int) error {
	if n <= 0 {
		return nil
	}
	if err := doc.corpus.registerTerm(term, n); err != nil {
		return err
	}
	if _, ok := doc.counts[term]; !ok {
		doc.terms = append(doc.terms, term)
	}
	doc.counts[term] += n
	return nil
}

func (doc *Document) Name() string { return doc.name }
func (doc *Document) Ref() string  { return doc.ref }

// Count returns the local occurrence count of term.
func (doc *Document) Count(term string) int { return doc.counts[term] }

// Len returns the number of distinct terms in the document.
func (doc *Document) Len() int { return len(doc.terms) }

// Terms returns the document's distinct terms in first-occurrence order.
func (doc *Document) Terms() []string {
	terms := make([]string, len(doc.terms))
	copy(terms, doc.terms)
	return terms
}

// TermCounts returns a copy of the local term -> count mapping.
func (doc *Document) TermCounts() map[string]int {
	m := make(map[string]int, len(doc.counts))
	for term, n := range doc.counts {
		m[term] = n
	}
	return m
}
