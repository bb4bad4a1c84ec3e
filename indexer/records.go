package indexer

import (
	"fmt"

	"github.com/foster/bag-of-code/domain"
)

// RegisterRecord replays a stored package record into the corpus as a new
// document, preserving the record's term order.
func (c *Corpus) RegisterRecord(rec *domain.PackageRecord) (*Document, error) {
	if len(rec.Counts) != len(rec.Terms) {
		return nil, fmt.Errorf("package %q has %v terms but %v counts", rec.Name, len(rec.Terms), len(rec.Counts))
	}
	doc, err := c.RegisterPackage(rec.Name, rec.Ref)
	if err != nil {
		return nil, err
	}
	for i, term := range rec.Terms {
		if err := doc.RegisterTermCount(term, int(rec.Counts[i])); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// CorpusFromRecords builds an unfitted corpus from package records.
func CorpusFromRecords(recs ...*domain.PackageRecord) (*Corpus, error) {
	c := NewCorpus()
	for _, rec := range recs {
		if _, err := c.RegisterRecord(rec); err != nil {
			return nil, err
		}
	}
	return c, nil
}
