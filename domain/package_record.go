package domain

import (
	"time"

	"github.com/gogo/protobuf/proto"
)

// PackageRecord is the persisted form of a tokenized package: its name, an
// optional external reference (usually the source repository URL) and the
// local count of every term found in its source files.
//
// Terms are kept in first-occurrence order, with Counts[i] holding the
// number of occurrences of Terms[i].  Replaying a record term by term
// therefore reproduces the registration order observed while tokenizing.
type PackageRecord struct {
	Name        string   `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	Ref         string   `protobuf:"bytes,2,opt,name=ref,proto3" json:"ref,omitempty"`
	Terms       []string `protobuf:"bytes,3,rep,name=terms,proto3" json:"terms,omitempty"`
	Counts      []int64  `protobuf:"varint,4,rep,packed,name=counts,proto3" json:"counts,omitempty"`
	TokenizedAt int64    `protobuf:"varint,5,opt,name=tokenized_at,json=tokenizedAt,proto3" json:"tokenized_at,omitempty"`
}

func (rec *PackageRecord) Reset()         { *rec = PackageRecord{} }
func (rec *PackageRecord) String() string { return proto.CompactTextString(rec) }
func (*PackageRecord) ProtoMessage()      {}

func NewPackageRecord(name string, ref string) *PackageRecord {
	rec := &PackageRecord{
		Name:        name,
		Ref:         ref,
		Terms:       []string{},
		Counts:      []int64{},
		TokenizedAt: time.Now().UnixNano(),
	}
	return rec
}

// TokenizedTime returns TokenizedAt as a time.Time.
func (rec *PackageRecord) TokenizedTime() time.Time {
	return time.Unix(0, rec.TokenizedAt)
}

// Len returns the number of distinct terms in the record.
func (rec *PackageRecord) Len() int {
	return len(rec.Terms)
}

// Total returns the sum of all term counts.
func (rec *PackageRecord) Total() int64 {
	var total int64
	for _, n := range rec.Counts {
		total += n
	}
	return total
}

// TermCounts returns the record contents as a term -> count map.
func (rec *PackageRecord) TermCounts() map[string]int {
	m := make(map[string]int, len(rec.Terms))
	for i, term := range rec.Terms {
		if i < len(rec.Counts) {
			m[term] += int(rec.Counts[i])
		}
	}
	return m
}

// RecordBuilder accumulates a token stream into a PackageRecord while
// preserving first-occurrence order.
type RecordBuilder struct {
	rec   *PackageRecord
	index map[string]int
}

func NewRecordBuilder(name string, ref string) *RecordBuilder {
	rb := &RecordBuilder{
		rec:   NewPackageRecord(name, ref),
		index: map[string]int{},
	}
	return rb
}

// Add counts one occurrence of term.
func (rb *RecordBuilder) Add(term string) {
	if i, ok := rb.index[term]; ok {
		rb.rec.Counts[i]++
		return
	}
	rb.index[term] = len(rb.rec.Terms)
	rb.rec.Terms = append(rb.rec.Terms, term)
	rb.rec.Counts = append(rb.rec.Counts, 1)
}

// Record returns the accumulated record.
func (rb *RecordBuilder) Record() *PackageRecord {
	return rb.rec
}
