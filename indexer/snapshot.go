package indexer

import (
	"fmt"
	"math"
	"time"

	"github.com/gogo/protobuf/proto"
	"gonum.org/v1/gonum/mat"

	"github.com/foster/bag-of-code/domain"
)

// Snapshot converts the model into its persisted form.
func (m *Model) Snapshot() *domain.ModelSnapshot {
	n, d := m.Dims()
	snap := &domain.ModelSnapshot{
		Terms:            copyStrings(m.terms),
		PackageNames:     copyStrings(m.names),
		PackageRefs:      copyStrings(m.refs),
		GlobalWeights:    m.GlobalWeights(),
		WordFrequency:    flatten(m.wfm),
		Tfidf:            flatten(m.tfidf),
		NumTerms:         int32(n),
		NumDocuments:     int32(d),
		Projection:       int32(m.projection),
		Rank:             int32(m.lsi.Rank()),
		TermLoadings:     flatten(m.lsi.t),
		SingularValues:   m.lsi.SingularValues(),
		DocumentLoadings: flatten(m.lsi.dt),
		MaxFeatures:      int32(m.maxFeatures),
		FittedAt:         m.fittedAt.UnixNano(),
	}
	return snap
}

// Marshal encodes the model snapshot as protobuf.
func (m *Model) Marshal() ([]byte, error) {
	bs, err := proto.Marshal(m.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("marshalling model snapshot: %s", err)
	}
	return bs, nil
}

// UnmarshalModel decodes a protobuf model snapshot produced by Marshal.
func UnmarshalModel(bs []byte) (*Model, error) {
	snap := &domain.ModelSnapshot{}
	if err := proto.Unmarshal(bs, snap); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotInvalid, err)
	}
	return ModelFromSnapshot(snap)
}

// ModelFromSnapshot rebuilds a Model from its persisted form without any
// recomputation.
func ModelFromSnapshot(snap *domain.ModelSnapshot) (*Model, error) {
	if err := validateSnapshot(snap); err != nil {
		return nil, err
	}

	var (
		n = int(snap.NumTerms)
		d = int(snap.NumDocuments)
		r = int(snap.Rank)
	)

	refs := snap.PackageRefs
	if len(refs) == 0 {
		refs = make([]string, d)
	}

	m := &Model{
		terms:       copyStrings(snap.Terms),
		index:       indexTerms(snap.Terms),
		names:       copyStrings(snap.PackageNames),
		refs:        copyStrings(refs),
		weights:     copyFloats(snap.GlobalWeights),
		wfm:         mat.NewDense(n, d, copyFloats(snap.WordFrequency)),
		tfidf:       mat.NewDense(n, d, copyFloats(snap.Tfidf)),
		projection:  Projection(snap.Projection),
		maxFeatures: int(snap.MaxFeatures),
		fittedAt:    time.Unix(0, snap.FittedAt),
	}
	m.lsi = newLSIModel(
		mat.NewDense(n, r, copyFloats(snap.TermLoadings)),
		copyFloats(snap.SingularValues),
		mat.NewDense(r, d, copyFloats(snap.DocumentLoadings)),
	)
	return m, nil
}

func validateSnapshot(snap *domain.ModelSnapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", ErrSnapshotInvalid)
	}

	var (
		n = int(snap.NumTerms)
		d = int(snap.NumDocuments)
		r = int(snap.Rank)
	)
	switch {
	case n <= 0 || d <= 0 || r <= 0:
		return fmt.Errorf("%w: non-positive dimensions terms=%v documents=%v rank=%v", ErrSnapshotInvalid, n, d, r)
	case r > n || r > d:
		return fmt.Errorf("%w: rank=%v exceeds min(terms=%v, documents=%v)", ErrSnapshotInvalid, r, n, d)
	case len(snap.Terms) != n:
		return fmt.Errorf("%w: have %v terms, expected %v", ErrSnapshotInvalid, len(snap.Terms), n)
	case len(snap.PackageNames) != d:
		return fmt.Errorf("%w: have %v package names, expected %v", ErrSnapshotInvalid, len(snap.PackageNames), d)
	case len(snap.PackageRefs) != 0 && len(snap.PackageRefs) != d:
		return fmt.Errorf("%w: have %v package refs, expected %v", ErrSnapshotInvalid, len(snap.PackageRefs), d)
	case len(snap.GlobalWeights) != n:
		return fmt.Errorf("%w: have %v global weights, expected %v", ErrSnapshotInvalid, len(snap.GlobalWeights), n)
	case len(snap.WordFrequency) != n*d || len(snap.Tfidf) != n*d:
		return fmt.Errorf("%w: matrix sizes do not match %vx%v", ErrSnapshotInvalid, n, d)
	case len(snap.TermLoadings) != n*r || len(snap.SingularValues) != r || len(snap.DocumentLoadings) != r*d:
		return fmt.Errorf("%w: factor sizes do not match rank=%v", ErrSnapshotInvalid, r)
	}
	switch Projection(snap.Projection) {
	case ProjectTFIDF, ProjectWordFrequency:
	default:
		return fmt.Errorf("%w: unknown projection %v", ErrSnapshotInvalid, snap.Projection)
	}

	seen := make(map[string]struct{}, n)
	for _, term := range snap.Terms {
		if _, ok := seen[term]; ok {
			return fmt.Errorf("%w: duplicate term %q", ErrSnapshotInvalid, term)
		}
		seen[term] = struct{}{}
	}

	for name, values := range map[string][]float64{
		"global weights":    snap.GlobalWeights,
		"word frequency":    snap.WordFrequency,
		"tfidf":             snap.Tfidf,
		"term loadings":     snap.TermLoadings,
		"singular values":   snap.SingularValues,
		"document loadings": snap.DocumentLoadings,
	} {
		if i, ok := firstNonFinite(values); ok {
			return fmt.Errorf("%w: non-finite %v value %v at %v", ErrSnapshotInvalid, name, values[i], i)
		}
	}
	return nil
}

// firstNonFinite returns the index of the first NaN or infinite value.
func firstNonFinite(values []float64) (int, bool) {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i, true
		}
	}
	return 0, false
}

// flatten returns the row-major contents of m.
func flatten(m *mat.Dense) []float64 {
	r, _ := m.Dims()
	var data []float64
	for i := 0; i < r; i++ {
		data = append(data, m.RawRowView(i)...)
	}
	return data
}

func copyFloats(in []float64) []float64 {
	out := make([]float64, len(in))
	copy(out, in)
	return out
}
