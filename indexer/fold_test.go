package indexer

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestFoldTFIDFReproducesTrainingColumn(t *testing.T) {
	c := newFittedCorpus(t, scenarioPackages, nil)
	tfidf, err := c.TFIDFMatrix()
	if err != nil {
		t.Fatal(err)
	}
	for j, doc := range c.Documents() {
		vec, err := c.FoldTFIDF(doc.TermCounts())
		if err != nil {
			t.Fatal(err)
		}
		for i := range vec {
			if expected, actual := tfidf.At(i, j), vec[i]; actual != expected {
				t.Errorf("[doc=%v] Expected folded tfidf[%v]=%v but actual=%v", doc.Name(), i, expected, actual)
			}
		}
	}
}

func TestFoldWordFrequency(t *testing.T) {
	c := newFittedCorpus(t, scenarioPackages, nil)
	vec, err := c.FoldWordFrequency(map[string]int{"baz": 4, "foo": 1, "unseen": 9, "bar": 0, "neg": -3})
	if err != nil {
		t.Fatal(err)
	}
	expected := []float64{1, 0, 4}
	if len(vec) != len(expected) {
		t.Fatalf("Expected len=%v but actual=%v", len(expected), len(vec))
	}
	for i := range expected {
		if vec[i] != expected[i] {
			t.Errorf("Expected vec[%v]=%v but actual=%v", i, expected[i], vec[i])
		}
	}
}

func TestFoldSVDReproducesDocumentVector(t *testing.T) {
	c := newFittedCorpus(t, scenarioPackages, nil)
	lsi, err := c.SVD()
	if err != nil {
		t.Fatal(err)
	}
	if expected, actual := 2, lsi.Rank(); actual != expected {
		t.Fatalf("Expected rank=%v but actual=%v", expected, actual)
	}
	sigma := lsi.SingularValues()
	if sigma[0] < sigma[1] {
		t.Errorf("Expected descending singular values but actual=%v", sigma)
	}

	for j, doc := range c.Documents() {
		folded, err := c.FoldSVD(doc.TermCounts())
		if err != nil {
			t.Fatal(err)
		}
		expected := lsi.DocumentVector(j)
		for k := range expected {
			if !almostEqual(folded[k], expected[k]) {
				t.Errorf("[doc=%v] Expected latent[%v]=%v but actual=%v", doc.Name(), k, expected[k], folded[k])
			}
		}
	}
}

func TestFoldSVDReconstruction(t *testing.T) {
	c := newFittedCorpus(t, scenarioPackages, nil)
	lsi, err := c.SVD()
	if err != nil {
		t.Fatal(err)
	}
	tfidf, err := c.TFIDFMatrix()
	if err != nil {
		t.Fatal(err)
	}

	var (
		ts    mat.Dense
		recon mat.Dense
	)
	ts.Mul(lsi.TermLoadings(), mat.NewDiagDense(lsi.Rank(), lsi.SingularValues()))
	recon.Mul(&ts, lsi.DocumentLoadings())

	r, cols := tfidf.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < cols; j++ {
			if !almostEqual(recon.At(i, j), tfidf.At(i, j)) {
				t.Errorf("Expected T*S*Dt[%v][%v]=%v but actual=%v", i, j, tfidf.At(i, j), recon.At(i, j))
			}
		}
	}
}

func TestFoldSVDOutOfVocabulary(t *testing.T) {
	c := newFittedCorpus(t, scenarioPackages, nil)
	vec, err := c.FoldSVD(map[string]int{"nope": 3, "nada": 1})
	if err != nil {
		t.Fatal(err)
	}
	if expected, actual := 2, len(vec); actual != expected {
		t.Fatalf("Expected len=%v but actual=%v", expected, actual)
	}
	for k, v := range vec {
		if v != 0 {
			t.Errorf("Expected latent[%v]=0 for an all-OOV document but actual=%v", k, v)
		}
	}
}

func TestFoldSingularFactorization(t *testing.T) {
	lsi := newLSIModel(
		mat.NewDense(2, 2, []float64{1, 0, 0, 1}),
		[]float64{1, 0},
		mat.NewDense(2, 2, []float64{1, 0, 0, 1}),
	)
	if _, err := lsi.fold([]float64{1, 1}); err != ErrSingularFactorization {
		t.Errorf("Expected err=%v but actual=%v", ErrSingularFactorization, err)
	}

	// Every term appears evenly in every document, so every weight and every
	// singular value is zero.
	c := newFittedCorpus(t, []testPackage{
		{name: "left", tokens: []string{"same"}},
		{name: "right", tokens: []string{"same"}},
	}, nil)
	if _, err := c.FoldSVD(map[string]int{"same": 1}); !IsDomainError(err) {
		t.Errorf("Expected a domain error folding into a degenerate latent space but actual=%v", err)
	}
}

func TestProjectionPaths(t *testing.T) {
	opts := NewFitOptions()
	opts.Projection = ProjectWordFrequency
	c := newFittedCorpus(t, scenarioPackages, opts)

	if _, err := c.SVD(); err != ErrProjectionMismatch {
		t.Errorf("Expected err=%v but actual=%v", ErrProjectionMismatch, err)
	}
	if _, err := c.FoldSVD(map[string]int{"foo": 1}); err != ErrProjectionMismatch {
		t.Errorf("Expected err=%v but actual=%v", ErrProjectionMismatch, err)
	}

	lsi, err := c.SVDWordFrequency()
	if err != nil {
		t.Fatal(err)
	}
	for j, doc := range c.Documents() {
		folded, err := c.FoldSVDWordFrequency(doc.TermCounts())
		if err != nil {
			t.Fatal(err)
		}
		expected := lsi.DocumentVector(j)
		for k := range expected {
			if !almostEqual(folded[k], expected[k]) {
				t.Errorf("[doc=%v] Expected latent[%v]=%v but actual=%v", doc.Name(), k, expected[k], folded[k])
			}
		}
	}

	m, err := c.Model()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.FoldSVD(map[string]int{"foo": 1}); err != ErrProjectionMismatch {
		t.Errorf("Expected model err=%v but actual=%v", ErrProjectionMismatch, err)
	}
	if _, err := m.FoldLatent(map[string]int{"foo": 1}); err != nil {
		t.Errorf("Expected FoldLatent to follow the fitted projection but err=%v", err)
	}

	tc := newFittedCorpus(t, scenarioPackages, nil)
	if _, err := tc.SVDWordFrequency(); err != ErrProjectionMismatch {
		t.Errorf("Expected err=%v but actual=%v", ErrProjectionMismatch, err)
	}
}
