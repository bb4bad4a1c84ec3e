package indexer

import (
	"math"
	"testing"
)

func TestWordFrequencyMatrixScenario(t *testing.T) {
	c := newFittedCorpus(t, scenarioPackages, nil)
	wfm, err := c.WordFrequencyMatrix()
	if err != nil {
		t.Fatal(err)
	}

	r, cols := wfm.Dims()
	if r != 3 || cols != 2 {
		t.Fatalf("Expected dims=3x2 but actual=%vx%v", r, cols)
	}

	expected := [][]float64{
		{3, 1}, // foo
		{1, 0}, // bar
		{0, 2}, // baz
	}
	for i := range expected {
		for j := range expected[i] {
			if actual := wfm.At(i, j); actual != expected[i][j] {
				t.Errorf("Expected wfm[%v][%v]=%v but actual=%v", i, j, expected[i][j], actual)
			}
		}
	}
}

func TestWordFrequencyMatrixMatchesLocalCounts(t *testing.T) {
	pkgs := []testPackage{
		{name: "x", tokens: []string{"a", "b", "a", "c"}},
		{name: "y", tokens: []string{"c", "c", "d"}},
		{name: "z", tokens: []string{"a", "d", "e", "a"}},
	}
	c := newFittedCorpus(t, pkgs, nil)
	wfm, err := c.WordFrequencyMatrix()
	if err != nil {
		t.Fatal(err)
	}
	terms := c.TermIndices()
	for j, doc := range c.Documents() {
		for i, term := range terms {
			if expected, actual := float64(doc.Count(term)), wfm.At(i, j); actual != expected {
				t.Errorf("Expected wfm[%v][%v] (%v in %v)=%v but actual=%v", i, j, term, doc.Name(), expected, actual)
			}
		}
	}
}

func TestTFIDFMatrixCells(t *testing.T) {
	pkgs := []testPackage{
		{name: "x", tokens: []string{"a", "b", "a", "c"}},
		{name: "y", tokens: []string{"c", "c", "d"}},
		{name: "z", tokens: []string{"a", "d", "e", "a"}},
	}
	c := newFittedCorpus(t, pkgs, nil)
	weights, err := c.GlobalWeights()
	if err != nil {
		t.Fatal(err)
	}
	wfm, err := c.WordFrequencyMatrix()
	if err != nil {
		t.Fatal(err)
	}
	tfidf, err := c.TFIDFMatrix()
	if err != nil {
		t.Fatal(err)
	}
	r, cols := tfidf.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < cols; j++ {
			if expected, actual := weights[i]*math.Log2(wfm.At(i, j)+1), tfidf.At(i, j); actual != expected {
				t.Errorf("Expected tfidf[%v][%v]=%v but actual=%v", i, j, expected, actual)
			}
		}
	}
}

func TestMatrixAccessorsReturnCopies(t *testing.T) {
	c := newFittedCorpus(t, scenarioPackages, nil)
	wfm, err := c.WordFrequencyMatrix()
	if err != nil {
		t.Fatal(err)
	}
	wfm.Set(0, 0, 42)
	again, err := c.WordFrequencyMatrix()
	if err != nil {
		t.Fatal(err)
	}
	if expected, actual := 3.0, again.At(0, 0); actual != expected {
		t.Errorf("Expected cached wfm[0][0]=%v to be unaffected but actual=%v", expected, actual)
	}
}
