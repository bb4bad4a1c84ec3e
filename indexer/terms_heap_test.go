package indexer

import (
	"reflect"
	"testing"
)

func TestTermsHeap(t *testing.T) {
	th := NewTermsHeap(TermsByCount)
	for _, tc := range []TermCount{
		{Term: "a", Count: 2, Order: 0},
		{Term: "b", Count: 5, Order: 1},
		{Term: "c", Count: 2, Order: 2},
		{Term: "d", Count: 7, Order: 3},
	} {
		th.TermPush(tc)
	}
	var popped []string
	for {
		tc, ok := th.TermPop()
		if !ok {
			break
		}
		popped = append(popped, tc.Term)
	}
	if expected, actual := []string{"d", "b", "a", "c"}, popped; !reflect.DeepEqual(actual, expected) {
		t.Errorf("Expected pop order=%v but actual=%v", expected, actual)
	}
}

func TestSelectFeatures(t *testing.T) {
	var (
		terms  = []string{"a", "b", "c", "d"}
		counts = map[string]int{"a": 2, "b": 3, "c": 2, "d": 3}
	)
	testCases := []struct {
		k   int
		out []string
	}{
		{k: 0, out: []string{"a", "b", "c", "d"}},
		{k: -1, out: []string{"a", "b", "c", "d"}},
		{k: 1, out: []string{"b"}},
		{k: 2, out: []string{"b", "d"}},
		{k: 3, out: []string{"a", "b", "d"}},
		{k: 4, out: []string{"a", "b", "c", "d"}},
		{k: 10, out: []string{"a", "b", "c", "d"}},
	}
	for i, testCase := range testCases {
		if expected, actual := testCase.out, selectFeatures(terms, counts, testCase.k); !reflect.DeepEqual(actual, expected) {
			t.Errorf("[i=%v] Expected features=%v but actual=%v", i, expected, actual)
		}
	}
}

func TestFeatureLimitedFit(t *testing.T) {
	pkgs := []testPackage{
		{name: "x", tokens: []string{"a", "b", "b", "b", "c", "c"}},
		{name: "y", tokens: []string{"d", "d", "d", "a"}},
	}
	for _, k := range []int{1, 2, 3, 4, 9} {
		opts := NewFitOptions()
		opts.MaxFeatures = k
		c := newFittedCorpus(t, pkgs, opts)

		expected := k
		if expected > 4 {
			expected = 4
		}
		terms := c.TermIndices()
		if actual := len(terms); actual != expected {
			t.Errorf("[k=%v] Expected %v retained terms but actual=%v (%v)", k, expected, actual, terms)
		}
		weights, err := c.GlobalWeights()
		if err != nil {
			t.Fatal(err)
		}
		if actual := len(weights); actual != expected {
			t.Errorf("[k=%v] Expected %v weights but actual=%v", k, expected, actual)
		}
		tfidf, err := c.TFIDFMatrix()
		if err != nil {
			t.Fatal(err)
		}
		if r, _ := tfidf.Dims(); r != expected {
			t.Errorf("[k=%v] Expected %v tfidf rows but actual=%v", k, expected, r)
		}
		lsi, err := c.SVD()
		if err != nil {
			t.Fatal(err)
		}
		if rank := lsi.Rank(); rank != minInt(expected, 2) {
			t.Errorf("[k=%v] Expected rank=%v but actual=%v", k, minInt(expected, 2), rank)
		}
	}

	opts := NewFitOptions()
	opts.MaxFeatures = 3
	c := newFittedCorpus(t, pkgs, opts)
	if expected, actual := []string{"a", "b", "d"}, c.TermIndices(); !reflect.DeepEqual(actual, expected) {
		t.Errorf("Expected retained terms=%v but actual=%v", expected, actual)
	}
	if expected, actual := 4, c.NumTerms(); actual != expected {
		t.Errorf("Expected full vocabulary size=%v but actual=%v", expected, actual)
	}
}

func minInt(a int, b int) int {
	if a < b {
		return a
	}
	return b
}
