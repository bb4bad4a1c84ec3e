package indexer

import (
	"container/heap"
)

// TermCount is a vocabulary entry ranked for feature selection.
type TermCount struct {
	Term  string
	Count int // Global occurrence count.
	Order int // First-registration position.
}

// TermsHeap facilitates building prioritized / sorted collections of terms.
type TermsHeap struct {
	Terms    []TermCount
	LessFunc TermsLessFunc
}

// TermsLessFunc TermCount comparison function type.
type TermsLessFunc func(a, b TermCount) bool

func NewTermsHeap(lessFn TermsLessFunc) *TermsHeap {
	th := &TermsHeap{
		Terms:    []TermCount{},
		LessFunc: lessFn,
	}
	heap.Init(th)

	return th
}

func (th TermsHeap) Len() int           { return len(th.Terms) }
func (th TermsHeap) Less(i, j int) bool { return th.LessFunc(th.Terms[i], th.Terms[j]) }
func (th TermsHeap) Swap(i, j int)      { th.Terms[i], th.Terms[j] = th.Terms[j], th.Terms[i] }

func (th *TermsHeap) Push(x interface{}) {
	th.Terms = append(th.Terms, x.(TermCount))
}
func (th *TermsHeap) TermPush(tc TermCount) {
	heap.Push(th, tc)
}

func (th *TermsHeap) Pop() interface{} {
	old := th.Terms
	n := len(old)
	x := old[n-1]
	th.Terms = old[0 : n-1]
	return x
}
func (th *TermsHeap) TermPop() (TermCount, bool) {
	if len(th.Terms) == 0 {
		return TermCount{}, false
	}
	return heap.Pop(th).(TermCount), true
}

// TermsByCount ranks higher global counts first, breaking ties by earlier
// registration.
var TermsByCount = func(a, b TermCount) bool {
	if a.Count != b.Count {
		return a.Count > b.Count
	}
	return a.Order < b.Order
}

// selectFeatures narrows terms to the top k by global count, ties broken by
// first registration.  The survivors keep their registration order.  k <= 0
// or k >= len(terms) keeps everything.
func selectFeatures(terms []string, counts map[string]int, k int) []string {
	if k <= 0 || k >= len(terms) {
		kept := make([]string, len(terms))
		copy(kept, terms)
		return kept
	}

	th := NewTermsHeap(TermsByCount)
	for i, term := range terms {
		th.TermPush(TermCount{Term: term, Count: counts[term], Order: i})
	}

	keep := make([]bool, len(terms))
	for n := 0; n < k; n++ {
		tc, _ := th.TermPop()
		keep[tc.Order] = true
	}

	kept := make([]string, 0, k)
	for i, term := range terms {
		if keep[i] {
			kept = append(kept, term)
		}
	}
	return kept
}
