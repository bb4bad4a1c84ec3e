package indexer

import (
	"github.com/rcrowley/go-metrics"
)

var (
	FitTimer       = metrics.NewRegisteredTimer("indexer.fit", nil)
	WeightsTimer   = metrics.NewRegisteredTimer("indexer.weights", nil)
	FactorizeTimer = metrics.NewRegisteredTimer("indexer.factorize", nil)
	FoldTimer      = metrics.NewRegisteredTimer("indexer.fold", nil)
	DocumentTerms  = metrics.NewRegisteredHistogram("indexer.document_terms", nil, metrics.NewUniformSample(512))
)
