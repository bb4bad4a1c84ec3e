package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/foster/bag-of-code/db"
	"github.com/foster/bag-of-code/indexer"
)

var (
	FoldModelName = "" // Empty selects the latest fitted model.
	FoldKind      = "svd"
	FoldTop       = 10
)

func newFoldCmd() *cobra.Command {
	foldCmd := &cobra.Command{
		Use:   "fold [dir]",
		Short: "Fold a package into a fitted model",
		Long:  "Tokenizes the package checked out at dir and projects it into the term space of a fitted model; the \"svd\" kind also ranks the training packages by latent similarity",
		Args:  cobra.ExactArgs(1),
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			profiled(func() {
				if err := db.WithClient(dbConfig(), func(dbClient *db.Client) error {
					m, err := dbClient.Model(FoldModelName)
					if err != nil {
						return fmt.Errorf("loading model: %w", err)
					}
					rec, err := tokenizePackage(filepath.Base(args[0]), "", args[0])
					if err != nil {
						return err
					}
					res, err := fold(m, rec.TermCounts(), FoldKind, FoldTop)
					if err != nil {
						return err
					}
					return emitJSON(res)
				}); err != nil {
					log.Fatalf("main: %s", err)
				}
				dumpMetrics()
			})
		},
	}

	foldCmd.Flags().StringVarP(&FoldModelName, "model", "m", FoldModelName, "Model to fold into (defaults to the latest fitted model)")
	foldCmd.Flags().StringVarP(&FoldKind, "kind", "k", FoldKind, "Fold kind, can be \"wfm\", \"tfidf\" or \"svd\"")
	foldCmd.Flags().IntVarP(&FoldTop, "top", "n", FoldTop, "Number of most similar training packages to list for \"svd\" folds (0 lists all)")

	return foldCmd
}

type similarPackage struct {
	Name       string  `json:"name"`
	Ref        string  `json:"ref,omitempty"`
	Similarity float64 `json:"similarity"`
}

type foldResult struct {
	Kind    string            `json:"kind"`
	Terms   int               `json:"terms"`
	Known   int               `json:"known"`
	Vector  []float64         `json:"vector"`
	Similar []*similarPackage `json:"similar,omitempty"`
}

// fold projects counts into m according to kind.  Latent ("svd") folds go
// through whichever projection the model was fit with and are ranked
// against every training package.
func fold(m *indexer.Model, counts map[string]int, kind string, top int) (*foldResult, error) {
	res := &foldResult{
		Kind:  strings.ToLower(kind),
		Terms: len(counts),
	}
	for term, n := range counts {
		if _, ok := m.Weight(term); ok && n > 0 {
			res.Known++
		}
	}

	switch res.Kind {
	case "wfm", "word-frequency":
		res.Vector = m.FoldWordFrequency(counts)

	case "tfidf", "tf-idf":
		res.Vector = m.FoldTFIDF(counts)

	case "svd", "lsi", "latent":
		vec, err := m.FoldLatent(counts)
		if err != nil {
			return nil, err
		}
		res.Vector = vec
		res.Similar = similarPackages(m, vec, top)

	default:
		return nil, fmt.Errorf("unrecognized fold kind %q", kind)
	}
	return res, nil
}

// similarPackages ranks the training packages of m by cosine similarity to
// the latent vector vec, most similar first.
func similarPackages(m *indexer.Model, vec []float64, top int) []*similarPackage {
	var (
		lsi   = m.Latent()
		names = m.PackageNames()
		refs  = m.PackageRefs()
		sims  = make([]*similarPackage, 0, len(names))
	)
	for j, name := range names {
		sims = append(sims, &similarPackage{
			Name:       name,
			Ref:        refs[j],
			Similarity: indexer.Cosine(vec, lsi.DocumentVector(j)),
		})
	}
	sort.SliceStable(sims, func(i, j int) bool {
		return sims[i].Similarity > sims[j].Similarity
	})
	if top > 0 && top < len(sims) {
		sims = sims[:top]
	}
	return sims
}
