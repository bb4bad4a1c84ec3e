package main

import (
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/foster/bag-of-code/db"
	"github.com/foster/bag-of-code/domain"
	"github.com/foster/bag-of-code/indexer"
)

var (
	ModelName      = "default"
	MaxFeatures    = indexer.DefaultMaxFeatures
	ProjectionName = indexer.DefaultProjection.String()
)

func newFitCmd() *cobra.Command {
	fitCmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a model over every stored package",
		Long:  "Builds a corpus from all tokenized packages, fits the latent semantic model and saves it",
		Args:  cobra.NoArgs,
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			profiled(func() {
				opts, err := fitOptions()
				if err != nil {
					log.Fatalf("main: %s", err)
				}
				if err := db.WithClient(dbConfig(), func(dbClient *db.Client) error {
					m, err := fit(dbClient, ModelName, opts)
					if err != nil {
						return err
					}
					return emitJSON(newModelSummary(ModelName, m))
				}); err != nil {
					log.Fatalf("main: %s", err)
				}
				dumpMetrics()
			})
		},
	}

	fitCmd.Flags().StringVarP(&ModelName, "model", "m", ModelName, "Name to save the fitted model under")
	fitCmd.Flags().IntVarP(&MaxFeatures, "max-features", "k", MaxFeatures, "Keep only the top-K terms by global count (0 keeps all)")
	fitCmd.Flags().StringVarP(&ProjectionName, "projection", "p", ProjectionName, "Matrix to fit the latent space from, can be \"tfidf\" or \"wfm\"")

	return fitCmd
}

func fitOptions() (*indexer.FitOptions, error) {
	p, err := indexer.ParseProjection(ProjectionName)
	if err != nil {
		return nil, err
	}
	opts := indexer.NewFitOptions()
	opts.MaxFeatures = MaxFeatures
	opts.Projection = p
	return opts, nil
}

// fit builds a corpus from every stored package record, fits it and saves
// the resulting model under name.
func fit(dbClient *db.Client, name string, opts *indexer.FitOptions) (*indexer.Model, error) {
	recs := []*domain.PackageRecord{}
	if err := dbClient.EachPackage(func(rec *domain.PackageRecord) {
		recs = append(recs, rec)
	}); err != nil {
		return nil, err
	}
	log.WithField("packages", len(recs)).Debug("Loaded package records")

	c, err := indexer.CorpusFromRecords(recs...)
	if err != nil {
		return nil, err
	}
	if err := c.Fit(opts); err != nil {
		return nil, err
	}
	m, err := c.Model()
	if err != nil {
		return nil, err
	}
	if err := dbClient.ModelSave(name, m); err != nil {
		return nil, err
	}
	n, d := m.Dims()
	log.WithField("model", name).WithField("terms", n).WithField("packages", d).Info("Saved model")
	return m, nil
}

type modelSummary struct {
	Name        string `json:"name"`
	Terms       int    `json:"terms"`
	Packages    int    `json:"packages"`
	Rank        int    `json:"rank"`
	Projection  string `json:"projection"`
	MaxFeatures int    `json:"max_features,omitempty"`
	FittedAt    string `json:"fitted_at,omitempty"`
}

func newModelSummary(name string, m *indexer.Model) *modelSummary {
	n, d := m.Dims()
	summary := &modelSummary{
		Name:        name,
		Terms:       n,
		Packages:    d,
		Rank:        m.Latent().Rank(),
		Projection:  m.Projection().String(),
		MaxFeatures: m.MaxFeatures(),
		FittedAt:    formatTime(m.FittedAt().In(time.UTC)),
	}
	return summary
}
