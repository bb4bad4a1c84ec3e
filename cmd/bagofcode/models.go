package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/foster/bag-of-code/db"
)

func newModelsCmd() *cobra.Command {
	modelsCmd := &cobra.Command{
		Use:     "models",
		Aliases: []string{"model", "ls-models"},
		Short:   "Fitted models",
		Long:    "Lists a summary of every saved model",
		Args:    cobra.NoArgs,
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			if err := db.WithClient(dbConfig(), func(dbClient *db.Client) error {
				summaries, err := modelSummaries(dbClient)
				if err != nil {
					return err
				}
				return emitJSON(summaries)
			}); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}

	modelsCmd.AddCommand(newModelsDeleteCmd())

	return modelsCmd
}

func newModelsDeleteCmd() *cobra.Command {
	modelsDeleteCmd := &cobra.Command{
		Use:     "delete [name]...",
		Aliases: []string{"del", "rm"},
		Short:   "Delete saved models",
		Args:    cobra.MinimumNArgs(1),
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			if err := db.WithClient(dbConfig(), func(dbClient *db.Client) error {
				return dbClient.ModelDelete(args...)
			}); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}
	return modelsDeleteCmd
}

type modelsOutput struct {
	Latest string          `json:"latest,omitempty"`
	Models []*modelSummary `json:"models"`
}

func modelSummaries(dbClient *db.Client) (*modelsOutput, error) {
	out := &modelsOutput{
		Models: []*modelSummary{},
	}
	if err := dbClient.Meta(db.MetaLatestModel, &out.Latest); err != nil && err != db.ErrKeyNotFound {
		return nil, err
	}
	names, err := dbClient.ModelNames()
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		m, err := dbClient.Model(name)
		if err != nil {
			return nil, err
		}
		out.Models = append(out.Models, newModelSummary(name, m))
	}
	return out, nil
}
