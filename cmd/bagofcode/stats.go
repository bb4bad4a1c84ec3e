package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/foster/bag-of-code/db"
	"github.com/foster/bag-of-code/domain"
)

func newStatsCmd() *cobra.Command {
	statsCmd := &cobra.Command{
		Use:     "statistics",
		Aliases: []string{"stats", "stat", "st"},
		Short:   "Statistics information",
		Long:    "Statistics-related information",
	}

	statsCmd.AddCommand(
		newDBStatsCmd(),
		newTermsStatsCmd(),
	)

	return statsCmd
}

func newDBStatsCmd() *cobra.Command {
	dbStatsCmd := &cobra.Command{
		Use:   "db",
		Short: "DB table-entry counts",
		Long:  "Displays the number of entries in every table",
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			if err := db.WithClient(dbConfig(), func(dbClient *db.Client) error {
				counts, err := tableCounts(dbClient)
				if err != nil {
					return err
				}
				return emitJSON(counts)
			}); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}
	return dbStatsCmd
}

func newTermsStatsCmd() *cobra.Command {
	termsStatsCmd := &cobra.Command{
		Use:   "terms",
		Short: "Stored term totals",
		Long:  "Displays package, distinct term and token totals across every stored package record",
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			if err := db.WithClient(dbConfig(), func(dbClient *db.Client) error {
				stats, err := termStats(dbClient)
				if err != nil {
					return err
				}
				return emitJSON(stats)
			}); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}
	return termsStatsCmd
}

func tableCounts(dbClient *db.Client) (map[string]int, error) {
	counts := map[string]int{}
	for _, table := range db.Tables() {
		l, err := dbClient.Backend().Len(table)
		if err != nil {
			return nil, fmt.Errorf("getting len(%v): %s", table, err)
		}
		counts[table] = l
	}
	return counts, nil
}

type termsStats struct {
	Packages      int   `json:"packages"`
	EmptyPackages int   `json:"empty_packages"`
	Terms         int   `json:"terms"`
	Tokens        int64 `json:"tokens"`
}

func termStats(dbClient *db.Client) (*termsStats, error) {
	var (
		stats = &termsStats{}
		seen  = map[string]struct{}{}
	)
	if err := dbClient.EachPackage(func(rec *domain.PackageRecord) {
		stats.Packages++
		if rec.Len() == 0 {
			stats.EmptyPackages++
		}
		for _, term := range rec.Terms {
			seen[term] = struct{}{}
		}
		stats.Tokens += rec.Total()
	}); err != nil {
		return nil, err
	}
	stats.Terms = len(seen)
	return stats, nil
}
