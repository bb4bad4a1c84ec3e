package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/onrik/logrus/filename"
	"github.com/pkg/profile"
	metrics "github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/foster/bag-of-code/db"
)

var (
	DBDriver = db.DefaultDriver
	DBFile   = db.DefaultBoltFile
	Quiet    bool
	Verbose  bool

	MemoryProfiling bool
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bagofcode",
		Short: "Index JavaScript packages by the terms in their source code",
		Long:  "Tokenizes package source trees and fits a latent semantic term-space model over them",
	}

	rootCmd.PersistentFlags().BoolVarP(&Quiet, "quiet", "q", Quiet, "Activate quiet log output")
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", Verbose, "Activate verbose log output")
	rootCmd.PersistentFlags().StringVarP(&DBDriver, "driver", "D", DBDriver, "DB backend driver, can be \"bolt\" or \"postgres\"")
	rootCmd.PersistentFlags().StringVarP(&DBFile, "db", "b", DBFile, "Path to BoltDB file, or postgres connection string")
	rootCmd.PersistentFlags().BoolVarP(&MemoryProfiling, "memprofile", "", MemoryProfiling, "Enable the memory profiler; creates a mem.pprof file while the application is shutting down")

	rootCmd.AddCommand(
		newTokenizeCmd(),
		newCrawlCmd(),
		newDiscoverCmd(),
		newFitCmd(),
		newFoldCmd(),
		newModelsCmd(),
		newStatsCmd(),
		newPurgeCmd(),
		newGetCmd(),
	)

	return rootCmd
}

func main() {
	// Configuration file values become the flag defaults.
	if err := NewConfig().Do(); err != nil {
		log.Fatalf("main: loading configuration: %s", err)
	}

	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func initLogging() {
	level := log.InfoLevel
	if Verbose {
		log.AddHook(filename.NewHook())
		level = log.DebugLevel
	}
	if Quiet {
		level = log.ErrorLevel
	}
	log.SetLevel(level)
}

// dbConfig returns the DB configuration selected by the global flags.
func dbConfig() db.Config {
	cfg, err := db.NewConfig(DBDriver, DBFile)
	if err != nil {
		log.Fatalf("main: %s", err)
	}
	return cfg
}

// profiled runs fn under the memory profiler when it has been requested.
func profiled(fn func()) {
	if MemoryProfiling {
		log.Debug("Starting memory profiler")
		p := profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook)
		defer func() {
			log.Debug("Stopping memory profiler")
			p.Stop()
		}()
	}
	fn()
}

// dumpMetrics writes every registered metric to stderr in verbose runs.
func dumpMetrics() {
	if Verbose && !Quiet {
		metrics.WriteOnce(metrics.DefaultRegistry, os.Stderr)
	}
}

func emitJSON(x interface{}) error {
	bs, err := json.MarshalIndent(x, "", "    ")
	if err != nil {
		return err
	}
	fmt.Printf("%v\n", string(bs))
	return nil
}

func formatTime(ts time.Time) string {
	if ts.IsZero() || ts.UnixNano() == 0 {
		return ""
	}
	return ts.Format(time.RFC3339)
}
