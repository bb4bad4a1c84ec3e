package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/foster/bag-of-code/db"
	"github.com/foster/bag-of-code/domain"
	"github.com/foster/bag-of-code/tokenizer"
)

var (
	PackageRef          string
	TokenizerExtensions = tokenizer.DefaultExtensions
	CrawlConcurrency    = runtime.NumCPU()
)

func newTokenizeCmd() *cobra.Command {
	tokenizeCmd := &cobra.Command{
		Use:   "tokenize [name] [dir]",
		Short: "Tokenize a checked-out package",
		Long:  "Tokenizes the library sources of the package checked out at dir and saves its term counts under name",
		Args:  cobra.ExactArgs(2),
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			profiled(func() {
				if err := db.WithClient(dbConfig(), func(dbClient *db.Client) error {
					rec, err := tokenizePackage(args[0], PackageRef, args[1])
					if err != nil {
						return err
					}
					if err := dbClient.PackageSave(rec); err != nil {
						return err
					}
					log.WithField("package", rec.Name).WithField("terms", rec.Len()).WithField("tokens", rec.Total()).Info("Saved package")
					return nil
				}); err != nil {
					log.Fatalf("main: %s", err)
				}
			})
		},
	}

	tokenizeCmd.Flags().StringVarP(&PackageRef, "ref", "r", "", "External reference to store with the package, e.g. its repository URL")
	addTokenizerFlags(tokenizeCmd)

	return tokenizeCmd
}

func newCrawlCmd() *cobra.Command {
	crawlCmd := &cobra.Command{
		Use:   "crawl [cache-dir]",
		Short: "Tokenize every discovered package",
		Long:  "Tokenizes each discovered package which has been checked out to cache-dir/<name>, skipping those which are missing",
		Args:  cobra.ExactArgs(1),
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			profiled(func() {
				if err := db.WithClient(dbConfig(), func(dbClient *db.Client) error {
					return crawl(dbClient, args[0])
				}); err != nil {
					log.Fatalf("main: %s", err)
				}
				dumpMetrics()
			})
		},
	}

	crawlCmd.Flags().IntVarP(&CrawlConcurrency, "concurrency", "c", CrawlConcurrency, "Number of packages to tokenize concurrently")
	addTokenizerFlags(crawlCmd)

	return crawlCmd
}

func addTokenizerFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&TokenizerExtensions, "extensions", "e", TokenizerExtensions, "Source file name suffixes to tokenize")
}

func newTokenizer() *tokenizer.Tokenizer {
	cfg := tokenizer.NewConfig()
	cfg.Extensions = TokenizerExtensions
	return tokenizer.New(cfg)
}

func tokenizePackage(name string, ref string, dir string) (*domain.PackageRecord, error) {
	rec, err := newTokenizer().Record(name, ref, dir)
	if err == tokenizer.ErrNoManifest {
		log.WithField("dir", dir).Warn("No package.json found, package has no terms")
		return domain.NewPackageRecord(name, ref), nil
	}
	return rec, err
}

// crawl tokenizes every discovered package checked out under cacheDir with
// CrawlConcurrency workers.  The first tokenizer or DB error stops the crawl.
func crawl(dbClient *db.Client, cacheDir string) error {
	dps := []*domain.DiscoveredPackage{}
	if err := dbClient.EachDiscovered(func(dp *domain.DiscoveredPackage) {
		dps = append(dps, dp)
	}); err != nil {
		return err
	}

	var (
		saved   int64
		missing int64
		ch      = make(chan *domain.DiscoveredPackage)
		workers = CrawlConcurrency
	)
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		defer close(ch)
		for _, dp := range dps {
			select {
			case ch <- dp:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	})

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for dp := range ch {
				dir := filepath.Join(cacheDir, dp.Name)
				if _, err := os.Stat(dir); err != nil {
					log.WithField("package", dp.Name).WithField("dir", dir).Debug("Not checked out, skipping")
					atomic.AddInt64(&missing, 1)
					continue
				}
				rec, err := tokenizePackage(dp.Name, dp.RepoURL(), dir)
				if err != nil {
					return fmt.Errorf("tokenizing %v: %s", dp.Name, err)
				}
				if err := dbClient.PackageSave(rec); err != nil {
					return err
				}
				atomic.AddInt64(&saved, 1)
				log.WithField("package", rec.Name).WithField("terms", rec.Len()).Debug("Saved package")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.WithField("saved", saved).WithField("missing", missing).Info("Crawl completed")
	return nil
}
