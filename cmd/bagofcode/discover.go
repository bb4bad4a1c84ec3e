package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/foster/bag-of-code/db"
	"github.com/foster/bag-of-code/discovery"
)

var (
	DiscoverSave      bool
	DiscoverLanguages bool
	GitHubUser        = ""
	GitHubToken       = ""
)

func newDiscoverCmd() *cobra.Command {
	discoverCmd := &cobra.Command{
		Use:   "discover [listing-file]",
		Short: "Discover packages with GitHub repositories",
		Long:  "Parses a package listing (\"-\" for STDIN, or downloaded when omitted) and emits the packages backed by a GitHub repository",
		Args:  cobra.MaximumNArgs(1),
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			file := ""
			if len(args) > 0 {
				file = args[0]
			}
			if !DiscoverSave && !DiscoverLanguages {
				if err := discover(file); err != nil {
					log.Fatalf("main: %s", err)
				}
				return
			}
			if err := db.WithClient(dbConfig(), func(dbClient *db.Client) error {
				cfg := &discovery.BootstrapConfig{
					ListingInputFile: file,
				}
				if DiscoverLanguages {
					cfg.GitHub = discovery.NewGitHubClient(GitHubUser, GitHubToken)
				}
				res, err := discovery.Bootstrap(dbClient, cfg)
				if err != nil {
					return err
				}
				return emitJSON(res)
			}); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}

	discoverCmd.Flags().StringVarP(&discovery.InputFormat, "format", "f", discovery.InputFormat, "Input format, can be \"json\" or \"text\"")
	discoverCmd.Flags().BoolVarP(&discovery.UseXZFileDecompression, "xz", "x", discovery.UseXZFileDecompression, "Activate XZ decompression when reading file-based input (including STDIN)")
	discoverCmd.Flags().BoolVarP(&DiscoverSave, "save", "s", DiscoverSave, "Record discovered packages in the DB")
	discoverCmd.Flags().BoolVarP(&DiscoverLanguages, "languages", "l", DiscoverLanguages, "Only keep packages whose GitHub repository is mostly JavaScript (implies --save)")
	discoverCmd.Flags().IntVarP(&discovery.AddBatchSize, "batch-size", "B", discovery.AddBatchSize, "Batch size when recording discovered packages")
	discoverCmd.Flags().StringVarP(&GitHubUser, "github-user", "", GitHubUser, "GitHub API username")
	discoverCmd.Flags().StringVarP(&GitHubToken, "github-token", "", GitHubToken, "GitHub API token")

	return discoverCmd
}

type discoveredOutput struct {
	Name string `json:"name"`
	Repo string `json:"repo"`
}

func discover(file string) error {
	var (
		l   *discovery.Listing
		err error
	)
	if file == "" {
		l, err = discovery.DownloadListing()
	} else {
		rc, openErr := discovery.OpenListing(file)
		if openErr != nil {
			return openErr
		}
		defer rc.Close()
		l, err = discovery.ParseListing(rc)
	}
	if err != nil {
		return err
	}

	out := make([]discoveredOutput, 0, len(l.Packages))
	for _, dp := range l.Packages {
		out = append(out, discoveredOutput{Name: dp.Name, Repo: dp.Repo})
	}
	log.WithField("packages", len(out)).WithField("skipped", l.Skipped).Debug("Parsed listing")
	return emitJSON(out)
}
