package discovery

import (
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/foster/bag-of-code/db"
	"github.com/foster/bag-of-code/domain"
)

var (
	AddBatchSize = 2500
)

type BootstrapConfig struct {
	ListingInputFile string        // Optional, may be set to "-" to read from STDIN.
	GitHub           *GitHubClient // Optional, when set only JavaScript repositories are kept.
}

// BootstrapResult summarizes a bootstrap run.
type BootstrapResult struct {
	Listed    int // Packages with a GitHub repository in the listing.
	Skipped   int // Listing entries without a GitHub repository.
	NotJS     int // Packages dropped for not being JavaScript repositories.
	Attempted int // Packages offered to the DB.
	New       int // Packages which had not been discovered before.
}

// Bootstrap reads a package listing, keeps the packages backed by a
// (JavaScript) GitHub repository and records them as discovered.
func Bootstrap(dbClient *db.Client, config *BootstrapConfig) (*BootstrapResult, error) {
	var (
		l   *Listing
		err error
	)

	// Obtain packages listing.

	if config.ListingInputFile != "" {
		var rc io.ReadCloser
		if rc, err = OpenListing(config.ListingInputFile); err != nil {
			return nil, err
		}
		defer rc.Close()
		l, err = ParseListing(rc)
	} else {
		l, err = DownloadListing()
	}
	if err != nil {
		return nil, err
	}

	res := &BootstrapResult{
		Listed:  len(l.Packages),
		Skipped: l.Skipped,
	}

	// Save to DB.

	batch := make([]*domain.DiscoveredPackage, 0, AddBatchSize)

	doBatch := func() error {
		n, err := dbClient.DiscoveredAdd(batch...)
		if err != nil {
			return err
		}
		res.New += n
		res.Attempted += len(batch)
		log.WithField("this-batch", len(batch)).WithField("total-attempted", res.Attempted).WithField("total-new", res.New).Debug("Added batch of discovered packages to DB")
		batch = make([]*domain.DiscoveredPackage, 0, AddBatchSize)
		return nil
	}

	for _, dp := range l.Packages {
		if config.GitHub != nil {
			langs, err := CachedLanguages(dbClient, config.GitHub, dp.Repo)
			if err != nil {
				return res, err
			}
			if !IsJavaScript(langs) {
				log.WithField("repo", dp.Repo).WithField("javascript", JavaScriptShare(langs)).Debug("Skipping non-JavaScript repository")
				res.NotJS++
				continue
			}
		}

		batch = append(batch, dp)

		if len(batch) == AddBatchSize {
			if err = doBatch(); err != nil {
				return res, err
			}
		}
	}
	if len(batch) > 0 {
		if err = doBatch(); err != nil {
			return res, err
		}
	}

	return res, nil
}

// CachedLanguages returns the language breakdown of repo, consulting the DB
// cache before the GitHub API.  Missing repositories are cached as such and
// yield a nil breakdown.
func CachedLanguages(dbClient *db.Client, gc *GitHubClient, repo string) (map[string]int64, error) {
	rl, err := dbClient.Languages(repo)
	if err == nil {
		return rl.Map(), nil
	} else if err != db.ErrKeyNotFound {
		return nil, err
	}

	langs, err := gc.Languages(repo)
	if err == ErrRepoNotFound {
		log.WithField("repo", repo).Info("Not found")
		langs, err = nil, nil
	}
	if err != nil {
		return nil, err
	}
	if langs != nil {
		langs = WithoutIgnored(langs)
	}
	if err := dbClient.LanguagesSave(domain.NewRepoLanguages(repo, langs)); err != nil {
		return nil, err
	}
	return langs, nil
}
