package discovery

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
	log "github.com/sirupsen/logrus"
)

var (
	DefaultGitHubAPIURL = "https://api.github.com"

	ErrRepoNotFound = errors.New("github repository not found")
	ErrRateLimited  = errors.New("github rate limit exceeded, are you authenticated?")
)

// GitHubClient looks up repository language breakdowns through the GitHub
// REST API.
type GitHubClient struct {
	BaseURL    string
	User       string
	Token      string
	HTTPClient *http.Client
	NewBackOff func() backoff.BackOff // Governs retries of transient failures.
}

func NewGitHubClient(user string, token string) *GitHubClient {
	gc := &GitHubClient{
		BaseURL:    DefaultGitHubAPIURL,
		User:       user,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		NewBackOff: newBackoff,
	}
	return gc
}

func newBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxElapsedTime = 30 * time.Second
	b.MaxInterval = 5 * time.Second
	b.Multiplier = 1.5
	b.RandomizationFactor = 0.5
	return b
}

// Languages returns the language -> bytes breakdown of repo ("owner/name").
// Server errors and network failures are retried; a missing repository
// returns ErrRepoNotFound and an exhausted rate limit ErrRateLimited.
func (gc *GitHubClient) Languages(repo string) (map[string]int64, error) {
	b := gc.NewBackOff()
	for {
		langs, retry, err := gc.languages(repo)
		if err == nil || !retry {
			return langs, err
		}
		d := b.NextBackOff()
		if d == backoff.Stop {
			return nil, err
		}
		log.WithField("repo", repo).Errorf("Problem looking up languages: %s; waiting for %s before retrying", err, d)
		time.Sleep(d)
	}
}

func (gc *GitHubClient) languages(repo string) (langs map[string]int64, retry bool, err error) {
	req, err := http.NewRequest("GET", fmt.Sprintf("%v/repos/%v/languages", gc.BaseURL, repo), nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if gc.User != "" && gc.Token != "" {
		req.SetBasicAuth(gc.User, gc.Token)
	}

	resp, err := gc.HTTPClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, ErrRepoNotFound
	case resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return nil, false, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("looking up languages of %v: unexpected response status %v", repo, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("looking up languages of %v: unexpected response status %v", repo, resp.Status)
	}

	if langs, err = ParseLanguages(resp.Body); err != nil {
		return nil, false, fmt.Errorf("parsing languages of %v: %s", repo, err)
	}
	return langs, false, nil
}
