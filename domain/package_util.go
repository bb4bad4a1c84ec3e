package domain

import (
	"regexp"
	"strings"
)

var gitHubURLExpr = regexp.MustCompile(`github\.com[/:](\S+?/\S+?)\.git`)

// GitHubRepoFromURL extracts the "owner/repo" short name from a GitHub clone
// URL such as "git+https://github.com/owner/repo.git".  Returns false when the
// URL does not point at a GitHub repository.
func GitHubRepoFromURL(url string) (string, bool) {
	url = strings.TrimSpace(url)
	if len(url) == 0 {
		return "", false
	}
	match := gitHubURLExpr.FindStringSubmatch(url)
	if match == nil {
		return "", false
	}
	return match[1], true
}
