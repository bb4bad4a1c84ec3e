package discovery

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"

	"github.com/foster/bag-of-code/domain"
)

var (
	// URL points to the npm explicit-installs listing.
	//
	// This information can be used as a kernel to bootstrap package
	// discovery.
	URL = "https://raw.githubusercontent.com/npm/npm-explicit-installs/master/data.json"

	InputFormat            = "json"
	UseXZFileDecompression = false
)

// Listing is the result of parsing a package listing.  Only entries with a
// GitHub source repository are kept.
type Listing struct {
	Packages []*domain.DiscoveredPackage
	Skipped  int // Entries without a GitHub repository.
}

// Entry corresponds with a single package object of an npm listing or
// registry document.
type Entry struct {
	Name       string     `json:"name"`
	Repository Repository `json:"repository"`
}

// Repository is the "repository" field of a package.json, which is either a
// bare URL string or an object with a "url" field.
type Repository struct {
	Type string `json:"type,omitempty"`
	URL  string `json:"url"`
}

func (repo *Repository) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &repo.URL)
	}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	type plain Repository
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*repo = Repository(p)
	return nil
}

// ParseListing parses either npm JSON or newline delimited plaintext,
// according to InputFormat.
func ParseListing(r io.Reader) (*Listing, error) {
	return ParseListingFormat(r, InputFormat)
}

// ParseListingFormat parses a listing in the named format.
func ParseListingFormat(r io.Reader, format string) (*Listing, error) {
	switch format {
	case "json", "j":
		return parseListingJSON(r)
	case "text", "txt", "t":
		return parseListingText(r)
	default:
		return nil, fmt.Errorf("unrecognized input format %q", format)
	}
}

// parseListingJSON parses an array of package objects, or a single registry
// document.
func parseListingJSON(r io.Reader) (*Listing, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)

	var entries []Entry
	if len(data) > 0 && data[0] == '{' {
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	} else if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	l := newListing()
	for _, entry := range entries {
		l.add(entry.Name, entry.Repository.URL)
	}
	return l, nil
}

// parseListingText parses newline delimited "name repository-url" pairs.
// Blank lines and lines starting with "#" are ignored.
func parseListingText(r io.Reader) (*Listing, error) {
	var (
		scanner = bufio.NewScanner(r)
		l       = newListing()
	)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			l.Skipped++
			continue
		}
		l.add(fields[0], fields[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return l, nil
}

func newListing() *Listing {
	l := &Listing{
		Packages: []*domain.DiscoveredPackage{},
	}
	return l
}

func (l *Listing) add(name string, url string) {
	repo, ok := domain.GitHubRepoFromURL(url)
	if name == "" || !ok {
		log.WithField("name", name).WithField("url", url).Debug("Skipping entry without a GitHub repository")
		l.Skipped++
		return
	}
	dp := domain.NewDiscoveredPackage(name, repo, "listing")
	dp.URL = url
	l.Packages = append(l.Packages, dp)
}

// OpenListing opens a listing file for reading, "-" meaning STDIN.  When
// UseXZFileDecompression is set the input is transparently decompressed.
func OpenListing(path string) (io.ReadCloser, error) {
	var f *os.File
	if path == "-" {
		f = os.Stdin
	} else {
		var err error
		if f, err = os.Open(path); err != nil {
			return nil, err
		}
	}

	if !UseXZFileDecompression {
		return f, nil
	}
	xr, err := xz.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("initializing xz reader: %s", err)
	}
	rc := &readCloser{
		Reader: xr,
		Closer: f,
	}
	return rc, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

// DownloadListing fetches and parses the listing at URL.
func DownloadListing() (*Listing, error) {
	log.WithField("url", URL).Info("Downloading package listing")
	resp, err := http.Get(URL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading listing: unexpected response status %v", resp.Status)
	}

	l, err := ParseListingFormat(resp.Body, "json")
	if err != nil {
		return nil, err
	}
	log.WithField("len", len(l.Packages)).WithField("skipped", l.Skipped).Info("Obtained package listing")
	return l, nil
}
