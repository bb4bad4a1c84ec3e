// Package tokenizer turns a checked-out CommonJS package into a stream of
// source code terms.
package tokenizer

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/shlex"
	metrics "github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"

	"github.com/foster/bag-of-code/domain"
)

var (
	DefaultManifest   = "package.json"
	DefaultExtensions = []string{".js"}

	// DefaultForbiddenDirs are matched as substrings of each directory path
	// relative to the package root, so "/test" also excludes "/testing".
	DefaultForbiddenDirs = []string{
		"/.git",
		"/docs",
		"/benchmark",
		"/benchmarks",
		"/i18n",
		"/images",
		"/test",
		"/tests",
		"/examples",
		"/tutorials",
		"/vendor",
		"/node_modules",
	}

	ErrNoManifest = errors.New("no package manifest found")
)

var (
	FilesCounter   = metrics.NewRegisteredCounter("tokenizer.files", nil)
	SkippedCounter = metrics.NewRegisteredCounter("tokenizer.files.abandoned", nil)
	TokensCounter  = metrics.NewRegisteredCounter("tokenizer.tokens", nil)
)

type Config struct {
	Manifest      string   // Name of the manifest file at the package root.
	Extensions    []string // Only files with one of these suffixes are read.
	ForbiddenDirs []string // Directories whose path contains any of these are skipped.
}

func NewConfig() *Config {
	cfg := &Config{
		Manifest:      DefaultManifest,
		Extensions:    append([]string{}, DefaultExtensions...),
		ForbiddenDirs: append([]string{}, DefaultForbiddenDirs...),
	}
	return cfg
}

type Tokenizer struct {
	Config *Config
}

// TokenFunc receives each token in source order.  Returning an error aborts
// tokenization.
type TokenFunc func(token string) error

// New creates and returns a new tokenizer with the supplied configuration.
func New(cfg *Config) *Tokenizer {
	if cfg == nil {
		cfg = NewConfig()
	}
	tz := &Tokenizer{
		Config: cfg,
	}
	return tz
}

// Tokenize walks the library directory of the package checked out at dir and
// invokes fn for every token found.
//
// A dir without a manifest yields no tokens and returns ErrNoManifest.  A line
// which can't be split (unbalanced quotes, invalid UTF-8) abandons the rest of
// that file only.
func (tz *Tokenizer) Tokenize(dir string, fn TokenFunc) error {
	libPath, err := tz.LibPath(dir)
	if err != nil {
		return err
	}

	files, err := tz.Files(libPath)
	if err != nil {
		return err
	}
	log.WithField("dir", dir).WithField("lib", libPath).WithField("files", len(files)).Debug("Tokenizing package")

	for _, file := range files {
		if err := tz.tokenizeFile(file, fn); err != nil {
			return err
		}
	}
	return nil
}

// Record tokenizes the package at dir into a PackageRecord.
func (tz *Tokenizer) Record(name string, ref string, dir string) (*domain.PackageRecord, error) {
	rb := domain.NewRecordBuilder(name, ref)
	if err := tz.Tokenize(dir, func(token string) error {
		rb.Add(token)
		return nil
	}); err != nil {
		return nil, err
	}
	rec := rb.Record()
	rec.TokenizedAt = time.Now().UnixNano()
	return rec, nil
}

// LibPath returns the directory holding the package's library sources: the
// manifest's directories.lib when set, otherwise dir itself.
func (tz *Tokenizer) LibPath(dir string) (string, error) {
	manifestPath := filepath.Join(dir, tz.Config.Manifest)
	info, err := os.Stat(manifestPath)
	if err != nil || info.IsDir() {
		return "", ErrNoManifest
	}

	data, err := ioutil.ReadFile(manifestPath)
	if err != nil {
		return "", fmt.Errorf("reading %v: %s", manifestPath, err)
	}
	libDir, err := manifestLibDir(data)
	if err != nil {
		return "", fmt.Errorf("parsing %v: %s", manifestPath, err)
	}
	if libDir == "" {
		return dir, nil
	}
	return filepath.Join(dir, filepath.FromSlash(libDir)), nil
}

// manifestLibDir extracts directories.lib from a package.json, stripping a
// leading "./".
func manifestLibDir(data []byte) (string, error) {
	var manifest struct {
		Directories map[string]interface{} `json:"directories"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return "", err
	}
	libDir, _ := manifest.Directories["lib"].(string)
	libDir = strings.TrimPrefix(libDir, "./")
	return libDir, nil
}

// Files lists the candidate source files under root in lexical order.
// Symbolic links are never followed nor read.  A missing root has no files.
func (tz *Tokenizer) Files(root string) ([]string, error) {
	files := []string{}
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if p == root && os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}
		if info.IsDir() {
			if p != root && tz.forbidden(root, p) {
				return filepath.SkipDir
			}
			return nil
		}
		if tz.wanted(info.Name()) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (tz *Tokenizer) forbidden(root string, dir string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	rel = "/" + filepath.ToSlash(rel)
	for _, f := range tz.Config.ForbiddenDirs {
		if strings.Contains(rel, f) {
			return true
		}
	}
	return false
}

func (tz *Tokenizer) wanted(name string) bool {
	for _, ext := range tz.Config.Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func (tz *Tokenizer) tokenizeFile(path string, fn TokenFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %v: %s", path, err)
	}
	defer f.Close()

	FilesCounter.Inc(1)

	r := bufio.NewReader(f)
	for lineNo := 1; ; lineNo++ {
		line, readErr := r.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return fmt.Errorf("reading %v: %s", path, readErr)
		}
		if len(line) > 0 {
			tokens, err := splitLine(line)
			if err != nil {
				log.WithField("file", path).WithField("line", lineNo).Debugf("Abandoning rest of file: %s", err)
				SkippedCounter.Inc(1)
				return nil
			}
			for _, token := range tokens {
				if err := fn(token); err != nil {
					return err
				}
			}
			TokensCounter.Inc(int64(len(tokens)))
		}
		if readErr == io.EOF {
			return nil
		}
	}
}

// splitLine splits a line of source shell-style, discarding "#" comments.
func splitLine(line string) ([]string, error) {
	if !utf8.ValidString(line) {
		return nil, errors.New("invalid UTF-8")
	}
	return shlex.Split(stripComment(line))
}

// stripComment cuts line at the first unquoted, unescaped "#".  A "#" inside
// a word ends the word too, so "a#b" keeps only "a".
func stripComment(line string) string {
	var (
		quote   rune
		escaped bool
	)
	for i, r := range line {
		switch {
		case escaped:
			escaped = false
		case quote == '\'':
			if r == '\'' {
				quote = 0
			}
		case r == '\\':
			escaped = true
		case quote == '"':
			if r == '"' {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '#':
			return line[:i]
		}
	}
	return line
}
