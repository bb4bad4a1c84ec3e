package main

import (
	"flag"
	"math"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/foster/bag-of-code/db"
	"github.com/foster/bag-of-code/domain"
	"github.com/foster/bag-of-code/indexer"
)

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Verbose() {
		log.SetLevel(log.DebugLevel)
	}
	os.Exit(m.Run())
}

func withTestClient(t *testing.T, fn func(dbClient *db.Client)) {
	cfg := db.NewBoltConfig(filepath.Join(t.TempDir(), t.Name()+".bolt"))
	if err := db.WithClient(cfg, func(dbClient *db.Client) error {
		fn(dbClient)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func saveTestRecord(t *testing.T, dbClient *db.Client, name string, tokens ...string) {
	rb := domain.NewRecordBuilder(name, "https://github.com/test/"+name+".git")
	for _, token := range tokens {
		rb.Add(token)
	}
	if err := dbClient.PackageSave(rb.Record()); err != nil {
		t.Fatal(err)
	}
}

func saveScenario(t *testing.T, dbClient *db.Client) {
	saveTestRecord(t, dbClient, "pkgA", "foo", "bar", "foo", "foo")
	saveTestRecord(t, dbClient, "pkgB", "foo", "baz", "baz")
}

func writeTestPackage(t *testing.T, files map[string]string) string {
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestFitAndFold(t *testing.T) {
	withTestClient(t, func(dbClient *db.Client) {
		saveScenario(t, dbClient)

		m, err := fit(dbClient, "scenario", indexer.NewFitOptions())
		if err != nil {
			t.Fatal(err)
		}
		if n, d := m.Dims(); n != 3 || d != 2 {
			t.Fatalf("Expected model dims=3x2 but actual=%vx%v", n, d)
		}

		loaded, err := dbClient.Model("")
		if err != nil {
			t.Fatal(err)
		}
		if expected, actual := m.PackageNames(), loaded.PackageNames(); len(actual) != len(expected) || actual[0] != expected[0] {
			t.Errorf("Expected latest model packages=%v but actual=%v", expected, actual)
		}

		counts := map[string]int{"foo": 3, "bar": 1, "unknown": 7}

		res, err := fold(loaded, counts, "wfm", 0)
		if err != nil {
			t.Fatal(err)
		}
		if expected, actual := []float64{3, 1, 0}, res.Vector; len(actual) != 3 || actual[0] != expected[0] || actual[1] != expected[1] || actual[2] != expected[2] {
			t.Errorf("Expected wfm vector=%v but actual=%v", expected, actual)
		}
		if expected, actual := 3, res.Terms; actual != expected {
			t.Errorf("Expected terms=%v but actual=%v", expected, actual)
		}
		if expected, actual := 2, res.Known; actual != expected {
			t.Errorf("Expected known=%v but actual=%v", expected, actual)
		}

		res, err = fold(loaded, counts, "svd", 1)
		if err != nil {
			t.Fatal(err)
		}
		if expected, actual := 2, len(res.Vector); actual != expected {
			t.Fatalf("Expected latent vector length=%v but actual=%v", expected, actual)
		}
		if expected, actual := 1, len(res.Similar); actual != expected {
			t.Fatalf("Expected %v similar packages but actual=%v", expected, actual)
		}
		if expected, actual := "pkgA", res.Similar[0].Name; actual != expected {
			t.Errorf("Expected most similar package=%v but actual=%v", expected, actual)
		}
		if math.Abs(res.Similar[0].Similarity-1) > 1e-6 {
			t.Errorf("Expected similarity to pkgA=1 but actual=%v", res.Similar[0].Similarity)
		}

		if _, err := fold(loaded, counts, "lda", 0); err == nil {
			t.Errorf("Expected an error for an unrecognized fold kind")
		}
	})
}

func TestFitInsufficientCorpus(t *testing.T) {
	withTestClient(t, func(dbClient *db.Client) {
		saveTestRecord(t, dbClient, "lonely", "foo")

		if _, err := fit(dbClient, "lonely", nil); err != indexer.ErrInsufficientCorpus {
			t.Errorf("Expected err=%v but actual=%v", indexer.ErrInsufficientCorpus, err)
		}
		if names, err := dbClient.ModelNames(); err != nil {
			t.Fatal(err)
		} else if len(names) != 0 {
			t.Errorf("Expected no saved models but actual=%v", names)
		}
	})
}

func TestFitOptions(t *testing.T) {
	origMaxFeatures, origProjection := MaxFeatures, ProjectionName
	defer func() {
		MaxFeatures, ProjectionName = origMaxFeatures, origProjection
	}()

	MaxFeatures, ProjectionName = 2, "wfm"
	opts, err := fitOptions()
	if err != nil {
		t.Fatal(err)
	}
	if expected, actual := 2, opts.MaxFeatures; actual != expected {
		t.Errorf("Expected MaxFeatures=%v but actual=%v", expected, actual)
	}
	if expected, actual := indexer.ProjectWordFrequency, opts.Projection; actual != expected {
		t.Errorf("Expected Projection=%v but actual=%v", expected, actual)
	}

	ProjectionName = "lda"
	if _, err := fitOptions(); err == nil {
		t.Errorf("Expected an error for an unrecognized projection")
	}
}

func TestModelSummaries(t *testing.T) {
	withTestClient(t, func(dbClient *db.Client) {
		saveScenario(t, dbClient)

		out, err := modelSummaries(dbClient)
		if err != nil {
			t.Fatal(err)
		}
		if expected, actual := 0, len(out.Models); actual != expected {
			t.Errorf("Expected %v models but actual=%v", expected, actual)
		}

		opts := indexer.NewFitOptions()
		opts.Projection = indexer.ProjectWordFrequency
		if _, err := fit(dbClient, "first", opts); err != nil {
			t.Fatal(err)
		}
		if _, err := fit(dbClient, "second", nil); err != nil {
			t.Fatal(err)
		}

		if out, err = modelSummaries(dbClient); err != nil {
			t.Fatal(err)
		}
		if expected, actual := "second", out.Latest; actual != expected {
			t.Errorf("Expected latest=%v but actual=%v", expected, actual)
		}
		if expected, actual := 2, len(out.Models); actual != expected {
			t.Fatalf("Expected %v models but actual=%v", expected, actual)
		}
		if expected, actual := "wfm", out.Models[0].Projection; actual != expected {
			t.Errorf("Expected first model projection=%v but actual=%v", expected, actual)
		}
		if expected, actual := 2, out.Models[1].Rank; actual != expected {
			t.Errorf("Expected second model rank=%v but actual=%v", expected, actual)
		}
	})
}

func TestCrawl(t *testing.T) {
	cacheDir := t.TempDir()
	for name, src := range map[string]string{
		"left-pad":  "module.exports = leftPad\n",
		"is-number": "return typeof num === 'number'\n",
	} {
		dir := filepath.Join(cacheDir, name)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"name": "`+name+`"}`), 0644); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "index.js"), []byte(src), 0644); err != nil {
			t.Fatal(err)
		}
	}

	withTestClient(t, func(dbClient *db.Client) {
		if _, err := dbClient.DiscoveredAdd(
			domain.NewDiscoveredPackage("left-pad", "stevemao/left-pad", "test"),
			domain.NewDiscoveredPackage("is-number", "jonschlinkert/is-number", "test"),
			domain.NewDiscoveredPackage("not-checked-out", "someone/not-checked-out", "test"),
		); err != nil {
			t.Fatal(err)
		}

		if err := crawl(dbClient, cacheDir); err != nil {
			t.Fatal(err)
		}

		if expected, actual := 2, mustPackagesLen(t, dbClient); actual != expected {
			t.Errorf("Expected %v packages but actual=%v", expected, actual)
		}

		rec, err := dbClient.Package("left-pad")
		if err != nil {
			t.Fatal(err)
		}
		if expected, actual := "https://github.com/stevemao/left-pad.git", rec.Ref; actual != expected {
			t.Errorf("Expected ref=%v but actual=%v", expected, actual)
		}
		if expected, actual := 1, rec.TermCounts()["leftPad"]; actual != expected {
			t.Errorf("Expected count of leftPad=%v but actual=%v", expected, actual)
		}

		stats, err := termStats(dbClient)
		if err != nil {
			t.Fatal(err)
		}
		if expected, actual := 2, stats.Packages; actual != expected {
			t.Errorf("Expected packages=%v but actual=%v", expected, actual)
		}
		if expected, actual := int64(8), stats.Tokens; actual != expected {
			t.Errorf("Expected tokens=%v but actual=%v", expected, actual)
		}

		counts, err := tableCounts(dbClient)
		if err != nil {
			t.Fatal(err)
		}
		if expected, actual := 3, counts[db.TableDiscovered]; actual != expected {
			t.Errorf("Expected %v discovered but actual=%v", expected, actual)
		}
	})
}

func TestTokenizePackageWithoutManifest(t *testing.T) {
	dir := writeTestPackage(t, map[string]string{"index.js": "foo bar\n"})

	rec, err := tokenizePackage("bare", "", dir)
	if err != nil {
		t.Fatal(err)
	}
	if expected, actual := 0, rec.Len(); actual != expected {
		t.Errorf("Expected %v terms but actual=%v", expected, actual)
	}
}

func TestGetAndPurge(t *testing.T) {
	withTestClient(t, func(dbClient *db.Client) {
		saveScenario(t, dbClient)
		if _, err := fit(dbClient, "scenario", nil); err != nil {
			t.Fatal(err)
		}

		x, err := get(dbClient, "pkg", "pkgB")
		if err != nil {
			t.Fatal(err)
		}
		if rec, ok := x.(*domain.PackageRecord); !ok || rec.Name != "pkgB" {
			t.Errorf("Expected package record pkgB but actual=%v", x)
		}

		if x, err = get(dbClient, "model", "scenario"); err != nil {
			t.Fatal(err)
		}
		if summary, ok := x.(*modelSummary); !ok || summary.Packages != 2 {
			t.Errorf("Expected model summary with 2 packages but actual=%v", x)
		}

		if x, err = get(dbClient, "meta", db.MetaLatestModel); err != nil {
			t.Fatal(err)
		}
		if expected, actual := "scenario", x; actual != expected {
			t.Errorf("Expected latest model=%v but actual=%v", expected, actual)
		}

		if _, err := get(dbClient, "no-such-table", "x"); err == nil {
			t.Errorf("Expected an error for an unrecognized table")
		}
		if _, err := get(dbClient, db.TablePackages, "missing"); err == nil {
			t.Errorf("Expected an error for a missing package")
		}

		table, err := resolveTable("pkgs")
		if err != nil {
			t.Fatal(err)
		}
		if err := dbClient.Purge(table); err != nil {
			t.Fatal(err)
		}
		if expected, actual := 0, mustPackagesLen(t, dbClient); actual != expected {
			t.Errorf("Expected %v packages after purge but actual=%v", expected, actual)
		}
	})
}

func mustPackagesLen(t *testing.T, dbClient *db.Client) int {
	n, err := dbClient.PackagesLen()
	if err != nil {
		t.Fatal(err)
	}
	return n
}
