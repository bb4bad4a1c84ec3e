package db

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gogo/protobuf/proto"
	log "github.com/sirupsen/logrus"

	"github.com/foster/bag-of-code/domain"
	"github.com/foster/bag-of-code/indexer"
)

const (
	TableMetadata   = "bag-of-code-metadata"
	TablePackages   = "packages"
	TableModels     = "models"
	TableDiscovered = "discovered"
	TableLanguages  = "languages"

	// MetaLatestModel is the metadata key holding the name of the most
	// recently saved model.
	MetaLatestModel = "latest-model"
)

var (
	ErrKeyNotFound                = errors.New("requested key not found")
	ErrMetadataUnsupportedSrcType = errors.New("unsupported src type: must be an []byte, string, or proto.Message")
	ErrMetadataUnsupportedDstType = errors.New("unsupported dst type: must be an *[]byte, *string, or proto.Message")

	tables = []string{
		TableMetadata,
		TablePackages,
		TableModels,
		TableDiscovered,
		TableLanguages,
	}
)

// Tables returns the names of every table managed by the client.
func Tables() []string {
	out := make([]string, len(tables))
	copy(out, tables)
	return out
}

// IsTable returns true when name is one of the managed tables.
func IsTable(name string) bool {
	for _, table := range tables {
		if name == table {
			return true
		}
	}
	return false
}

// Client stores tokenized package records, fitted models, discovered
// packages and cached repository language breakdowns on top of a Backend.
type Client struct {
	be     Backend
	opened bool
	mu     sync.Mutex
}

// NewClient constructs a new DB client based on the passed configuration.
func NewClient(config Config) (*Client, error) {
	be, err := NewBackend(config)
	if err != nil {
		return nil, err
	}
	return newClient(be), nil
}

func newClient(be Backend) *Client {
	c := &Client{
		be: be,
	}
	return c
}

func (c *Client) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opened {
		return nil
	}
	if err := c.be.Open(); err != nil {
		return err
	}
	c.opened = true
	log.WithField("backend", fmt.Sprintf("%T", c.be)).Debug("DB client opened")
	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.opened {
		return nil
	}
	if err := c.be.Close(); err != nil {
		return err
	}
	c.opened = false
	log.WithField("backend", fmt.Sprintf("%T", c.be)).Debug("DB client closed")
	return nil
}

// WithClient is a convenience utility which handles DB client construction,
// open, and close.
func WithClient(config Config, fn func(dbClient *Client) error) (err error) {
	dbClient, err := NewClient(config)
	if err != nil {
		return err
	}

	if err = dbClient.Open(); err != nil {
		err = fmt.Errorf("opening DB client: %s", err)
		return
	}
	defer func() {
		if closeErr := dbClient.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("closing DB client: %s", closeErr))
		}
	}()

	err = fn(dbClient)
	return
}

func (c *Client) Backend() Backend {
	return c.be
}

// Purge empties the named tables.
func (c *Client) Purge(tables ...string) error {
	for _, table := range tables {
		if !IsTable(table) {
			return fmt.Errorf("unrecognized table name %q", table)
		}
	}
	return c.be.Drop(tables...)
}

func (c *Client) EachRow(table string, fn func(k []byte, v []byte)) error {
	return c.be.EachRow(table, fn)
}

func (c *Client) EachRowWithBreak(table string, fn func(k []byte, v []byte) bool) error {
	return c.be.EachRowWithBreak(table, fn)
}

// PackageSave stores tokenized package records keyed by package name,
// replacing any previous record of the same name.
func (c *Client) PackageSave(recs ...*domain.PackageRecord) error {
	for _, rec := range recs {
		v, err := proto.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshalling package %q: %s", rec.Name, err)
		}
		if err := c.be.Put(TablePackages, []byte(rec.Name), v); err != nil {
			return fmt.Errorf("saving package %q: %s", rec.Name, err)
		}
	}
	return nil
}

func (c *Client) PackageDelete(names ...string) error {
	return c.be.Delete(TablePackages, stringsToBytes(names)...)
}

func (c *Client) Package(name string) (*domain.PackageRecord, error) {
	v, err := c.be.Get(TablePackages, []byte(name))
	if err != nil {
		return nil, err
	}
	rec := &domain.PackageRecord{}
	if err := proto.Unmarshal(v, rec); err != nil {
		return nil, fmt.Errorf("unmarshalling package %q: %s", name, err)
	}
	return rec, nil
}

// EachPackage invokes fn on every stored package record in key order.
func (c *Client) EachPackage(fn func(rec *domain.PackageRecord)) error {
	return c.EachPackageWithBreak(func(rec *domain.PackageRecord) bool {
		fn(rec)
		return true
	})
}

// EachPackageWithBreak iterates over package records until fn returns false.
func (c *Client) EachPackageWithBreak(fn func(rec *domain.PackageRecord) bool) error {
	var unmarshalErr error
	if err := c.be.EachRowWithBreak(TablePackages, func(k []byte, v []byte) bool {
		rec := &domain.PackageRecord{}
		if unmarshalErr = proto.Unmarshal(v, rec); unmarshalErr != nil {
			unmarshalErr = fmt.Errorf("unmarshalling package %q: %s", string(k), unmarshalErr)
			return false
		}
		return fn(rec)
	}); err != nil {
		return err
	}
	return unmarshalErr
}

func (c *Client) PackagesLen() (int, error) {
	return c.be.Len(TablePackages)
}

// ModelSave stores a fitted model under name and marks it as the latest.
func (c *Client) ModelSave(name string, m *indexer.Model) error {
	v, err := m.Marshal()
	if err != nil {
		return err
	}
	if err := c.be.Put(TableModels, []byte(name), v); err != nil {
		return fmt.Errorf("saving model %q: %s", name, err)
	}
	if err := c.MetaSave(MetaLatestModel, name); err != nil {
		return fmt.Errorf("recording latest model: %s", err)
	}
	return nil
}

// Model loads the named model.  An empty name selects the latest saved model.
func (c *Client) Model(name string) (*indexer.Model, error) {
	if name == "" {
		if err := c.Meta(MetaLatestModel, &name); err != nil {
			return nil, err
		}
	}
	v, err := c.be.Get(TableModels, []byte(name))
	if err != nil {
		return nil, err
	}
	m, err := indexer.UnmarshalModel(v)
	if err != nil {
		return nil, fmt.Errorf("loading model %q: %w", name, err)
	}
	return m, nil
}

// ModelNames returns the names of all stored models in sorted order.
func (c *Client) ModelNames() ([]string, error) {
	names := []string{}
	if err := c.be.EachRow(TableModels, func(k []byte, _ []byte) {
		names = append(names, string(k))
	}); err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// ModelDelete removes models, clearing the latest-model marker if it pointed
// to one of them.
func (c *Client) ModelDelete(names ...string) error {
	if err := c.be.Delete(TableModels, stringsToBytes(names)...); err != nil {
		return err
	}
	var latest string
	if err := c.Meta(MetaLatestModel, &latest); err != nil {
		if err == ErrKeyNotFound {
			return nil
		}
		return err
	}
	for _, name := range names {
		if name == latest {
			return c.MetaDelete(MetaLatestModel)
		}
	}
	return nil
}

// DiscoveredAdd only adds packages which haven't been recorded yet.  Returns
// the number of new packages added.
func (c *Client) DiscoveredAdd(dps ...*domain.DiscoveredPackage) (int, error) {
	n := 0
	for _, dp := range dps {
		if _, err := c.be.Get(TableDiscovered, []byte(dp.Name)); err == nil {
			continue
		} else if err != ErrKeyNotFound {
			return n, err
		}
		v, err := proto.Marshal(dp)
		if err != nil {
			return n, fmt.Errorf("marshalling discovered package %q: %s", dp.Name, err)
		}
		if err := c.be.Put(TableDiscovered, []byte(dp.Name), v); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (c *Client) Discovered(name string) (*domain.DiscoveredPackage, error) {
	v, err := c.be.Get(TableDiscovered, []byte(name))
	if err != nil {
		return nil, err
	}
	dp := &domain.DiscoveredPackage{}
	if err := proto.Unmarshal(v, dp); err != nil {
		return nil, fmt.Errorf("unmarshalling discovered package %q: %s", name, err)
	}
	return dp, nil
}

func (c *Client) EachDiscovered(fn func(dp *domain.DiscoveredPackage)) error {
	var unmarshalErr error
	if err := c.be.EachRowWithBreak(TableDiscovered, func(k []byte, v []byte) bool {
		dp := &domain.DiscoveredPackage{}
		if unmarshalErr = proto.Unmarshal(v, dp); unmarshalErr != nil {
			unmarshalErr = fmt.Errorf("unmarshalling discovered package %q: %s", string(k), unmarshalErr)
			return false
		}
		fn(dp)
		return true
	}); err != nil {
		return err
	}
	return unmarshalErr
}

func (c *Client) DiscoveredLen() (int, error) {
	return c.be.Len(TableDiscovered)
}

// LanguagesSave caches a repository's language breakdown.
func (c *Client) LanguagesSave(rl *domain.RepoLanguages) error {
	v, err := proto.Marshal(rl)
	if err != nil {
		return fmt.Errorf("marshalling languages of %q: %s", rl.Repo, err)
	}
	return c.be.Put(TableLanguages, []byte(rl.Repo), v)
}

// Languages returns the cached language breakdown of repo.
func (c *Client) Languages(repo string) (*domain.RepoLanguages, error) {
	v, err := c.be.Get(TableLanguages, []byte(repo))
	if err != nil {
		return nil, err
	}
	rl := &domain.RepoLanguages{}
	if err := proto.Unmarshal(v, rl); err != nil {
		return nil, fmt.Errorf("unmarshalling languages of %q: %s", repo, err)
	}
	return rl, nil
}

// MetaSave stores a metadata key/value.  NB: src must be one of raw []byte,
// string, or proto.Message struct.
func (c *Client) MetaSave(key string, src interface{}) error {
	var v []byte

	switch src.(type) {
	case []byte:
		v = src.([]byte)

	case string:
		v = []byte(src.(string))

	case proto.Message:
		var err error
		if v, err = proto.Marshal(src.(proto.Message)); err != nil {
			return fmt.Errorf("marshalling %T: %s", src, err)
		}

	default:
		return ErrMetadataUnsupportedSrcType
	}

	return c.be.Put(TableMetadata, []byte(key), v)
}

func (c *Client) MetaDelete(key string) error {
	return c.be.Delete(TableMetadata, []byte(key))
}

// Meta retrieves a metadata key and populates it into dst.  NB: dst must be
// one of *[]byte, *string, or proto.Message struct.
func (c *Client) Meta(key string, dst interface{}) error {
	v, err := c.be.Get(TableMetadata, []byte(key))
	if err != nil {
		return err
	}

	switch dst.(type) {
	case *[]byte:
		ptr := dst.(*[]byte)
		*ptr = v

	case *string:
		ptr := dst.(*string)
		*ptr = string(v)

	case proto.Message:
		return proto.Unmarshal(v, dst.(proto.Message))

	default:
		return ErrMetadataUnsupportedDstType
	}

	return nil
}

func stringsToBytes(ss []string) [][]byte {
	bs := make([][]byte, len(ss))
	for i, s := range ss {
		bs[i] = []byte(s)
	}
	return bs
}
