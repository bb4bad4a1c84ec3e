package db

import (
	"fmt"
	"strings"
)

// Type identifies a storage backend.
type Type int

const (
	Bolt Type = iota
	Postgres
)

func (typ Type) String() string {
	switch typ {
	case Bolt:
		return "bolt"
	case Postgres:
		return "postgres"
	default:
		return fmt.Sprintf("Type(%d)", int(typ))
	}
}

var (
	DefaultDriver   = "bolt"
	DefaultBoltFile = "bag-of-code.bolt"
)

type Config interface {
	Type() Type // Configuration type specifier.
}

// NewConfig maps a driver name onto a backend configuration.  dsn is a file
// path for bolt and a connection string for postgres.
func NewConfig(driver string, dsn string) (Config, error) {
	switch strings.ToLower(driver) {
	case "bolt", "boltdb", "bbolt":
		return NewBoltConfig(dsn), nil

	case "postgres", "postgresql", "pg":
		return NewPostgresConfig(dsn), nil

	default:
		return nil, fmt.Errorf("unrecognized or unsupported DB driver %q", driver)
	}
}

// NewBackend constructs an unopened backend for the passed configuration.
func NewBackend(config Config) (Backend, error) {
	switch typ := config.Type(); typ {
	case Bolt:
		return NewBoltBackend(config.(*BoltConfig)), nil

	case Postgres:
		return NewPostgresBackend(config.(*PostgresConfig)), nil

	default:
		return nil, fmt.Errorf("no backend available for db configuration type: %v", typ)
	}
}
