package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

var (
	DefaultPostgresConnString = "dbname=bag_of_code sslmode=disable"
)

type PostgresConfig struct {
	ConnString string
}

func NewPostgresConfig(connString string) *PostgresConfig {
	if len(connString) == 0 {
		connString = DefaultPostgresConnString
	}
	cfg := &PostgresConfig{
		ConnString: connString,
	}
	return cfg
}

func (cfg PostgresConfig) Type() Type {
	return Postgres
}

// PostgresBackend stores every table as a two-column bytea key/value table.
type PostgresBackend struct {
	config *PostgresConfig
	db     *sql.DB
	known  map[string]struct{} // Tables known to exist.
	mu     sync.Mutex
}

func NewPostgresBackend(config *PostgresConfig) *PostgresBackend {
	be := &PostgresBackend{
		config: config,
		known:  map[string]struct{}{},
	}
	return be
}

func (be *PostgresBackend) Open() error {
	be.mu.Lock()
	defer be.mu.Unlock()

	if be.db != nil {
		return nil
	}

	db, err := sql.Open("postgres", be.config.ConnString)
	if err != nil {
		return err
	}
	be.db = db

	if err := be.withTx(true, func(tx *sql.Tx) error {
		for _, table := range tables {
			if err := be.createTable(tx, table); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		be.db.Close()
		be.db = nil
		return err
	}

	return nil
}

func (be *PostgresBackend) Close() error {
	be.mu.Lock()
	defer be.mu.Unlock()

	if be.db == nil {
		return nil
	}

	if err := be.db.Close(); err != nil {
		return err
	}

	be.db = nil
	be.known = map[string]struct{}{}

	return nil
}

func (be *PostgresBackend) createTable(tx *sql.Tx, table string) error {
	_, err := tx.Exec(fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	key bytea PRIMARY KEY,
	value bytea NOT NULL
)`,
		pq.QuoteIdentifier(table),
	))
	if err != nil {
		return fmt.Errorf("creating table %q: %s", table, err)
	}
	be.known[table] = struct{}{}
	return nil
}

// ensureTable lazily creates tables outside of the predefined set.
func (be *PostgresBackend) ensureTable(tx *sql.Tx, table string) error {
	if _, ok := be.known[table]; ok {
		return nil
	}
	return be.createTable(tx, table)
}

func (be *PostgresBackend) Get(table string, key []byte) ([]byte, error) {
	var v []byte
	if err := be.withTx(false, func(tx *sql.Tx) error {
		if _, ok := be.known[table]; !ok {
			return ErrKeyNotFound
		}
		row := tx.QueryRow(fmt.Sprintf(`SELECT value FROM %s WHERE key=$1 LIMIT 1`, pq.QuoteIdentifier(table)), key)
		if err := row.Scan(&v); err != nil {
			if err == sql.ErrNoRows {
				return ErrKeyNotFound
			}
			return fmt.Errorf("getting key=%q from %v: %s", string(key), table, err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return v, nil
}

func (be *PostgresBackend) Put(table string, key []byte, value []byte) error {
	return be.withTx(true, func(tx *sql.Tx) error {
		if err := be.ensureTable(tx, table); err != nil {
			return err
		}
		_, err := tx.Exec(fmt.Sprintf(`
INSERT INTO %s (key, value) VALUES ($1, $2)
    ON CONFLICT (key)
    DO UPDATE SET
	value=EXCLUDED.value
`,
			pq.QuoteIdentifier(table),
		),
			key,
			value,
		)
		if err != nil {
			return fmt.Errorf("inserting key=%q into %v: %s", string(key), table, err)
		}
		return nil
	})
}

func (be *PostgresBackend) Delete(table string, keys ...[]byte) error {
	return be.withTx(true, func(tx *sql.Tx) error {
		if _, ok := be.known[table]; !ok {
			return nil
		}
		for _, key := range keys {
			_, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE key=$1`, pq.QuoteIdentifier(table)), key)
			if err != nil {
				return fmt.Errorf("deleting key=%q from %v: %s", string(key), table, err)
			}
		}
		return nil
	})
}

// Drop empties the named tables.
func (be *PostgresBackend) Drop(tables ...string) error {
	return be.withTx(true, func(tx *sql.Tx) error {
		for _, table := range tables {
			if _, err := tx.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s`, pq.QuoteIdentifier(table))); err != nil {
				return fmt.Errorf("dropping table=%v: %s", table, err)
			}
			delete(be.known, table)
			if err := be.createTable(tx, table); err != nil {
				return err
			}
		}
		return nil
	})
}

func (be *PostgresBackend) Len(table string) (int, error) {
	var n int64
	if err := be.withTx(false, func(tx *sql.Tx) error {
		if _, ok := be.known[table]; !ok {
			return nil
		}
		row := tx.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM %s`, pq.QuoteIdentifier(table)))
		if err := row.Scan(&n); err != nil {
			return fmt.Errorf("getting length of table=%v: %s", table, err)
		}
		return nil
	}); err != nil {
		return 0, err
	}
	return int(n), nil
}

func (be *PostgresBackend) EachRow(table string, fn func(key []byte, value []byte)) error {
	return be.EachRowWithBreak(table, func(k []byte, v []byte) bool {
		fn(k, v)
		return true
	})
}

func (be *PostgresBackend) EachRowWithBreak(table string, fn func(key []byte, value []byte) bool) error {
	return be.withTx(false, func(tx *sql.Tx) error {
		if _, ok := be.known[table]; !ok {
			return nil
		}
		rows, err := tx.Query(fmt.Sprintf(`SELECT key, value FROM %s ORDER BY key ASC`, pq.QuoteIdentifier(table)))
		if err != nil {
			return fmt.Errorf("iterating table=%v: %s", table, err)
		}
		defer rows.Close()
		for rows.Next() {
			var k, v []byte
			if err := rows.Scan(&k, &v); err != nil {
				return fmt.Errorf("scanning row from table=%v: %s", table, err)
			}
			if !fn(k, v) {
				break
			}
		}
		return rows.Err()
	})
}

func (be *PostgresBackend) withTx(writable bool, fn func(tx *sql.Tx) error) error {
	opts := &sql.TxOptions{
		ReadOnly: !writable,
	}
	tx, err := be.db.BeginTx(context.Background(), opts)
	if err != nil {
		return fmt.Errorf("obtaining tx: %s", err)
	}
	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Errorf("Also encountered problem rolling back tx: %s", rbErr)
		}
		return err
	}
	if !writable {
		return tx.Rollback()
	}
	return tx.Commit()
}
