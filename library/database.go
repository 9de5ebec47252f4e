// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package library owns the database side of the pipeline: a lazily
// established, ping-verified connection pool and an idempotent batch upsert
// keyed by each record's natural key.
package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/twstock/mopsdata/data"
)

const (
	// ConnectRetries bounds how often connection establishment is attempted
	// before giving up. Exhaustion is fatal to the whole run, not to a
	// single entity.
	ConnectRetries = 5
	ConnectDelay   = 10 * time.Second

	// UpsertRetries bounds how often a failed upsert is replayed before the
	// error propagates.
	UpsertRetries = 5
	UpsertDelay   = 10 * time.Second
)

// ErrConnectExhausted signals that the connection retry budget ran out.
// Callers treat this as fatal: connectivity is a precondition of the run,
// not a per-entity concern.
var ErrConnectExhausted = errors.New("database connection retries exhausted")

// Database wraps a pgx pool with the lifecycle the pipeline needs: lazy
// creation with a bounded retry budget, and invalidation on suspected
// connectivity failures so the next operation reconnects.
type Database struct {
	DBUrl string

	pool *pgxpool.Pool

	// write and invalidate are replaced in tests; the defaults acquire the
	// pool and run the records in one transaction, and drop the pool.
	write       func(ctx context.Context, records []data.Record) (int64, error)
	invalidate  func()
	replayDelay time.Duration
}

func New(dbURL string) *Database {
	db := &Database{DBUrl: dbURL, replayDelay: UpsertDelay}
	db.write = db.writeOnce
	db.invalidate = db.dropPool
	return db
}

// acquire returns the shared pool, creating it on first use. Every attempt
// is verified with a ping round trip before being handed out.
func (db *Database) acquire(ctx context.Context) (*pgxpool.Pool, error) {
	if db.pool != nil {
		return db.pool, nil
	}

	var lastErr error
	for attempt := 1; attempt <= ConnectRetries; attempt++ {
		log.Info().Int("Attempt", attempt).Msg("connecting to database")

		pool, err := pgxpool.New(ctx, db.DBUrl)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				db.pool = pool
				return pool, nil
			}
			pool.Close()
		}

		lastErr = err
		log.Error().Err(err).Int("Attempt", attempt).Msg("database connection failed")
		if attempt < ConnectRetries {
			time.Sleep(ConnectDelay)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrConnectExhausted, lastErr)
}

// Invalidate drops the pool so the next operation re-establishes it.
func (db *Database) Invalidate() {
	db.invalidate()
}

func (db *Database) dropPool() {
	if db.pool != nil {
		db.pool.Close()
		db.pool = nil
	}
}

// Close releases the pool if one exists.
func (db *Database) Close() {
	db.dropPool()
}

// CheckConnectivity performs a version round trip against the database.
func (db *Database) CheckConnectivity(ctx context.Context) error {
	pool, err := db.acquire(ctx)
	if err != nil {
		return err
	}

	var version string
	if err := pool.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		return err
	}

	log.Info().Str("Version", version).Msg("database connection ok")
	return nil
}

// Upsert writes a homogeneous record set in one transaction, inserting new
// natural keys and overwriting the non-key columns (plus updated_at) of
// existing ones. An empty set is a no-op. Failures that look like
// connectivity problems invalidate the pool; every failure is retried up to
// UpsertRetries with a fixed delay before propagating.
func (db *Database) Upsert(ctx context.Context, records []data.Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	var (
		affected int64
		attempt  int
	)

	operation := func() error {
		attempt++

		n, err := db.write(ctx, records)
		if err != nil {
			if errors.Is(err, ErrConnectExhausted) {
				// connection budget already exhausted, no point replaying
				return backoff.Permanent(err)
			}
			log.Error().Err(err).Int("Attempt", attempt).Str("Table", records[0].Table()).
				Msg("upsert failed")
			if isConnectivityError(err) {
				log.Warn().Msg("suspected connectivity problem, invalidating database pool")
				db.Invalidate()
			}
			return err
		}

		affected = n
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(db.replayDelay), UpsertRetries-1)
	if err := backoff.Retry(operation, policy); err != nil {
		return 0, err
	}

	return affected, nil
}

// writeOnce runs the full record set inside a single transaction so one
// call is atomic with respect to its own records. Nothing here spans tables;
// the per-entity multi-table sequence is a saga of independent calls.
func (db *Database) writeOnce(ctx context.Context, records []data.Record) (int64, error) {
	pool, err := db.acquire(ctx)
	if err != nil {
		return 0, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var affected int64
	for _, record := range records {
		tag, err := tx.Exec(ctx, UpsertSQL(record), record.Values()...)
		if err != nil {
			return 0, err
		}
		affected += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	return affected, nil
}

// UpsertSQL builds the insert-or-update statement for one record. Every
// non-key column is overwritten from EXCLUDED and updated_at advances on
// conflict, which is what makes re-running a batch converge.
func UpsertSQL(record data.Record) string {
	cols := record.Columns()
	keys := record.KeyColumns()

	keySet := make(map[string]bool, len(keys))
	for _, key := range keys {
		keySet[key] = true
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	updates := make([]string, 0, len(cols))
	for _, col := range cols {
		if keySet[col] {
			continue
		}
		updates = append(updates, fmt.Sprintf("%[1]s = EXCLUDED.%[1]s", col))
	}
	updates = append(updates, "updated_at = CURRENT_TIMESTAMP")

	return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s`,
		record.Table(), strings.Join(cols, ", "), strings.Join(placeholders, ", "),
		strings.Join(keys, ", "), strings.Join(updates, ", "))
}

// connectivityMarkers are the substrings that mark an operation error as a
// connection problem worth a pool reset.
var connectivityMarkers = []string{"connect", "timeout", "broken pipe", "unexpected eof"}

func isConnectivityError(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range connectivityMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
