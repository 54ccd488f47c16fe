// Package docstore archives document snapshots in SQLite.
//
// Every Put adds a numbered revision to a document. Snapshot bytes are
// stored once per distinct content, keyed by their BLAKE3 digest and
// compressed with zstd; identical revisions share one blob. Documents are
// identified by random UUIDs.
package docstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"lukechampine.com/blake3"
	_ "modernc.org/sqlite"

	"github.com/gogpu/draft/snapshot"
)

//go:embed schema.sql
var schemaSQL string

var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
}

var (
	// ErrNotFound is returned for unknown documents or revisions.
	ErrNotFound = errors.New("docstore: not found")

	// ErrCorrupt is returned when a stored blob does not match its digest.
	ErrCorrupt = errors.New("docstore: stored snapshot is corrupt")
)

// Digest is the BLAKE3-256 digest of a snapshot.
type Digest [32]byte

func (d Digest) String() string { return fmt.Sprintf("%x", d[:]) }

// Document is an archived document.
type Document struct {
	ID        uuid.UUID
	Name      string
	Created   time.Time
	Revisions int
}

// Revision describes one archived snapshot.
type Revision struct {
	Document   uuid.UUID
	Number     int
	Digest     Digest
	Generation uint64
	Entities   int
	Created    time.Time
}

// Archive is an open archive database.
type Archive struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
	now func() time.Time
}

// Open opens or creates the archive at path.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", p, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	return &Archive{db: db, enc: enc, dec: dec, now: time.Now}, nil
}

// Close closes the database.
func (a *Archive) Close() error {
	a.dec.Close()
	if err := a.enc.Close(); err != nil {
		a.db.Close()
		return err
	}
	return a.db.Close()
}

// Create adds an empty document.
func (a *Archive) Create(ctx context.Context, name string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO documents (id, name, created_ms) VALUES (?, ?, ?)`,
		id.String(), name, a.now().UnixMilli())
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting document: %w", err)
	}
	return id, nil
}

// Documents lists all documents, oldest first.
func (a *Archive) Documents(ctx context.Context) ([]Document, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT d.id, d.name, d.created_ms, COUNT(r.rev)
		FROM documents d LEFT JOIN revisions r ON r.doc = d.id
		GROUP BY d.id ORDER BY d.created_ms, d.id`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var (
			d       Document
			id      string
			created int64
		)
		if err := rows.Scan(&id, &d.Name, &created, &d.Revisions); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		if d.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("%w: document id %q: %v", ErrCorrupt, id, err)
		}
		d.Created = time.UnixMilli(created)
		out = append(out, d)
	}
	return out, rows.Err()
}

// Put stores snap as the next revision of doc. snap must be a snapshot;
// its header is checked, its body is not.
func (a *Archive) Put(ctx context.Context, doc uuid.UUID, snap []byte) (Revision, error) {
	hdr, err := snapshot.Peek(snap)
	if err != nil {
		return Revision{}, err
	}
	rev := Revision{
		Document:   doc,
		Digest:     blake3.Sum256(snap),
		Generation: hdr.Generation,
		Entities:   hdr.Entities,
		Created:    a.now(),
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return Revision{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(rev), 0) + 1 FROM revisions WHERE doc = ?`, doc.String(),
	).Scan(&rev.Number); err != nil {
		return Revision{}, fmt.Errorf("numbering revision: %w", err)
	}
	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE id = ?)`, doc.String(),
	).Scan(&exists); err != nil {
		return Revision{}, fmt.Errorf("querying document: %w", err)
	}
	if !exists {
		return Revision{}, fmt.Errorf("%w: document %s", ErrNotFound, doc)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO blobs (digest, size, data) VALUES (?, ?, ?)`,
		rev.Digest[:], len(snap), a.enc.EncodeAll(snap, nil),
	); err != nil {
		return Revision{}, fmt.Errorf("inserting blob: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO revisions (doc, rev, digest, generation, entities, created_ms) VALUES (?, ?, ?, ?, ?, ?)`,
		doc.String(), rev.Number, rev.Digest[:], int64(rev.Generation), rev.Entities, rev.Created.UnixMilli(), //nolint:gosec // generations stay far below 2^63
	); err != nil {
		return Revision{}, fmt.Errorf("inserting revision: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Revision{}, fmt.Errorf("committing revision: %w", err)
	}
	rev.Created = time.UnixMilli(rev.Created.UnixMilli())
	return rev, nil
}

// Get returns revision number of doc, or the latest revision if number is
// not positive. The bytes are verified against the stored digest.
func (a *Archive) Get(ctx context.Context, doc uuid.UUID, number int) ([]byte, Revision, error) {
	q := `SELECT r.rev, r.digest, r.generation, r.entities, r.created_ms, b.size, b.data
		FROM revisions r JOIN blobs b ON b.digest = r.digest
		WHERE r.doc = ? AND r.rev = ?`
	args := []any{doc.String(), number}
	if number <= 0 {
		q = `SELECT r.rev, r.digest, r.generation, r.entities, r.created_ms, b.size, b.data
			FROM revisions r JOIN blobs b ON b.digest = r.digest
			WHERE r.doc = ? ORDER BY r.rev DESC LIMIT 1`
		args = args[:1]
	}

	var (
		rev     = Revision{Document: doc}
		digest  []byte
		gen     int64
		created int64
		size    int
		data    []byte
	)
	err := a.db.QueryRowContext(ctx, q, args...).Scan(&rev.Number, &digest, &gen, &rev.Entities, &created, &size, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, Revision{}, fmt.Errorf("%w: document %s revision %d", ErrNotFound, doc, number)
	}
	if err != nil {
		return nil, Revision{}, fmt.Errorf("querying revision: %w", err)
	}
	rev.Generation = uint64(gen) //nolint:gosec // stored from a uint64
	rev.Created = time.UnixMilli(created)
	copy(rev.Digest[:], digest)

	snap, err := a.dec.DecodeAll(data, make([]byte, 0, size))
	if err != nil {
		return nil, Revision{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if len(digest) != len(rev.Digest) || blake3.Sum256(snap) != rev.Digest {
		return nil, Revision{}, fmt.Errorf("%w: digest mismatch in revision %d", ErrCorrupt, rev.Number)
	}
	return snap, rev, nil
}

// Revisions lists the revisions of doc, oldest first.
func (a *Archive) Revisions(ctx context.Context, doc uuid.UUID) ([]Revision, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT rev, digest, generation, entities, created_ms FROM revisions WHERE doc = ? ORDER BY rev`,
		doc.String())
	if err != nil {
		return nil, fmt.Errorf("querying revisions: %w", err)
	}
	defer rows.Close()

	var out []Revision
	for rows.Next() {
		var (
			r       = Revision{Document: doc}
			digest  []byte
			gen     int64
			created int64
		)
		if err := rows.Scan(&r.Number, &digest, &gen, &r.Entities, &created); err != nil {
			return nil, fmt.Errorf("scanning revision: %w", err)
		}
		copy(r.Digest[:], digest)
		r.Generation = uint64(gen) //nolint:gosec // stored from a uint64
		r.Created = time.UnixMilli(created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Delete removes doc, its revisions, and blobs no other revision uses.
func (a *Archive) Delete(ctx context.Context, doc uuid.UUID) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM revisions WHERE doc = ?`, doc.String()); err != nil {
		return fmt.Errorf("deleting revisions: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, doc.String())
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: document %s", ErrNotFound, doc)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM blobs WHERE digest NOT IN (SELECT digest FROM revisions)`); err != nil {
		return fmt.Errorf("pruning blobs: %w", err)
	}
	return tx.Commit()
}

// Blobs returns the number of distinct stored snapshots.
func (a *Archive) Blobs(ctx context.Context) (int, error) {
	var n int
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blobs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting blobs: %w", err)
	}
	return n, nil
}
