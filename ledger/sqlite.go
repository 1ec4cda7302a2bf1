// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/te6481-4/Legal-Discovery-Fhe/lib/codec"
	"github.com/te6481-4/Legal-Discovery-Fhe/lib/fhe"
	"github.com/te6481-4/Legal-Discovery-Fhe/lib/oracle"
	"github.com/te6481-4/Legal-Discovery-Fhe/lib/sqlitepool"
)

// schema is the persistent layout: batch table keyed by id, document
// list keyed by batch id with an insertion sequence, pending-request
// table keyed by the oracle-issued request id. Append/update-only —
// there is no DELETE anywhere in this file.
const schema = `
CREATE TABLE IF NOT EXISTS batches (
	id   INTEGER PRIMARY KEY,
	open INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
	batch_id       INTEGER NOT NULL REFERENCES batches(id),
	seq            INTEGER NOT NULL,
	id_handle      BLOB NOT NULL,
	content_handle BLOB NOT NULL,
	PRIMARY KEY (batch_id, seq)
);

CREATE TABLE IF NOT EXISTS requests (
	id         TEXT PRIMARY KEY,
	batch_id   INTEGER NOT NULL REFERENCES batches(id),
	state_hash BLOB NOT NULL,
	handles    BLOB NOT NULL,
	processed  INTEGER NOT NULL DEFAULT 0,
	count      INTEGER NOT NULL DEFAULT 0
);
`

// SQLiteStore is the durable Store implementation.
type SQLiteStore struct {
	pool *sqlitepool.Pool
}

// OpenSQLiteStore opens (creating if needed) the ledger database at
// path. The caller must Close the store when done.
func OpenSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:   path,
		Logger: logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ledger: opening sqlite store: %w", err)
	}
	return &SQLiteStore{pool: pool}, nil
}

// Close closes the underlying connection pool.
func (s *SQLiteStore) Close() error {
	return s.pool.Close()
}

func (s *SQLiteStore) take() (*sqlite.Conn, error) {
	return s.pool.Take(context.Background())
}

func (s *SQLiteStore) AppendBatch(b Batch) error {
	conn, err := s.take()
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	var last BatchID
	err = sqlitex.Execute(conn, "SELECT COALESCE(MAX(id), 0) FROM batches", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			last = BatchID(stmt.ColumnInt64(0))
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("store: reading last batch id: %w", err)
	}
	if b.ID != last+1 {
		return fmt.Errorf("store: batch id %d out of sequence, want %d", b.ID, last+1)
	}

	return sqlitex.Execute(conn, "INSERT INTO batches (id, open) VALUES (?, ?)", &sqlitex.ExecOptions{
		Args: []any{int64(b.ID), boolToInt(b.Open)},
	})
}

func (s *SQLiteStore) SetBatchOpen(id BatchID, open bool) error {
	conn, err := s.take()
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn, "UPDATE batches SET open = ? WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{boolToInt(open), int64(id)},
	})
	if err != nil {
		return err
	}
	if conn.Changes() == 0 {
		return fmt.Errorf("store: unknown batch %d", id)
	}
	return nil
}

func (s *SQLiteStore) Batch(id BatchID) (Batch, bool, error) {
	conn, err := s.take()
	if err != nil {
		return Batch{}, false, err
	}
	defer s.pool.Put(conn)

	var batch Batch
	var found bool
	err = sqlitex.Execute(conn, "SELECT id, open FROM batches WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{int64(id)},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			batch = Batch{ID: BatchID(stmt.ColumnInt64(0)), Open: stmt.ColumnInt(1) != 0}
			found = true
			return nil
		},
	})
	if err != nil {
		return Batch{}, false, err
	}
	return batch, found, nil
}

func (s *SQLiteStore) LastBatchID() (BatchID, error) {
	conn, err := s.take()
	if err != nil {
		return 0, err
	}
	defer s.pool.Put(conn)

	var last BatchID
	err = sqlitex.Execute(conn, "SELECT COALESCE(MAX(id), 0) FROM batches", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			last = BatchID(stmt.ColumnInt64(0))
			return nil
		},
	})
	return last, err
}

func (s *SQLiteStore) AppendDocument(id BatchID, doc Document) error {
	conn, err := s.take()
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	return sqlitex.Execute(conn, `
		INSERT INTO documents (batch_id, seq, id_handle, content_handle)
		VALUES (?, (SELECT COALESCE(MAX(seq), -1) + 1 FROM documents WHERE batch_id = ?), ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{int64(id), int64(id), doc.IDHandle.Bytes(), doc.ContentHandle.Bytes()},
		})
}

func (s *SQLiteStore) Documents(id BatchID) ([]Document, error) {
	conn, err := s.take()
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var docs []Document
	err = sqlitex.Execute(conn, "SELECT id_handle, content_handle FROM documents WHERE batch_id = ? ORDER BY seq", &sqlitex.ExecOptions{
		Args: []any{int64(id)},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			var doc Document
			if err := columnHandle(stmt, 0, &doc.IDHandle); err != nil {
				return err
			}
			if err := columnHandle(stmt, 1, &doc.ContentHandle); err != nil {
				return err
			}
			docs = append(docs, doc)
			return nil
		},
	})
	return docs, err
}

func (s *SQLiteStore) PutRequest(req Request) error {
	conn, err := s.take()
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	handleBytes := make([][]byte, len(req.Handles))
	for i, h := range req.Handles {
		handleBytes[i] = h.Bytes()
	}
	handles, err := codec.Marshal(handleBytes)
	if err != nil {
		return fmt.Errorf("store: encoding request handles: %w", err)
	}

	stateHash := req.StateHash
	return sqlitex.Execute(conn, `
		INSERT INTO requests (id, batch_id, state_hash, handles, processed, count)
		VALUES (?, ?, ?, ?, 0, 0)`,
		&sqlitex.ExecOptions{
			Args: []any{string(req.ID), int64(req.BatchID), stateHash[:], handles},
		})
}

func (s *SQLiteStore) Request(id oracle.RequestID) (Request, bool, error) {
	conn, err := s.take()
	if err != nil {
		return Request{}, false, err
	}
	defer s.pool.Put(conn)

	var req Request
	var found bool
	err = sqlitex.Execute(conn, "SELECT id, batch_id, state_hash, handles, processed, count FROM requests WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{string(id)},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			req.ID = oracle.RequestID(stmt.ColumnText(0))
			req.BatchID = BatchID(stmt.ColumnInt64(1))

			hash := make([]byte, stmt.ColumnLen(2))
			stmt.ColumnBytes(2, hash)
			if len(hash) != len(req.StateHash) {
				return fmt.Errorf("store: state hash is %d bytes, want %d", len(hash), len(req.StateHash))
			}
			copy(req.StateHash[:], hash)

			encoded := make([]byte, stmt.ColumnLen(3))
			stmt.ColumnBytes(3, encoded)
			var handleBytes [][]byte
			if err := codec.Unmarshal(encoded, &handleBytes); err != nil {
				return fmt.Errorf("store: decoding request handles: %w", err)
			}
			req.Handles = make([]fhe.Handle, len(handleBytes))
			for i, raw := range handleBytes {
				if len(raw) != len(req.Handles[i]) {
					return fmt.Errorf("store: handle is %d bytes, want %d", len(raw), len(req.Handles[i]))
				}
				copy(req.Handles[i][:], raw)
			}

			req.Processed = stmt.ColumnInt(4) != 0
			req.Count = uint64(stmt.ColumnInt64(5))
			found = true
			return nil
		},
	})
	if err != nil {
		return Request{}, false, err
	}
	return req, found, nil
}

func (s *SQLiteStore) MarkProcessed(id oracle.RequestID, count uint64) error {
	conn, err := s.take()
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn, "UPDATE requests SET processed = 1, count = ? WHERE id = ? AND processed = 0", &sqlitex.ExecOptions{
		Args: []any{int64(count), string(id)},
	})
	if err != nil {
		return err
	}
	if conn.Changes() == 0 {
		return fmt.Errorf("store: request %q unknown or already processed", id)
	}
	return nil
}

func columnHandle(stmt *sqlite.Stmt, col int, out *fhe.Handle) error {
	raw := make([]byte, stmt.ColumnLen(col))
	stmt.ColumnBytes(col, raw)
	if len(raw) != len(out) {
		return fmt.Errorf("store: handle is %d bytes, want %d", len(raw), len(out))
	}
	copy(out[:], raw)
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
