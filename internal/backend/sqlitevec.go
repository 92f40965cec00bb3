package backend

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	sqlite_vec.Auto()
}

const embedBatchSize = 32

const ddl = `
PRAGMA journal_mode=WAL;
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS documents (
    rowid        INTEGER PRIMARY KEY AUTOINCREMENT,
    doc_id       TEXT NOT NULL UNIQUE,
    content      TEXT NOT NULL,
    file_path    TEXT NOT NULL,
    start_line   INTEGER NOT NULL,
    end_line     INTEGER NOT NULL,
    language     TEXT NOT NULL DEFAULT '',
    chunk_type   TEXT NOT NULL DEFAULT '',
    name         TEXT NOT NULL DEFAULT '',
    dependencies TEXT NOT NULL DEFAULT '[]'
);

CREATE VIRTUAL TABLE IF NOT EXISTS vec_documents USING vec0(
    document_rowid INTEGER PRIMARY KEY,
    embedding float[768]
);
`

// SQLiteVec is a Backend backed by SQLite + sqlite-vec. Embeddings are
// computed through the configured Embedder at publish time.
type SQLiteVec struct {
	db       *sql.DB
	embedder Embedder
}

// OpenSQLiteVec creates or opens the database at dbPath and initializes
// the schema.
func OpenSQLiteVec(dbPath string, embedder Embedder) (*SQLiteVec, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteVec{db: db, embedder: embedder}, nil
}

// AddDocuments embeds the batch and stores documents plus vectors in one
// transaction. Documents with an existing doc_id are replaced.
func (b *SQLiteVec) AddDocuments(ctx context.Context, docs []Document) (AddResult, error) {
	if len(docs) == 0 {
		return b.addResult(0)
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}

	embeddings := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += embedBatchSize {
		end := min(i+embedBatchSize, len(texts))
		embs, err := b.embedder.Embed(ctx, texts[i:end])
		if err != nil {
			return AddResult{}, fmt.Errorf("embed batch: %w", err)
		}
		embeddings = append(embeddings, embs...)
	}
	if len(embeddings) != len(docs) {
		return AddResult{}, fmt.Errorf("expected %d embeddings, got %d", len(docs), len(embeddings))
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return AddResult{}, err
	}
	defer tx.Rollback()

	for i, d := range docs {
		deps, err := json.Marshal(d.Metadata.Dependencies)
		if err != nil {
			return AddResult{}, fmt.Errorf("marshal dependencies for %s: %w", d.ID, err)
		}
		if err := b.deleteOne(tx, d.ID); err != nil {
			return AddResult{}, err
		}
		res, err := tx.Exec(`
			INSERT INTO documents (doc_id, content, file_path, start_line, end_line, language, chunk_type, name, dependencies)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID, d.Text, d.Metadata.FilePath, d.Metadata.StartLine, d.Metadata.EndLine,
			d.Metadata.Language, d.Metadata.ChunkType, d.Metadata.Name, string(deps),
		)
		if err != nil {
			return AddResult{}, fmt.Errorf("insert document %s: %w", d.ID, err)
		}
		rowid, err := res.LastInsertId()
		if err != nil {
			return AddResult{}, err
		}

		blob, err := sqlite_vec.SerializeFloat32(embeddings[i])
		if err != nil {
			return AddResult{}, fmt.Errorf("serialize embedding for %s: %w", d.ID, err)
		}
		if _, err := tx.Exec("INSERT INTO vec_documents (document_rowid, embedding) VALUES (?, ?)", rowid, blob); err != nil {
			return AddResult{}, fmt.Errorf("insert embedding for %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return AddResult{}, err
	}
	return b.addResult(len(docs))
}

// DeleteDocuments retracts documents by ID. IDs not present are skipped.
func (b *SQLiteVec) DeleteDocuments(ctx context.Context, ids []string) (DeleteResult, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return DeleteResult{}, err
	}
	defer tx.Rollback()

	deleted := 0
	for _, id := range ids {
		var rowid int64
		err := tx.QueryRow("SELECT rowid FROM documents WHERE doc_id = ?", id).Scan(&rowid)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return DeleteResult{}, err
		}
		if _, err := tx.Exec("DELETE FROM vec_documents WHERE document_rowid = ?", rowid); err != nil {
			return DeleteResult{}, err
		}
		if _, err := tx.Exec("DELETE FROM documents WHERE rowid = ?", rowid); err != nil {
			return DeleteResult{}, err
		}
		deleted++
	}

	if err := tx.Commit(); err != nil {
		return DeleteResult{}, err
	}
	return DeleteResult{Deleted: deleted}, nil
}

// SearchResult is a document with its vector distance.
type SearchResult struct {
	Document Document
	Distance float64
}

// Search finds the top-k documents closest to the query text.
func (b *SQLiteVec) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	embs, err := b.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	blob, err := sqlite_vec.SerializeFloat32(embs[0])
	if err != nil {
		return nil, fmt.Errorf("serialize query embedding: %w", err)
	}

	rows, err := b.db.QueryContext(ctx, `
		SELECT d.doc_id, d.content, d.file_path, d.start_line, d.end_line,
		       d.language, d.chunk_type, d.name, d.dependencies, v.distance
		FROM vec_documents v
		JOIN documents d ON d.rowid = v.document_rowid
		WHERE v.embedding MATCH ?
		ORDER BY v.distance
		LIMIT ?
	`, blob, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var deps string
		err := rows.Scan(
			&r.Document.ID, &r.Document.Text,
			&r.Document.Metadata.FilePath, &r.Document.Metadata.StartLine, &r.Document.Metadata.EndLine,
			&r.Document.Metadata.Language, &r.Document.Metadata.ChunkType, &r.Document.Metadata.Name,
			&deps, &r.Distance,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(deps), &r.Document.Metadata.Dependencies); err != nil {
			return nil, fmt.Errorf("unmarshal dependencies for %s: %w", r.Document.ID, err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Close closes the underlying database.
func (b *SQLiteVec) Close() error {
	return b.db.Close()
}

func (b *SQLiteVec) deleteOne(tx *sql.Tx, id string) error {
	var rowid int64
	err := tx.QueryRow("SELECT rowid FROM documents WHERE doc_id = ?", id).Scan(&rowid)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM vec_documents WHERE document_rowid = ?", rowid); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM documents WHERE rowid = ?", rowid); err != nil {
		return err
	}
	return nil
}

func (b *SQLiteVec) addResult(added int) (AddResult, error) {
	var total int
	if err := b.db.QueryRow("SELECT COUNT(*) FROM documents").Scan(&total); err != nil {
		return AddResult{}, err
	}
	return AddResult{Added: added, TotalDocuments: total}, nil
}

var _ Backend = (*SQLiteVec)(nil)
