package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/refassist/refassist-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/refassist/refassist-cli/internal/core/domain"
	"github.com/refassist/refassist-cli/internal/core/ports/driven"
)

// MemoryPath selects an ephemeral in-memory database instead of a file.
const MemoryPath = ":memory:"

// Store is the SQLite-backed vector store.
//
// Reads run concurrently; mutations serialise on a single writer lock so
// interleaved ingestion runs cannot corrupt a document's chunk set.
type Store struct {
	db   *sql.DB
	path string

	writeMu sync.Mutex

	mu     sync.RWMutex
	closed bool
}

var _ driven.VectorStore = (*Store)(nil)

// NewStore opens (or creates) the index database at dbPath. Pass MemoryPath
// for an ephemeral store that lives only as long as the process. If dbPath
// is empty, defaults to ~/.refassist/index.db.
func NewStore(dbPath string) (*Store, error) {
	registerVectorFunctions()

	memory := dbPath == MemoryPath
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".refassist", "index.db")
	}

	// Pragmas go in the DSN so the driver applies them to every pooled
	// connection, not just the one a PRAGMA statement happens to run on.
	dsn := dbPath + "?_pragma=foreign_keys(1)"
	if !memory {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		// WAL mode for better concurrency
		dsn += "&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", domain.ErrConnection, err)
	}
	if memory {
		// Each pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: running migrations: %v", domain.ErrSchema, err)
	}

	return s, nil
}

// NewMemoryStore opens an ephemeral in-memory store.
func NewMemoryStore() (*Store, error) {
	return NewStore(MemoryPath)
}

// Close closes the database connection. Safe to call more than once;
// subsequent store operations fail with domain.ErrConnection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// conn returns the handle, or domain.ErrConnection once the store is closed.
func (s *Store) conn() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("%w: store is closed", domain.ErrConnection)
	}
	return s.db, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Documents ====================

// ExistingHashes returns the content hashes of all stored documents.
func (s *Store) ExistingHashes(ctx context.Context) (map[string]struct{}, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT content_hash FROM documents")
	if err != nil {
		return nil, fmt.Errorf("querying hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]struct{})
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("scanning hash: %w", err)
		}
		hashes[h] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hashes: %w", err)
	}

	return hashes, nil
}

// FindDocumentByPath returns the ID of the document with the given file
// path, or domain.ErrNotFound.
func (s *Store) FindDocumentByPath(ctx context.Context, path string) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}

	var id int64
	row := db.QueryRowContext(ctx, "SELECT id FROM documents WHERE file = ?", path)
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("finding document: %w", err)
	}
	return id, nil
}

// UpsertDocument inserts the document, or updates the row that already holds
// its file path in place so the identifier survives content changes.
func (s *Store) UpsertDocument(ctx context.Context, doc *domain.Document) (int64, error) {
	if doc == nil || doc.File == "" || doc.ContentHash == "" {
		return 0, fmt.Errorf("%w: document needs a file path and content hash", domain.ErrInvalidInput)
	}

	db, err := s.conn()
	if err != nil {
		return 0, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var id int64
	row := tx.QueryRowContext(ctx, "SELECT id FROM documents WHERE file = ?", doc.File)
	switch err := row.Scan(&id); {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx, `
			INSERT INTO documents (file, text, content_hash, modified)
			VALUES (?, ?, ?, ?)
		`, doc.File, doc.Text, doc.ContentHash, doc.Modified)
		if err != nil {
			return 0, classify("inserting document", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("reading inserted id: %w", err)
		}
	case err != nil:
		return 0, fmt.Errorf("finding document: %w", err)
	default:
		_, err := tx.ExecContext(ctx, `
			UPDATE documents SET text = ?, content_hash = ?, modified = ?
			WHERE id = ?
		`, doc.Text, doc.ContentHash, doc.Modified, id)
		if err != nil {
			return 0, classify("updating document", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing document: %w", err)
	}

	doc.ID = id
	return id, nil
}

// ==================== Chunks ====================

// ReplaceChunks atomically swaps a document's chunk set for the given
// ordered texts. Old embeddings go with the old chunks via cascade.
func (s *Store) ReplaceChunks(ctx context.Context, docID int64, texts []string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE doc_id = ?", docID); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}

	for i, text := range texts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (doc_id, chunk_text, chunk_index)
			VALUES (?, ?, ?)
		`, docID, text, i)
		if err != nil {
			return classify("inserting chunk", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunks: %w", err)
	}
	return nil
}

// ChunksMissingEmbeddings returns every chunk without an embedding row, in
// chunk ID order. This is the hand-off point between the indexing and
// embedding phases: the second phase needs no record of what the first did.
func (s *Store) ChunksMissingEmbeddings(ctx context.Context) ([]domain.ChunkText, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT c.id, c.chunk_text
		FROM chunks c
		LEFT JOIN embeddings e ON e.chunk_id = c.id
		WHERE e.chunk_id IS NULL
		ORDER BY c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying unembedded chunks: %w", err)
	}
	defer rows.Close()

	var pending []domain.ChunkText //nolint:prealloc // size unknown from query
	for rows.Next() {
		var ct domain.ChunkText
		if err := rows.Scan(&ct.ChunkID, &ct.Text); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		pending = append(pending, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return pending, nil
}

// ==================== Embeddings ====================

// InsertEmbedding stores the vector for a chunk. A duplicate insert or an
// unknown chunk surfaces as domain.ErrSchema.
func (s *Store) InsertEmbedding(ctx context.Context, chunkID int64, embedding []float32) error {
	if len(embedding) == 0 {
		return fmt.Errorf("%w: empty embedding", domain.ErrInvalidInput)
	}

	db, err := s.conn()
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err = db.ExecContext(ctx, `
		INSERT INTO embeddings (chunk_id, embedding)
		VALUES (?, ?)
	`, chunkID, float32SliceToBytes(embedding))
	if err != nil {
		return classify("inserting embedding", err)
	}
	return nil
}

// ==================== Retrieval ====================

// TopSimilarChunks ranks every stored embedding against the query vector by
// inner product, keeps the top k (ties broken by chunk ID ascending), then
// drops entries below the threshold. The threshold never reaches past the
// truncated set, matching how retrieval behaves on a fuller index.
func (s *Store) TopSimilarChunks(ctx context.Context, query []float32, k int, threshold float64) ([]domain.ChunkMatch, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: empty query embedding", domain.ErrInvalidInput)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		WITH ranked AS (
			SELECT chunk_id, vec_inner_product(embedding, ?) AS similarity
			FROM embeddings
			ORDER BY similarity DESC, chunk_id ASC
			LIMIT ?
		)
		SELECT chunk_id, similarity FROM ranked
		WHERE similarity >= ?
		ORDER BY similarity DESC, chunk_id ASC
	`, float32SliceToBytes(query), k, threshold)
	if err != nil {
		return nil, fmt.Errorf("querying similar chunks: %w", err)
	}
	defer rows.Close()

	var matches []domain.ChunkMatch //nolint:prealloc // size unknown from query
	for rows.Next() {
		var m domain.ChunkMatch
		if err := rows.Scan(&m.ChunkID, &m.Similarity); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matches: %w", err)
	}

	return matches, nil
}

// ResolveChunks joins chunks back to their owning documents. Results follow
// the order of chunkIDs; unknown IDs are skipped.
func (s *Store) ResolveChunks(ctx context.Context, chunkIDs []int64) ([]domain.ChunkContext, error) {
	if len(chunkIDs) == 0 {
		return nil, nil
	}

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT c.id, c.chunk_text, c.chunk_index, d.id, d.file, d.text
		FROM chunks c
		JOIN documents d ON d.id = c.doc_id
		WHERE c.id IN (%s)
	`, placeholders(len(chunkIDs)))

	rows, err := db.QueryContext(ctx, query, int64Args(chunkIDs)...)
	if err != nil {
		return nil, fmt.Errorf("resolving chunks: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]domain.ChunkContext, len(chunkIDs))
	for rows.Next() {
		var cc domain.ChunkContext
		if err := rows.Scan(&cc.ChunkID, &cc.Text, &cc.Index, &cc.DocumentID, &cc.File, &cc.DocumentText); err != nil {
			return nil, fmt.Errorf("scanning chunk context: %w", err)
		}
		byID[cc.ChunkID] = cc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunk contexts: %w", err)
	}

	contexts := make([]domain.ChunkContext, 0, len(byID))
	for _, id := range chunkIDs {
		if cc, ok := byID[id]; ok {
			contexts = append(contexts, cc)
		}
	}
	return contexts, nil
}

// DocumentsByID fetches full documents, ordered like ids. Unknown IDs are
// skipped.
func (s *Store) DocumentsByID(ctx context.Context, ids []int64) ([]domain.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, file, text, content_hash, modified
		FROM documents
		WHERE id IN (%s)
	`, placeholders(len(ids)))

	rows, err := db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]domain.Document, len(ids))
	for rows.Next() {
		var doc domain.Document
		var modified sql.NullTime
		if err := rows.Scan(&doc.ID, &doc.File, &doc.Text, &doc.ContentHash, &modified); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		if modified.Valid {
			t := modified.Time
			doc.Modified = &t
		}
		byID[doc.ID] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	docs := make([]domain.Document, 0, len(byID))
	for _, id := range ids {
		if doc, ok := byID[id]; ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// ==================== Helpers ====================

// classify maps SQLite constraint violations to domain.ErrSchema so callers
// can tell invariant breaches from transport failures.
func classify(op string, err error) error {
	if err != nil && strings.Contains(err.Error(), "constraint") {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrSchema, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// placeholders returns "?, ?, ..." with n slots.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// int64Args widens ids for the variadic query API.
func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
