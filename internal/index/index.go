// Package index builds a SQLite index of what a set of documents declare
// and use: fx:ids, classes, references, includes, handlers and expression
// roots. Each token maps to a roaring bitmap of file ids, and the fxom_refs
// virtual table expands them into (token, path, kind) rows.
package index

import (
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring"
	_ "modernc.org/sqlite"

	"github.com/agentic-research/fxom/internal/fxom"
	"github.com/agentic-research/fxom/internal/metadata"
)

// Token kinds.
const (
	KindID         = "id"
	KindClass      = "class"
	KindReference  = "ref"
	KindCopy       = "copy"
	KindInclude    = "include"
	KindHandler    = "handler"
	KindExpression = "expr"
	KindController = "controller"
)

// Token builds the key stored for kind and name.
func Token(kind, name string) string { return kind + ":" + name }

// Index is a derived index, rebuilt on every Create.
type Index struct {
	db     *sql.DB
	path   string
	temp   bool
	dbID   string
	mod    *refsModule
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]*roaring.Bitmap
	fileIDs map[string]uint32
	nextID  uint32
}

// Create opens a fresh index at path, removing any previous one. An empty
// path uses a temporary file that Close removes.
func Create(path string, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	temp := path == ""
	if temp {
		// The virtual table needs a second connection onto the same data,
		// which :memory: cannot give.
		f, err := os.CreateTemp("", "fxom-index-*.db")
		if err != nil {
			return nil, fmt.Errorf("create temp index: %w", err)
		}
		path = f.Name()
		_ = f.Close()
	}
	_ = os.Remove(path + "-wal")
	_ = os.Remove(path + "-shm")
	if !temp {
		_ = os.Remove(path)
	}

	mod, err := registerModule()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", path, err)
	}
	// One connection for the outer query, one for the virtual table cursor.
	db.SetMaxOpenConns(2)

	ix := &Index{
		db:      db,
		path:    path,
		temp:    temp,
		dbID:    fmt.Sprintf("fxom_%d", time.Now().UnixNano()),
		mod:     mod,
		logger:  logger,
		pending: make(map[string]*roaring.Bitmap),
		fileIDs: make(map[string]uint32),
	}
	if err := ix.init(); err != nil {
		_ = ix.Close()
		return nil, err
	}
	return ix, nil
}

func (ix *Index) init() error {
	if _, err := ix.db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("set WAL mode on index: %w", err)
	}
	_, err := ix.db.Exec(`
		CREATE TABLE IF NOT EXISTS node_refs (
			token TEXT PRIMARY KEY,
			bitmap BLOB
		);
		CREATE TABLE IF NOT EXISTS file_ids (
			id INTEGER PRIMARY KEY,
			path TEXT UNIQUE NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("create index tables: %w", err)
	}
	ix.mod.registerDB(ix.dbID, ix.db)
	query := fmt.Sprintf("CREATE VIRTUAL TABLE IF NOT EXISTS fxom_refs USING fxom_refs(%s)", ix.dbID)
	if _, err := ix.db.Exec(query); err != nil {
		return fmt.Errorf("create fxom_refs table: %w", err)
	}
	return nil
}

// Path returns the database file.
func (ix *Index) Path() string { return ix.path }

// Add records token as used by the file at path. Nothing is written until
// Flush.
func (ix *Index) Add(token, path string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	fid, ok := ix.fileIDs[path]
	if !ok {
		fid = ix.nextID
		ix.nextID++
		ix.fileIDs[path] = fid
	}
	bm, ok := ix.pending[token]
	if !ok {
		bm = roaring.New()
		ix.pending[token] = bm
	}
	bm.Add(fid)
}

// AddDocument records the tokens of doc under path in one traversal.
func (ix *Index) AddDocument(path string, doc *fxom.Document) {
	root := doc.Root()
	if root == nil {
		return
	}
	ids := fxom.NewIDMap()
	intrinsics := fxom.NewIntrinsics(fxom.AnyIntrinsic, "", nil)
	instances := fxom.NewAllMatches(func(o fxom.Object) bool {
		_, ok := o.(*fxom.Instance)
		return ok
	})
	props := fxom.NewSimpleProperties()
	fxom.Collect(root, fxom.NewComposite(ids, intrinsics, instances, props))

	for id := range ids.Result() {
		ix.Add(Token(KindID, id), path)
	}
	for _, n := range intrinsics.Result() {
		kind := KindReference
		switch n.Kind() {
		case fxom.IntrinsicCopy:
			kind = KindCopy
		case fxom.IntrinsicInclude:
			kind = KindInclude
		}
		ix.Add(Token(kind, n.Source()), path)
	}
	for _, o := range instances.Result() {
		ix.Add(Token(KindClass, metadata.SimpleName(o.(*fxom.Instance).Class())), path)
	}
	for _, p := range props.Result() {
		v := fxom.ParseValue(p.Value())
		switch v.Kind {
		case fxom.ValueHandler:
			ix.Add(Token(KindHandler, v.Text), path)
		case fxom.ValueExpression, fxom.ValueBinding:
			for _, id := range v.Roots() {
				ix.Add(Token(KindExpression, id), path)
			}
		}
	}
	if r, ok := root.(*fxom.Instance); ok && r.Controller() != "" {
		ix.Add(Token(KindController, r.Controller()), path)
	}
}

// Flush writes everything added so far in one transaction. It can be
// called again after more additions.
func (ix *Index) Flush() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	tx, err := ix.db.Begin()
	if err != nil {
		return fmt.Errorf("begin index flush: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	fileStmt, err := tx.Prepare("INSERT OR IGNORE INTO file_ids (id, path) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("prepare file_ids insert: %w", err)
	}
	defer func() { _ = fileStmt.Close() }()
	for path, id := range ix.fileIDs {
		if _, err := fileStmt.Exec(id, path); err != nil {
			return fmt.Errorf("insert file_id %s: %w", path, err)
		}
	}

	refStmt, err := tx.Prepare("INSERT OR REPLACE INTO node_refs (token, bitmap) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("prepare node_refs insert: %w", err)
	}
	defer func() { _ = refStmt.Close() }()
	var buf bytes.Buffer
	for token, bm := range ix.pending {
		buf.Reset()
		if _, err := bm.WriteTo(&buf); err != nil {
			return fmt.Errorf("serialize bitmap for %s: %w", token, err)
		}
		if _, err := refStmt.Exec(token, buf.Bytes()); err != nil {
			return fmt.Errorf("insert token %s: %w", token, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit index: %w", err)
	}
	ix.logger.Debug("index flushed", "tokens", len(ix.pending), "files", len(ix.fileIDs))
	return nil
}

// Files returns the sorted paths of the files that declare or use token.
func (ix *Index) Files(token string) ([]string, error) {
	rows, err := ix.db.Query("SELECT path FROM fxom_refs WHERE token = ?", token)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", token, err)
	}
	defer func() { _ = rows.Close() }()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths, rows.Err()
}

// Query runs SQL against the index. The fxom_refs table has the columns
// token, path and kind.
func (ix *Index) Query(query string, args ...any) (*sql.Rows, error) {
	return ix.db.Query(query, args...)
}

// Close releases the database. A temporary index is removed.
func (ix *Index) Close() error {
	ix.mod.unregisterDB(ix.dbID)
	err := ix.db.Close()
	if ix.temp {
		_ = os.Remove(ix.path)
		_ = os.Remove(ix.path + "-wal")
		_ = os.Remove(ix.path + "-shm")
	}
	return err
}
