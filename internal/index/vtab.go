package index

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring"
	"modernc.org/sqlite/vtab"
)

// singleton is the one refsModule registered with the SQLite driver.
var (
	once      sync.Once
	singleton *refsModule
	initErr   error
)

// refsModule implements vtab.Module. modernc.org/sqlite registers modules
// with the driver, so there is one per process.
type refsModule struct {
	mu sync.RWMutex
	// dbs maps the argument of CREATE VIRTUAL TABLE ... USING fxom_refs(id)
	// to the index database holding node_refs and file_ids.
	dbs map[string]*sql.DB
}

// registerModule registers fxom_refs with the SQLite driver once.
func registerModule() (*refsModule, error) {
	once.Do(func() {
		singleton = &refsModule{
			dbs: make(map[string]*sql.DB),
		}
		if err := vtab.RegisterModule(nil, "fxom_refs", singleton); err != nil {
			initErr = fmt.Errorf("index: register module: %w", err)
			singleton = nil
		}
	})
	return singleton, initErr
}

func (m *refsModule) registerDB(id string, db *sql.DB) {
	m.mu.Lock()
	m.dbs[id] = db
	m.mu.Unlock()
}

func (m *refsModule) unregisterDB(id string) {
	m.mu.Lock()
	delete(m.dbs, id)
	m.mu.Unlock()
}

func (m *refsModule) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	// module, database and table name come first, then the arguments.
	if len(args) < 4 {
		return nil, fmt.Errorf("fxom_refs: missing database argument (expected USING fxom_refs(id))")
	}
	id := args[3]

	m.mu.RLock()
	db, ok := m.dbs[id]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("fxom_refs: unknown database %q", id)
	}

	if err := ctx.Declare("CREATE TABLE x(token TEXT, path TEXT, kind TEXT)"); err != nil {
		return nil, err
	}
	return &refsTable{mod: m, db: db}, nil
}

func (m *refsModule) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.Create(ctx, args)
}

type refsTable struct {
	mod *refsModule
	db  *sql.DB
}

// Plan bits stored in IndexInfo.IdxNum. The low two bits say how the token
// column is constrained; planKind adds an equality on the kind column.
const (
	planTokenEQ = 1 + iota
	planTokenLike
	planTokenGlob

	planTokenMask = 3
	planKind      = 4
)

func tokenPlan(c *vtab.Constraint) int {
	switch c.Op {
	case vtab.OpEQ:
		return planTokenEQ
	case vtab.OpLIKE:
		return planTokenLike
	case vtab.OpGLOB:
		return planTokenGlob
	}
	return 0
}

const (
	colToken = iota
	colPath
	colKind
)

func (t *refsTable) BestIndex(info *vtab.IndexInfo) error {
	plan, args := 0, 0
	for i := range info.Constraints {
		c := &info.Constraints[i]
		if !c.Usable {
			continue
		}
		switch {
		case c.Column == colToken && plan&planTokenMask == 0:
			op := tokenPlan(c)
			if op == 0 {
				continue
			}
			plan |= op
		case c.Column == colKind && c.Op == vtab.OpEQ && plan&planKind == 0:
			plan |= planKind
		default:
			continue
		}
		c.ArgIndex = args
		c.Omit = true
		args++
	}

	info.IdxNum = int64(plan)
	switch {
	case plan&planTokenMask == planTokenEQ:
		info.EstimatedCost, info.EstimatedRows = 1, 10
	case plan != 0:
		info.EstimatedCost, info.EstimatedRows = 100, 100
	default:
		info.EstimatedCost, info.EstimatedRows = 1e6, 1e6
	}
	return nil
}

func (t *refsTable) Open() (vtab.Cursor, error) {
	return &refsCursor{table: t}, nil
}

func (t *refsTable) Disconnect() error { return nil }
func (t *refsTable) Destroy() error    { return nil }

type refsRow struct {
	token string
	path  string
}

type refsCursor struct {
	table *refsTable
	rows  []refsRow
	pos   int
}

// Filter builds the node_refs query for the plan, then expands each
// matching bitmap into one row per file. The arguments arrive in the order
// BestIndex assigned: token first, then kind.
func (c *refsCursor) Filter(idxNum int, idxStr string, vals []vtab.Value) error {
	c.rows, c.pos = c.rows[:0], 0
	db := c.table.db
	if db == nil {
		return nil
	}

	var (
		where []string
		args  []any
	)
	next := 0
	arg := func() (string, bool) {
		if next >= len(vals) {
			return "", false
		}
		s, ok := vals[next].(string)
		next++
		return s, ok
	}
	if op := idxNum & planTokenMask; op != 0 {
		v, ok := arg()
		if !ok {
			return nil
		}
		where = append(where, "token "+[...]string{"", "=", "LIKE", "GLOB"}[op]+" ?")
		args = append(args, v)
	}
	if idxNum&planKind != 0 {
		kind, ok := arg()
		if !ok {
			return nil
		}
		// tokens are kind:name, and ';' sorts right after ':'
		where = append(where, "token >= ? AND token < ?")
		args = append(args, kind+":", kind+";")
	}

	query := "SELECT token, bitmap FROM node_refs"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	entries, err := scanBitmaps(db, query, args...)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	paths, err := filePaths(db)
	if err != nil {
		return err
	}
	for _, e := range entries {
		it := e.files.Iterator()
		for it.HasNext() {
			if p, ok := paths[it.Next()]; ok {
				c.rows = append(c.rows, refsRow{token: e.token, path: p})
			}
		}
	}
	return nil
}

type bitmapEntry struct {
	token string
	files *roaring.Bitmap
}

// scanBitmaps reads and closes the result before returning: the outer
// vtab query holds one of the two connections.
func scanBitmaps(db *sql.DB, query string, args ...any) ([]bitmapEntry, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("index: scan node_refs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []bitmapEntry
	for rows.Next() {
		var (
			token string
			blob  []byte
		)
		if err := rows.Scan(&token, &blob); err != nil {
			return nil, err
		}
		bm := roaring.New()
		if err := bm.UnmarshalBinary(blob); err != nil {
			return nil, fmt.Errorf("index: bitmap for %q: %w", token, err)
		}
		out = append(out, bitmapEntry{token: token, files: bm})
	}
	return out, rows.Err()
}

func filePaths(db *sql.DB) (map[uint32]string, error) {
	rows, err := db.Query("SELECT id, path FROM file_ids")
	if err != nil {
		return nil, fmt.Errorf("index: read file_ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	paths := make(map[uint32]string)
	for rows.Next() {
		var (
			id   uint32
			path string
		)
		if err := rows.Scan(&id, &path); err != nil {
			return nil, err
		}
		paths[id] = path
	}
	return paths, rows.Err()
}

func (c *refsCursor) Next() error {
	c.pos++
	return nil
}

func (c *refsCursor) Eof() bool { return c.pos >= len(c.rows) }

func (c *refsCursor) Column(col int) (vtab.Value, error) {
	if c.pos >= len(c.rows) {
		return nil, nil
	}
	r := c.rows[c.pos]
	switch col {
	case colToken:
		return r.token, nil
	case colPath:
		return r.path, nil
	case colKind:
		kind, _, _ := strings.Cut(r.token, ":")
		return kind, nil
	}
	return nil, nil
}

func (c *refsCursor) Rowid() (int64, error) { return int64(c.pos), nil }

func (c *refsCursor) Close() error {
	c.rows = nil
	return nil
}
