// Package catalog persists picture records and owns identity assignment,
// duplicate detection and rating/flag mutation.
package catalog

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/malramsay64/decimator/internal/hash"
	"github.com/malramsay64/decimator/internal/models"
)

var (
	// ErrNotFound reports an operation that referenced an unknown picture id.
	ErrNotFound = errors.New("picture not found")
	// ErrConstraint reports an insert whose id is already assigned.
	ErrConstraint = errors.New("picture id already exists")
)

const timeLayout = "2006-01-02 15:04:05"

// Catalog is the persisted store of picture records. Open it once at
// startup and Close it at shutdown; all access goes through its methods.
type Catalog struct {
	db     *sql.DB
	dbPath string

	// bucketMu guards buckets; each bucket mutex serialises
	// resolve-and-insert for one short hash value.
	bucketMu sync.Mutex
	buckets  map[string]*sync.Mutex
}

// Open opens (creating if necessary) the catalog database at dbPath.
func Open(dbPath string) (*Catalog, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	c := &Catalog{
		db:      db,
		dbPath:  dbPath,
		buckets: make(map[string]*sync.Mutex),
	}
	if err := c.init(); err != nil {
		db.Close()
		return nil, err
	}

	return c, nil
}

// Current schema version
const schemaVersion = 1

// init creates the database schema
func (c *Catalog) init() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS pictures (
		id TEXT PRIMARY KEY,
		directory TEXT NOT NULL,
		filename TEXT NOT NULL,
		raw_filename TEXT,
		short_hash BLOB,
		full_hash BLOB,
		capture_time DATETIME,
		rating TEXT,
		flag TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_pictures_directory ON pictures(directory);
	CREATE INDEX IF NOT EXISTS idx_pictures_short_hash ON pictures(short_hash);
	CREATE INDEX IF NOT EXISTS idx_pictures_full_hash ON pictures(full_hash);
	`

	if _, err = c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	c.db.Exec(`INSERT OR REPLACE INTO schema_version (version) VALUES (?)`, schemaVersion)

	return nil
}

// Close closes the database connection
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Insert assigns a fresh id when the record has none and persists it.
// Inserting a record whose id is already present fails with ErrConstraint.
func (c *Catalog) Insert(pic *models.Picture) (uuid.UUID, error) {
	if pic.ID == uuid.Nil {
		pic.ID = uuid.New()
	}
	if pic.Flag == "" {
		pic.Flag = models.FlagUnset
	}

	_, err := c.db.Exec(`
		INSERT INTO pictures (id, directory, filename, raw_filename, short_hash, full_hash, capture_time, rating, flag)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		pic.ID.String(),
		pic.Directory,
		pic.Filename,
		nullString(pic.RawFilename),
		pic.ShortHash,
		pic.FullHash,
		nullTime(pic.CaptureTime),
		nullRating(pic.Rating),
		string(pic.Flag),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return uuid.Nil, fmt.Errorf("insert %s: %w", pic.ID, ErrConstraint)
		}
		return uuid.Nil, fmt.Errorf("failed to insert picture %s: %w", pic.Filename, err)
	}

	return pic.ID, nil
}

// Get returns the record for id, or ErrNotFound.
func (c *Catalog) Get(id uuid.UUID) (*models.Picture, error) {
	row := c.db.QueryRow(selectColumns+` FROM pictures WHERE id = ?`, id.String())
	pic, err := scanPicture(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get picture: %w", err)
	}
	return pic, nil
}

// UpdateRating sets the rating for id. Idempotent; ErrNotFound when the id
// is unknown.
func (c *Catalog) UpdateRating(id uuid.UUID, rating models.Rating) error {
	return c.updateColumn(id, "rating", rating.String())
}

// UpdateFlag sets the culling flag for id. Idempotent; ErrNotFound when
// the id is unknown.
func (c *Catalog) UpdateFlag(id uuid.UUID, flag models.Flag) error {
	return c.updateColumn(id, "flag", string(flag))
}

func (c *Catalog) updateColumn(id uuid.UUID, column, value string) error {
	res, err := c.db.Exec(
		fmt.Sprintf(`UPDATE pictures SET %s = ? WHERE id = ?`, column),
		value, id.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", column, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", column, err)
	}
	if n == 0 {
		return fmt.Errorf("update %s for %s: %w", column, id, ErrNotFound)
	}
	return nil
}

// Rename records a new location for id after the file was moved on disk.
// The id is unaffected; references held elsewhere stay valid.
func (c *Catalog) Rename(id uuid.UUID, directory, filename string) error {
	res, err := c.db.Exec(
		`UPDATE pictures SET directory = ?, filename = ? WHERE id = ?`,
		directory, filename, id.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to rename picture: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to rename picture: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("rename %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes the record for id. Deleting an unknown id is a no-op.
func (c *Catalog) Delete(id uuid.UUID) error {
	_, err := c.db.Exec(`DELETE FROM pictures WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete picture: %w", err)
	}
	return nil
}

// FindByShortHash returns every record sharing the short hash. More than
// one result signals a candidate-duplicate set awaiting full-hash
// adjudication.
func (c *Catalog) FindByShortHash(shortHash []byte) ([]*models.Picture, error) {
	rows, err := c.db.Query(selectColumns+` FROM pictures WHERE short_hash = ?`, shortHash)
	if err != nil {
		return nil, fmt.Errorf("failed to query by short hash: %w", err)
	}
	defer rows.Close()

	return collectPictures(rows)
}

// ResolveDuplicate reports whether the file at path duplicates an existing
// record, using the lazy two-tier strategy: the short hash pre-filters and
// full hashes are materialised only when a collision is observed. The
// returned record is the confirmed duplicate, or nil when the candidate is
// new.
func (c *Catalog) ResolveDuplicate(path string, shortHash []byte) (*models.Picture, error) {
	unlock := c.lockBucket(shortHash)
	defer unlock()

	dup, _, err := c.resolveDuplicate(path, shortHash)
	return dup, err
}

// ImportPicture runs resolve-and-insert as one critical section per short
// hash bucket, so two concurrent imports of the same new file cannot both
// decide it is unseen. It returns the existing duplicate when the
// candidate was skipped, or nil after a successful insert.
func (c *Catalog) ImportPicture(pic *models.Picture) (*models.Picture, error) {
	if len(pic.ShortHash) == 0 {
		return nil, errors.New("import requires a computed short hash")
	}

	unlock := c.lockBucket(pic.ShortHash)
	defer unlock()

	dup, fullHash, err := c.resolveDuplicate(pic.Path(), pic.ShortHash)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return dup, nil
	}

	// A collision was observed but the content is distinct; keep the
	// full hash we already paid for.
	if fullHash != nil {
		pic.FullHash = fullHash
	}

	if _, err := c.Insert(pic); err != nil {
		return nil, err
	}
	return nil, nil
}

// resolveDuplicate is the collision-triggered duplicate check. The caller
// must hold the bucket lock for shortHash. When full hashing was needed,
// the candidate's full hash is returned for the caller to persist.
func (c *Catalog) resolveDuplicate(path string, shortHash []byte) (*models.Picture, []byte, error) {
	existing, err := c.FindByShortHash(shortHash)
	if err != nil {
		return nil, nil, err
	}
	if len(existing) == 0 {
		// No collision: the cheap hash is enough for now.
		return nil, nil, nil
	}

	fullHash, err := hash.FullFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash candidate %s: %w", path, err)
	}

	for _, ex := range existing {
		if ex.FullHash == nil {
			// Deferred-cost materialisation: the existing record was
			// never part of a collision until now.
			exFull, err := hash.FullFile(ex.Path())
			if err != nil {
				return nil, nil, fmt.Errorf("failed to hash existing %s: %w", ex.Path(), err)
			}
			if err := c.setFullHash(ex.ID, exFull); err != nil {
				return nil, nil, err
			}
			ex.FullHash = exFull
		}
		if bytes.Equal(ex.FullHash, fullHash) {
			return ex, fullHash, nil
		}
	}

	return nil, fullHash, nil
}

func (c *Catalog) setFullHash(id uuid.UUID, fullHash []byte) error {
	_, err := c.db.Exec(`UPDATE pictures SET full_hash = ? WHERE id = ?`, fullHash, id.String())
	if err != nil {
		return fmt.Errorf("failed to store full hash: %w", err)
	}
	return nil
}

// lockBucket acquires the mutex for one short hash value and returns its
// release function.
func (c *Catalog) lockBucket(shortHash []byte) func() {
	key := string(shortHash)

	c.bucketMu.Lock()
	mu, ok := c.buckets[key]
	if !ok {
		mu = &sync.Mutex{}
		c.buckets[key] = mu
	}
	c.bucketMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

const selectColumns = `SELECT id, directory, filename, raw_filename, short_hash, full_hash, capture_time, rating, flag`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPicture(row rowScanner) (*models.Picture, error) {
	var (
		pic         models.Picture
		idText      string
		rawFilename sql.NullString
		captureTime sql.NullString
		rating      sql.NullString
		flag        sql.NullString
	)

	err := row.Scan(
		&idText,
		&pic.Directory,
		&pic.Filename,
		&rawFilename,
		&pic.ShortHash,
		&pic.FullHash,
		&captureTime,
		&rating,
		&flag,
	)
	if err != nil {
		return nil, err
	}

	pic.ID, err = uuid.Parse(idText)
	if err != nil {
		return nil, fmt.Errorf("invalid picture id %q: %w", idText, err)
	}
	pic.RawFilename = rawFilename.String
	if captureTime.Valid {
		t, err := time.Parse(timeLayout, captureTime.String)
		if err != nil {
			return nil, fmt.Errorf("invalid capture time %q: %w", captureTime.String, err)
		}
		pic.CaptureTime = &t
	}
	if rating.Valid {
		r, err := models.ParseRating(rating.String)
		if err != nil {
			return nil, err
		}
		pic.Rating = &r
	}
	pic.Flag = models.FlagUnset
	if flag.Valid {
		f, err := models.ParseFlag(flag.String)
		if err != nil {
			return nil, err
		}
		pic.Flag = f
	}

	return &pic, nil
}

func collectPictures(rows *sql.Rows) ([]*models.Picture, error) {
	var pictures []*models.Picture
	for rows.Next() {
		pic, err := scanPicture(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		pictures = append(pictures, pic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return pictures, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func nullRating(r *models.Rating) any {
	if r == nil {
		return nil
	}
	return r.String()
}
