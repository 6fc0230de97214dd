// Package importer walks directories for photographs, hashes them and adds
// the ones the catalog has not seen before.
package importer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/malramsay64/decimator/internal/catalog"
	"github.com/malramsay64/decimator/internal/exifmeta"
	"github.com/malramsay64/decimator/internal/hash"
	"github.com/malramsay64/decimator/internal/models"
)

// candidate is one file to run through the import pipeline. RAW siblings
// of a JPEG travel with the JPEG rather than as their own candidate.
type candidate struct {
	directory   string
	filename    string
	rawFilename string
}

// Importer orchestrates the import pipeline: enumerate files, pair RAW
// siblings, hash in parallel and insert non-duplicates into the catalog.
type Importer struct {
	catalog    *catalog.Catalog
	workers    int
	log        *slog.Logger
	progressFn func(done, total int, current string)
}

// Option configures an Importer
type Option func(*Importer)

// WithWorkers sets the number of parallel hashing workers
func WithWorkers(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.workers = n
		}
	}
}

// WithProgress sets a progress callback
func WithProgress(fn func(done, total int, current string)) Option {
	return func(im *Importer) {
		im.progressFn = fn
	}
}

// WithLogger sets the logger for per-file diagnostics
func WithLogger(log *slog.Logger) Option {
	return func(im *Importer) {
		im.log = log
	}
}

// New creates an Importer writing into cat.
func New(cat *catalog.Catalog, opts ...Option) *Importer {
	im := &Importer{
		catalog: cat,
		workers: 8,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// IsJPEG reports whether path names a JPEG file.
func IsJPEG(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return true
	default:
		return false
	}
}

// IsRaw reports whether path names a camera RAW file.
func IsRaw(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".raw", ".arw", ".raf", ".nef", ".cr2", ".cr3", ".dng":
		return true
	default:
		return false
	}
}

// Import runs the pipeline over every directory, recursively. Per-file
// failures are recorded in the report and never abort the batch; one
// corrupt file must not block the other ten thousand.
func (im *Importer) Import(directories []string) (*models.ImportReport, error) {
	var candidates []candidate
	for _, dir := range directories {
		found, err := im.collect(dir)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, found...)
	}

	report := &models.ImportReport{}
	if len(candidates) == 0 {
		return report, nil
	}

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		done  int
		total = len(candidates)
	)

	work := make(chan candidate, len(candidates))
	for _, c := range candidates {
		work <- c
	}
	close(work)

	for i := 0; i < im.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range work {
				dup, err := im.importOne(c)

				mu.Lock()
				switch {
				case err != nil:
					report.Failed++
					report.Failures = append(report.Failures, models.ImportFailure{
						Path:   filepath.Join(c.directory, c.filename),
						Reason: err.Error(),
					})
				case dup != nil:
					report.Skipped++
				default:
					report.Imported++
				}
				done++
				n := done
				mu.Unlock()

				if im.progressFn != nil {
					im.progressFn(n, total, filepath.Join(c.directory, c.filename))
				}
			}
		}()
	}

	wg.Wait()

	return report, nil
}

// importOne hashes a single candidate and hands it to the catalog. The
// returned picture is the existing duplicate when the candidate was
// skipped.
func (im *Importer) importOne(c candidate) (*models.Picture, error) {
	path := filepath.Join(c.directory, c.filename)

	shortHash, err := hash.ShortFile(path)
	if err != nil {
		return nil, err
	}

	pic := &models.Picture{
		Directory:   c.directory,
		Filename:    c.filename,
		RawFilename: c.rawFilename,
		ShortHash:   shortHash,
		Flag:        models.FlagUnset,
	}

	// Absent or malformed EXIF is not a failure; the picture simply has
	// no capture time.
	if t, err := exifmeta.CaptureTime(path); err == nil {
		pic.CaptureTime = &t
	} else {
		im.log.Debug("no capture time", "path", path, "error", err)
	}

	dup, err := im.catalog.ImportPicture(pic)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		im.log.Debug("skipping duplicate", "path", path, "existing", dup.Path())
	}
	return dup, nil
}

// collect walks dir recursively and builds the candidate list: every JPEG,
// with its RAW sibling attached when one shares the base filename, plus
// any RAW file without a JPEG sibling.
func (im *Importer) collect(dir string) ([]candidate, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("directory not found: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	// jpegs and raws per directory, keyed by lowercased base filename.
	type dirFiles struct {
		jpegs map[string]string
		raws  map[string]string
	}
	byDir := make(map[string]*dirFiles)

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}
		if info.IsDir() {
			return nil
		}

		d := filepath.Dir(path)
		name := filepath.Base(path)
		base := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))

		files, ok := byDir[d]
		if !ok {
			files = &dirFiles{jpegs: make(map[string]string), raws: make(map[string]string)}
			byDir[d] = files
		}

		switch {
		case IsJPEG(path):
			files.jpegs[base] = name
		case IsRaw(path):
			files.raws[base] = name
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	var candidates []candidate
	for d, files := range byDir {
		for base, jpeg := range files.jpegs {
			candidates = append(candidates, candidate{
				directory:   d,
				filename:    jpeg,
				rawFilename: files.raws[base],
			})
		}
		for base, raw := range files.raws {
			if _, paired := files.jpegs[base]; !paired {
				candidates = append(candidates, candidate{directory: d, filename: raw})
			}
		}
	}

	return candidates, nil
}
