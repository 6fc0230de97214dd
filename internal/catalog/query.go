package catalog

import (
	"fmt"
	"strings"

	"github.com/malramsay64/decimator/internal/models"
)

// Filter selects a subset of the catalog. Each field is match-any-of over
// its values; an empty field places no restriction. Fields combine with
// AND.
type Filter struct {
	Directories []string
	Flags       []models.Flag
	Ratings     []models.Rating
}

// Sort is the ordering applied to query results. Capture time is the
// default ordering and the tiebreak for filename sorts; filename breaks
// capture-time ties.
type Sort int

const (
	SortCaptureTimeAsc Sort = iota
	SortCaptureTimeDesc
	SortFilenameAsc
	SortFilenameDesc
)

func (s Sort) orderBy() string {
	switch s {
	case SortCaptureTimeDesc:
		return "capture_time DESC, filename DESC"
	case SortFilenameAsc:
		return "filename ASC, capture_time ASC"
	case SortFilenameDesc:
		return "filename DESC, capture_time DESC"
	default:
		return "capture_time ASC, filename ASC"
	}
}

// ParseSort converts a CLI/config spelling into a Sort.
func ParseSort(s string) (Sort, error) {
	switch s {
	case "", "capture-asc", "capture":
		return SortCaptureTimeAsc, nil
	case "capture-desc":
		return SortCaptureTimeDesc, nil
	case "filename-asc", "filename":
		return SortFilenameAsc, nil
	case "filename-desc":
		return SortFilenameDesc, nil
	}
	return SortCaptureTimeAsc, fmt.Errorf("unknown sort order %q", s)
}

// Query returns the pictures matching filter in the given order.
func (c *Catalog) Query(filter Filter, sort Sort) ([]*models.Picture, error) {
	var (
		conds []string
		args  []any
	)

	if len(filter.Directories) > 0 {
		conds = append(conds, "directory IN ("+placeholders(len(filter.Directories))+")")
		for _, d := range filter.Directories {
			args = append(args, d)
		}
	}

	if len(filter.Flags) > 0 {
		cond := "flag IN (" + placeholders(len(filter.Flags)) + ")"
		includesUnset := false
		for _, f := range filter.Flags {
			args = append(args, string(f))
			if f == models.FlagUnset {
				includesUnset = true
			}
		}
		if includesUnset {
			// Records written before any culling decision may hold NULL.
			cond = "(" + cond + " OR flag IS NULL)"
		}
		conds = append(conds, cond)
	}

	if len(filter.Ratings) > 0 {
		conds = append(conds, "rating IN ("+placeholders(len(filter.Ratings))+")")
		for _, r := range filter.Ratings {
			args = append(args, r.String())
		}
	}

	query := selectColumns + " FROM pictures"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY " + sort.orderBy()

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pictures: %w", err)
	}
	defer rows.Close()

	return collectPictures(rows)
}

// Directories returns every distinct directory in the catalog.
func (c *Catalog) Directories() ([]string, error) {
	rows, err := c.db.Query(`SELECT DISTINCT directory FROM pictures ORDER BY directory`)
	if err != nil {
		return nil, fmt.Errorf("failed to query directories: %w", err)
	}
	defer rows.Close()

	var dirs []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		dirs = append(dirs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return dirs, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
