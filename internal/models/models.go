package models

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Picture is one catalog entry per distinct physical file.
//
// The ID is assigned once at first insertion and never changes; it is the
// only value other components may hold long-term. Directory and Filename
// describe the current location and change when the file is moved.
type Picture struct {
	ID          uuid.UUID  `json:"id"`
	Directory   string     `json:"directory"`
	Filename    string     `json:"filename"`
	RawFilename string     `json:"raw_filename,omitempty"` // paired RAW sibling, "" when none
	ShortHash   []byte     `json:"short_hash,omitempty"`   // digest of a bounded prefix, nil until first read
	FullHash    []byte     `json:"full_hash,omitempty"`    // digest of the whole file, computed on collision
	CaptureTime *time.Time `json:"capture_time,omitempty"`
	Rating      *Rating    `json:"rating,omitempty"`
	Flag        Flag       `json:"flag"`
}

// Path returns the current on-disk location of the picture.
func (p *Picture) Path() string {
	return filepath.Join(p.Directory, p.Filename)
}

// RawPath returns the location of the paired RAW file, or "" when the
// picture has no RAW sibling.
func (p *Picture) RawPath() string {
	if p.RawFilename == "" {
		return ""
	}
	return filepath.Join(p.Directory, p.RawFilename)
}

// Rating is a user-assigned quality score from zero to five stars.
type Rating int

const (
	RatingZero Rating = iota
	RatingOne
	RatingTwo
	RatingThree
	RatingFour
	RatingFive
)

var ratingNames = [...]string{"Zero", "One", "Two", "Three", "Four", "Five"}

func (r Rating) String() string {
	if r < RatingZero || r > RatingFive {
		return fmt.Sprintf("Rating(%d)", int(r))
	}
	return ratingNames[r]
}

// ParseRating converts the stored text form back into a Rating.
func ParseRating(s string) (Rating, error) {
	for i, name := range ratingNames {
		if s == name {
			return Rating(i), nil
		}
	}
	return RatingZero, fmt.Errorf("unknown rating %q", s)
}

// NewRating validates an integer star count.
func NewRating(stars int) (Rating, error) {
	if stars < 0 || stars > 5 {
		return RatingZero, fmt.Errorf("rating %d out of range 0-5", stars)
	}
	return Rating(stars), nil
}

// Flag records the culling decision for a picture.
type Flag string

const (
	FlagUnset  Flag = "Unset"
	FlagPick   Flag = "Pick"
	FlagReject Flag = "Reject"
)

// ParseFlag converts the stored text form back into a Flag.
func ParseFlag(s string) (Flag, error) {
	switch Flag(s) {
	case FlagUnset, FlagPick, FlagReject:
		return Flag(s), nil
	}
	return FlagUnset, fmt.Errorf("unknown flag %q", s)
}

// ImportReport summarises one import batch.
type ImportReport struct {
	Imported int             `json:"imported"`
	Skipped  int             `json:"skipped"` // confirmed duplicates
	Failed   int             `json:"failed"`
	Failures []ImportFailure `json:"failures,omitempty"`
}

// ImportFailure records a single file that could not be imported.
type ImportFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}
