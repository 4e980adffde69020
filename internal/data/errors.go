package data

import (
	"errors"
	"fmt"
)

// ErrSectionAbsent is returned when the simulator export has no section for
// the requested dataset.
var ErrSectionAbsent = errors.New("simulator section absent")

// DuplicateIDError reports two entries of one dataset sharing an id.
// The dataset is corrupt; the index is not built.
type DuplicateIDError struct {
	Dataset Dataset
	ID      string
	First   string // display name of the first entry
	Second  string // display name of the second entry
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("dataset %s: duplicate id %q shared by %q and %q", e.Dataset, e.ID, e.First, e.Second)
}

// MissingFieldError reports an entry without a mandatory field.
type MissingFieldError struct {
	Dataset Dataset
	Index   int // position of the entry in its document
	Field   string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("dataset %s: entry %d: missing required field %q", e.Dataset, e.Index, e.Field)
}
