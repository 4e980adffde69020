package resolver

import (
	"errors"
	"fmt"

	"github.com/udisondev/craftplan/internal/data"
)

// ErrNotFound is returned when the dataset is loaded but has no entry with
// the requested id.
var ErrNotFound = errors.New("reference not found")

// UnknownReferenceTypeError reports a tag outside the accepted enumeration.
type UnknownReferenceTypeError struct {
	Type string
}

func (e *UnknownReferenceTypeError) Error() string {
	return fmt.Sprintf("unknown reference type %q", e.Type)
}

// DatasetNotLoadedError reports a lookup against a dataset whose index has
// not been built. Hint tells the user how to make the dataset available.
type DatasetNotLoadedError struct {
	Dataset data.Dataset
	Hint    string
}

func (e *DatasetNotLoadedError) Error() string {
	return fmt.Sprintf("dataset %s not loaded: %s", e.Dataset, e.Hint)
}

func notLoaded(ds data.Dataset) *DatasetNotLoadedError {
	return &DatasetNotLoadedError{
		Dataset: ds,
		Hint:    fmt.Sprintf("add %s to the data directory and reload datasets", data.Files[ds]),
	}
}
