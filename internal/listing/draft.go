package listing

import (
	"encoding/json"
	"reflect"
)

// Draft is an edit form's working copy plus the snapshot it started from.
type Draft[T any] struct {
	Original T
	Current  T
}

// NewDraft snapshots v. Current is a deep copy, so edits to it never reach
// Original or the list row v came from.
func NewDraft[T any](v T) (*Draft[T], error) {
	orig, err := deepCopy(v)
	if err != nil {
		return nil, err
	}
	cur, err := deepCopy(v)
	if err != nil {
		return nil, err
	}
	return &Draft[T]{Original: orig, Current: cur}, nil
}

// Dirty reports whether Current differs from Original.
func (d *Draft[T]) Dirty() bool {
	return !reflect.DeepEqual(d.Original, d.Current)
}

// Reset discards edits.
func (d *Draft[T]) Reset() error {
	cur, err := deepCopy(d.Original)
	if err != nil {
		return err
	}
	d.Current = cur
	return nil
}

func deepCopy[T any](v T) (T, error) {
	var out T
	data, err := json.Marshal(v)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(data, &out)
	return out, err
}
