package scope

import (
	"go.uber.org/multierr"

	"github.com/wippyai/dispose/errors"
	"github.com/wippyai/dispose/resource"
)

// Batch is an ordered collection of resources that can be released as a unit.
//
// Batch is not safe for concurrent use. A Scope guards its two batches with
// its own lock.
type Batch struct {
	items []resource.Resource
}

// Append adds r to the end of the batch. Duplicates and nil are allowed.
func (b *Batch) Append(r resource.Resource) {
	b.items = append(b.items, r)
}

// Remove removes the first entry identical to r and reports whether one was found.
func (b *Batch) Remove(r resource.Resource) bool {
	i := b.index(r)
	if i < 0 {
		return false
	}
	copy(b.items[i:], b.items[i+1:])
	b.items[len(b.items)-1] = nil
	b.items = b.items[:len(b.items)-1]
	return true
}

// Contains reports whether an entry identical to r is present.
func (b *Batch) Contains(r resource.Resource) bool {
	return b.index(r) >= 0
}

// Len returns the number of entries.
func (b *Batch) Len() int {
	return len(b.items)
}

// AppendTo appends the entries to dst in order and returns the extended slice.
func (b *Batch) AppendTo(dst []resource.Resource) []resource.Resource {
	return append(dst, b.items...)
}

// Clear empties the batch without releasing anything.
func (b *Batch) Clear() {
	clear(b.items)
	b.items = b.items[:0]
}

// Release releases every entry in order, then empties the batch.
//
// Nil entries are skipped. A typed nil, such as a nil *T stored in the
// interface, is not nil and is released like any other entry. A failing or
// panicking entry does not stop the sweep; all failures are returned
// combined with multierr.
//
// Releasing a nil *Batch is a no-op.
func (b *Batch) Release() error {
	if b == nil {
		return nil
	}
	_, err := releaseAll(b.items)
	b.Clear()
	return err
}

// detach drops the batch's reference to its entries without touching them,
// so an in-flight sweep over the old slice is unaffected.
func (b *Batch) detach() {
	b.items = nil
}

func (b *Batch) index(r resource.Resource) int {
	for i, item := range b.items {
		if resource.Same(item, r) {
			return i
		}
	}
	return -1
}

// releaseAll releases items in order and returns how many non-nil entries
// were attempted along with the combined failures.
func releaseAll(items []resource.Resource) (int, error) {
	var (
		attempted int
		errs      error
	)
	for i, r := range items {
		if r == nil {
			continue
		}
		attempted++
		errs = multierr.Append(errs, releaseOne(i, r))
	}
	return attempted, errs
}

func releaseOne(index int, r resource.Resource) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Panicked(index, r, p)
		}
	}()
	if rerr := r.Release(); rerr != nil {
		return errors.ReleaseFailed(index, r, rerr)
	}
	return nil
}
