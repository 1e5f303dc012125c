// Package clipboard holds a single deep-copied item for copy and paste
// inside a designer.
package clipboard

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/mitchellh/copystructure"
)

// ErrUnexportedField is returned by DeepCopy for values holding structs with
// unexported fields, which the reflection based copy cannot reach.
var ErrUnexportedField = errors.New("clipboard: value has unexported fields")

// Copier deep copies a value.
type Copier[T any] func(T) (T, error)

// Clipboard stores at most one item. Copy and Paste both deep copy, so the
// stored item never aliases the source or an earlier paste.
// A Clipboard is not safe for concurrent use.
type Clipboard[T any] struct {
	item   T
	has    bool
	copier Copier[T]
}

// Option configures a Clipboard.
type Option[T any] func(*Clipboard[T])

// WithCopier replaces the reflection based deep copy. Types with unexported
// struct fields need one: DeepCopy refuses them with ErrUnexportedField
// rather than dropping those fields.
func WithCopier[T any](fn Copier[T]) Option[T] {
	return func(c *Clipboard[T]) {
		c.copier = fn
	}
}

// New returns an empty Clipboard.
//
// Example:
//
//	cb := clipboard.New[Widget]()
//	_ = cb.Copy(selected)
//	if w, ok, err := cb.Paste(); err == nil && ok {
//	    w.ID = newID()
//	    layout.Add(w)
//	}
func New[T any](opts ...Option[T]) *Clipboard[T] {
	c := &Clipboard[T]{copier: DeepCopy[T]}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DeepCopy copies v with copystructure. Values containing a struct with
// unexported fields fail with ErrUnexportedField; types registered in
// copystructure.Copiers, such as time.Time, are copied as a whole.
func DeepCopy[T any](v T) (T, error) {
	var zero T
	if err := checkExported(reflect.ValueOf(v), make(map[uintptr]bool)); err != nil {
		return zero, err
	}
	out, err := copystructure.Copy(v)
	if err != nil {
		return zero, fmt.Errorf("clipboard: copy: %w", err)
	}
	if out == nil {
		return zero, nil
	}
	t, ok := out.(T)
	if !ok {
		return zero, fmt.Errorf("clipboard: copy returned %T", out)
	}
	return t, nil
}

// Copy stores a deep copy of item, replacing any previous content. On error
// the previous content is kept.
func (c *Clipboard[T]) Copy(item T) error {
	cp, err := c.copier(item)
	if err != nil {
		return err
	}
	c.item = cp
	c.has = true
	return nil
}

// Paste returns a fresh deep copy of the stored item. ok is false when the
// clipboard is empty.
func (c *Clipboard[T]) Paste() (item T, ok bool, err error) {
	if !c.has {
		return item, false, nil
	}
	item, err = c.copier(c.item)
	if err != nil {
		return item, false, err
	}
	return item, true, nil
}

// HasContent reports whether an item is stored.
func (c *Clipboard[T]) HasContent() bool {
	return c.has
}

// Clear empties the clipboard.
func (c *Clipboard[T]) Clear() {
	var zero T
	c.item = zero
	c.has = false
}

// checkExported walks v and fails on the first struct with an unexported
// field. seen guards against pointer cycles.
func checkExported(v reflect.Value, seen map[uintptr]bool) error {
	if !v.IsValid() {
		return nil
	}
	if _, ok := copystructure.Copiers[v.Type()]; ok {
		return nil
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() || seen[v.Pointer()] {
			return nil
		}
		seen[v.Pointer()] = true
		return checkExported(v.Elem(), seen)
	case reflect.Interface:
		return checkExported(v.Elem(), seen)
	case reflect.Struct:
		t := v.Type()
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				return fmt.Errorf("%w: %s.%s", ErrUnexportedField, t, f.Name)
			}
			if err := checkExported(v.Field(i), seen); err != nil {
				return err
			}
		}
	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			if err := checkExported(v.Index(i), seen); err != nil {
				return err
			}
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if err := checkExported(iter.Key(), seen); err != nil {
				return err
			}
			if err := checkExported(iter.Value(), seen); err != nil {
				return err
			}
		}
	}
	return nil
}
