// Copyright (c) 2026 Crudkit. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"

	"github.com/uptrace/bun"

	"github.com/taibuivan/crudkit/internal/platform/entity"
)

// ErrUnknownNavigation is returned when an explicit path names a field the
// model does not have, or a field that is not a relation.
var ErrUnknownNavigation = errors.New("repository: unknown navigation")

/*
Loader describes which related data to fetch alongside T.

Two kinds of loading are supported:

  - Include: eager bun relations joined into (or batched with) the main query.
  - Explicit: navigation chains of Go field names walked after the main query,
    one hop at a time, e.g. Explicit("CreatedBy", "UserProfile").

Example:

	loader := repository.NewLoader[identity.Account]().
		Include("UserProfile").
		Explicit("Roles", "Role", "Claims")
*/
type Loader[T any] struct {
	relations []string
	shapers   []QueryFunc
	paths     [][]string
}

// NewLoader returns an empty loader.
func NewLoader[T any]() *Loader[T] {
	return &Loader[T]{}
}

// Include adds eager relations by bun relation name.
func (l *Loader[T]) Include(relations ...string) *Loader[T] {
	l.relations = append(l.relations, relations...)
	return l
}

// IncludeWith adds an arbitrary eager transform of the main query.
func (l *Loader[T]) IncludeWith(fn QueryFunc) *Loader[T] {
	if fn != nil {
		l.shapers = append(l.shapers, fn)
	}
	return l
}

// Explicit adds a navigation chain loaded after materialization.
func (l *Loader[T]) Explicit(path ...string) *Loader[T] {
	if len(path) > 0 {
		l.paths = append(l.paths, append([]string(nil), path...))
	}
	return l
}

// ApplyIncludes attaches the eager relations and transforms to q.
func (l *Loader[T]) ApplyIncludes(q *bun.SelectQuery) *bun.SelectQuery {
	for _, relation := range l.relations {
		q = q.Relation(relation)
	}
	for _, shape := range l.shapers {
		q = shape(q)
	}
	return q
}

// LoadExplicits walks every explicit path from entity. A nil entity or a loader
// without explicit paths is a no-op.
func (l *Loader[T]) LoadExplicits(ctx context.Context, db bun.IDB, item *T) error {
	if item == nil || len(l.paths) == 0 {
		return nil
	}

	for _, path := range l.paths {
		if err := LoadPath(ctx, db, item, path...); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader[T]) loadModel(ctx context.Context, db bun.IDB, model any) error {
	item, ok := model.(*T)
	if !ok {
		return fmt.Errorf("repository: loader for %T cannot load %T", (*T)(nil), model)
	}
	return l.LoadExplicits(ctx, db, item)
}

// # Explicit Loading

/*
LoadPath loads one navigation chain starting at model (a pointer to a bun model).

Per step:
  - Collection field: fetched in full, then the rest of the chain is walked
    for every element.
  - Reference field already populated: walked without fetching.
  - Reference field empty: fetched. If it stays empty or resolves to a zero id,
    the chain stops without error.
*/
func LoadPath(ctx context.Context, db bun.IDB, model any, path ...string) error {
	if len(path) == 0 {
		return nil
	}

	value := reflect.ValueOf(model)
	if !value.IsValid() || value.Kind() != reflect.Pointer || value.IsNil() {
		return nil
	}
	if value.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: %T is not a struct pointer", ErrUnknownNavigation, model)
	}

	step, rest := path[0], path[1:]

	field := value.Elem().FieldByName(step)
	if !field.IsValid() {
		return fmt.Errorf("%w: %s has no field %q", ErrUnknownNavigation, value.Elem().Type(), step)
	}

	switch field.Kind() {
	case reflect.Slice:
		if err := fetchNavigation(ctx, db, value, step); err != nil {
			return err
		}

		for i := 0; i < field.Len(); i++ {
			element := field.Index(i)
			if element.Kind() != reflect.Pointer {
				element = element.Addr()
			}
			if element.IsNil() {
				continue
			}
			if err := LoadPath(ctx, db, element.Interface(), rest...); err != nil {
				return err
			}
		}
		return nil

	case reflect.Pointer:
		if field.IsNil() {
			if err := fetchNavigation(ctx, db, value, step); err != nil {
				return err
			}
			if field.IsNil() {
				return nil
			}
			if identifiable, ok := field.Interface().(entity.Identifiable); ok && identifiable.GetID() == 0 {
				field.Set(reflect.Zero(field.Type()))
				return nil
			}
		}
		return LoadPath(ctx, db, field.Interface(), rest...)

	default:
		return fmt.Errorf("%w: %s.%s is not a relation", ErrUnknownNavigation, value.Elem().Type(), step)
	}
}

// fetchNavigation re-selects the parent by primary key with one relation and
// copies the loaded field back onto the parent.
func fetchNavigation(ctx context.Context, db bun.IDB, parent reflect.Value, step string) error {
	shadow := reflect.New(parent.Elem().Type())
	shadow.Elem().Set(parent.Elem())

	target := shadow.Elem().FieldByName(step)
	target.Set(reflect.Zero(target.Type()))

	err := db.NewSelect().
		Model(shadow.Interface()).
		WherePK().
		Relation(step).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("repository: load %s.%s: %w", parent.Elem().Type().Name(), step, err)
	}

	parent.Elem().FieldByName(step).Set(target)
	return nil
}
