package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"math/big"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Visit translates one value of a graph being deep-translated.
type Visit func(ctx context.Context, v any) (any, error)

// Translatable is implemented by types that translate themselves.
// TranslateStrings must return a translated copy of the receiver, of the
// same type, using visit for every nested value. Errors other than hard
// failures are logged and the receiver is kept as is.
type Translatable interface {
	TranslateStrings(ctx context.Context, visit Visit) (any, error)
}

// VisitAs runs visit on v and converts the result back to T.
// It is meant for Translatable implementations.
func VisitAs[T any](ctx context.Context, visit Visit, v T) (T, error) {
	out, err := visit(ctx, v)
	if err != nil {
		return v, err
	}
	if t, ok := out.(T); ok {
		return t, nil
	}
	return v, nil
}

// skipTag excludes a struct field from translation: `i18n:"-"`.
const skipTag = "i18n"

var (
	errorType        = reflect.TypeFor[error]()
	awaiterType      = reflect.TypeFor[Awaiter]()
	translatableType = reflect.TypeFor[Translatable]()
	futureType       = reflect.TypeFor[*Future]()
)

func defaultOpaqueTypes() map[reflect.Type]struct{} {
	types := []reflect.Type{
		reflect.TypeFor[time.Time](),
		reflect.TypeFor[time.Location](),
		reflect.TypeFor[regexp.Regexp](),
		reflect.TypeFor[url.URL](),
		reflect.TypeFor[url.Userinfo](),
		reflect.TypeFor[url.Values](),
		reflect.TypeFor[http.Header](),
		reflect.TypeFor[http.Cookie](),
		reflect.TypeFor[big.Int](),
		reflect.TypeFor[big.Float](),
		reflect.TypeFor[big.Rat](),
		reflect.TypeFor[bytes.Buffer](),
		reflect.TypeFor[bytes.Reader](),
		reflect.TypeFor[strings.Reader](),
		reflect.TypeFor[json.RawMessage](),
		reflect.TypeFor[os.File](),
		reflect.TypeFor[multipart.FileHeader](),
		reflect.TypeFor[multipart.Form](),
		reflect.TypeFor[sync.Mutex](),
		reflect.TypeFor[sync.RWMutex](),
		reflect.TypeFor[sync.Map](),
		reflect.TypeFor[sync.WaitGroup](),
		reflect.TypeFor[sync.Once](),
	}
	m := make(map[reflect.Type]struct{}, len(types))
	for _, t := range types {
		m[t] = struct{}{}
	}
	return m
}

type visitKey struct {
	typ  reflect.Type
	ptr  uintptr
	size int
}

// walker performs one deep translation. The visited set lives as long as
// the call and is shared by all goroutines of it.
type walker struct {
	svc      *Service
	visited  map[visitKey]struct{}
	contains map[reflect.Type]bool
	locale   string
	mu       sync.Mutex
}

func newWalker(svc *Service, locale string) *walker {
	return &walker{
		svc:      svc,
		locale:   locale,
		visited:  make(map[visitKey]struct{}),
		contains: make(map[reflect.Type]bool),
	}
}

// enter marks a reference as visited. It returns false when the reference
// was seen before.
func (w *walker) enter(v reflect.Value) bool {
	key := visitKey{typ: v.Type(), ptr: v.Pointer()}
	if v.Kind() == reflect.Slice {
		key.size = v.Len()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.visited[key]; ok {
		return false
	}
	w.visited[key] = struct{}{}
	return true
}

func (w *walker) isOpaque(t reflect.Type) bool {
	if _, ok := w.svc.opaque[t]; ok {
		return true
	}
	if t.Kind() == reflect.Pointer {
		if _, ok := w.svc.opaque[t.Elem()]; ok {
			return true
		}
	}
	return t.Implements(errorType)
}

// mayContainStrings reports whether a value of type t can hold anything
// worth translating. Results are memoized per call.
func (w *walker) mayContainStrings(t reflect.Type) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if v, ok := w.contains[t]; ok {
		return v
	}
	v := w.scanType(t, make(map[reflect.Type]bool))
	w.contains[t] = v
	return v
}

func (w *walker) scanType(t reflect.Type, seen map[reflect.Type]bool) bool {
	if seen[t] {
		return false
	}
	seen[t] = true

	if t.Implements(awaiterType) || t.Implements(translatableType) {
		return true
	}
	if w.isOpaque(t) {
		return false
	}

	switch t.Kind() {
	case reflect.String, reflect.Interface:
		return true
	case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Map:
		return w.scanType(t.Elem(), seen)
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() || f.Tag.Get(skipTag) == "-" {
				continue
			}
			if w.scanType(f.Type, seen) {
				return true
			}
		}
	}
	return false
}

func (w *walker) visitAny(ctx context.Context, v any) (any, error) {
	out, err := w.visit(ctx, reflect.ValueOf(v))
	if err != nil {
		return v, err
	}
	if !out.IsValid() {
		return nil, nil
	}
	return out.Interface(), nil
}

// visit returns the translated counterpart of v. The result has the type of
// v, except for awaited values, which yield whatever they resolved to.
func (w *walker) visit(ctx context.Context, v reflect.Value) (reflect.Value, error) {
	if !v.IsValid() {
		return v, nil
	}
	if err := ctx.Err(); err != nil {
		return v, err
	}

	t := v.Type()
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return v, nil
		}
	}

	if t.Kind() == reflect.Interface {
		inner, err := w.visit(ctx, v.Elem())
		if err != nil {
			return v, err
		}
		return assign(inner, t, v), nil
	}

	if t.Implements(awaiterType) {
		return w.await(ctx, v)
	}
	if t.Implements(translatableType) {
		out, ok, err := w.translatable(ctx, v)
		if err != nil || ok {
			return out, err
		}
		// The method was promoted from an embedded field: walk the
		// outer value field by field instead.
		if t.Kind() == reflect.Pointer {
			return w.copyPointer(ctx, v)
		}
	}
	if w.isOpaque(t) || !w.mayContainStrings(t) {
		return v, nil
	}

	switch t.Kind() {
	case reflect.String:
		return w.visitString(ctx, v)
	case reflect.Pointer:
		return w.visitPointer(ctx, v)
	case reflect.Struct:
		return w.visitStruct(ctx, v)
	case reflect.Map:
		return w.visitMap(ctx, v)
	case reflect.Slice, reflect.Array:
		return w.visitList(ctx, v)
	default:
		return v, nil
	}
}

func (w *walker) visitString(ctx context.Context, v reflect.Value) (reflect.Value, error) {
	in := v.String()
	out, err := w.svc.TranslateString(ctx, w.locale, in)
	if err != nil {
		return v, err
	}
	if out == in {
		return v, nil
	}
	nv := reflect.New(v.Type()).Elem()
	nv.SetString(out)
	return nv, nil
}

// await resolves a pending value and translates the result. Nested pending
// values are handled by the recursive visit.
func (w *walker) await(ctx context.Context, v reflect.Value) (reflect.Value, error) {
	resolved, err := v.Interface().(Awaiter).Await(ctx)
	if err != nil {
		return v, err
	}
	return w.visit(ctx, reflect.ValueOf(resolved))
}

// translatable runs the value's own traversal. ok is false when the result
// does not fit the value's type, which happens when TranslateStrings is
// promoted from an embedded field.
func (w *walker) translatable(ctx context.Context, v reflect.Value) (_ reflect.Value, ok bool, _ error) {
	if v.Kind() == reflect.Pointer && !w.enter(v) {
		return v, true, nil
	}

	out, err := v.Interface().(Translatable).TranslateStrings(ctx, w.visitAny)
	if err != nil {
		if IsHTTPError(err) || ctx.Err() != nil {
			return v, true, err
		}
		w.svc.logger.WarnContext(ctx, "translatable value failed",
			slog.String("type", v.Type().String()),
			slog.Any("error", err),
		)
		return v, true, nil
	}

	if out == nil {
		return v, true, nil
	}
	rv := reflect.ValueOf(out)
	if !rv.Type().AssignableTo(v.Type()) && !futureType.AssignableTo(v.Type()) {
		return v, false, nil
	}
	return assign(rv, v.Type(), v), true, nil
}

func (w *walker) visitPointer(ctx context.Context, v reflect.Value) (reflect.Value, error) {
	if !w.enter(v) {
		return v, nil
	}
	return w.copyPointer(ctx, v)
}

// copyPointer translates the pointee of an already entered pointer.
func (w *walker) copyPointer(ctx context.Context, v reflect.Value) (reflect.Value, error) {
	elem, err := w.visit(ctx, v.Elem())
	if err != nil {
		return v, err
	}

	p := reflect.New(v.Type().Elem())
	p.Elem().Set(assign(elem, v.Type().Elem(), v.Elem()))
	return p, nil
}

func (w *walker) visitStruct(ctx context.Context, v reflect.Value) (reflect.Value, error) {
	t := v.Type()

	var fields []int
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get(skipTag) == "-" || !w.mayContainStrings(f.Type) {
			continue
		}
		fields = append(fields, i)
	}

	results := make([]reflect.Value, len(fields))
	err := w.each(ctx, len(fields), func(ctx context.Context, n int) error {
		out, err := w.visit(ctx, v.Field(fields[n]))
		results[n] = out
		return err
	})
	if err != nil {
		return v, err
	}

	out := reflect.New(t).Elem()
	out.Set(v)
	for n, i := range fields {
		out.Field(i).Set(assign(results[n], t.Field(i).Type, v.Field(i)))
	}
	return out, nil
}

func (w *walker) visitMap(ctx context.Context, v reflect.Value) (reflect.Value, error) {
	if !w.enter(v) {
		return v, nil
	}

	t := v.Type()
	keys := make([]reflect.Value, 0, v.Len())
	values := make([]reflect.Value, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		keys = append(keys, iter.Key())
		values = append(values, iter.Value())
	}

	results := make([]reflect.Value, len(values))
	err := w.each(ctx, len(values), func(ctx context.Context, n int) error {
		out, err := w.visit(ctx, values[n])
		results[n] = out
		return err
	})
	if err != nil {
		return v, err
	}

	out := reflect.MakeMapWithSize(t, len(keys))
	for n, k := range keys {
		out.SetMapIndex(k, assign(results[n], t.Elem(), values[n]))
	}
	return out, nil
}

func (w *walker) visitList(ctx context.Context, v reflect.Value) (reflect.Value, error) {
	t := v.Type()
	if t.Kind() == reflect.Slice && !w.enter(v) {
		return v, nil
	}

	results := make([]reflect.Value, v.Len())
	err := w.each(ctx, v.Len(), func(ctx context.Context, n int) error {
		out, err := w.visit(ctx, v.Index(n))
		results[n] = out
		return err
	})
	if err != nil {
		return v, err
	}

	var out reflect.Value
	if t.Kind() == reflect.Slice {
		out = reflect.MakeSlice(t, v.Len(), v.Len())
	} else {
		out = reflect.New(t).Elem()
	}
	for n := range results {
		out.Index(n).Set(assign(results[n], t.Elem(), v.Index(n)))
	}
	return out, nil
}

// each runs fn for indexes [0, n) concurrently and stops at the first error.
func (w *walker) each(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	switch n {
	case 0:
		return nil
	case 1:
		return fn(ctx, 0)
	}

	f := newFanout(ctx, w.svc.concurrency)
	for i := range n {
		f.Go(func(ctx context.Context) error {
			return fn(ctx, i)
		})
	}
	return f.Wait()
}

// assign adapts a translated value to a slot of type target. Awaited
// values that no longer fit are wrapped back into a resolved Future; when
// nothing fits the original value is kept.
func assign(out reflect.Value, target reflect.Type, orig reflect.Value) reflect.Value {
	if !out.IsValid() {
		return reflect.Zero(target)
	}
	if out.Type().AssignableTo(target) {
		return out
	}
	if futureType.AssignableTo(target) {
		return reflect.ValueOf(Resolved(out.Interface()))
	}
	return orig
}
