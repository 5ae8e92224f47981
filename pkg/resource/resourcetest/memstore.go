// Package resourcetest provides an in-memory resource.Store for tests. It
// evaluates the same filter, sort, projection and paging rules the MongoDB
// store delegates to the server.
package resourcetest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"voyageiq/pkg/model"
	"voyageiq/pkg/query"
	"voyageiq/pkg/resource"
)

const (
	fieldID      = "_id"
	fieldVersion = "__v"
)

type MemStore[T any] struct {
	mu    sync.Mutex
	docs  []bson.M
	calls map[string]int
	fail  map[string]error
}

func NewMemStore[T any]() *MemStore[T] {
	return &MemStore[T]{
		calls: make(map[string]int),
		fail:  make(map[string]error),
	}
}

// FailWith makes every later call to method return err.
func (s *MemStore[T]) FailWith(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[method] = err
}

// Calls reports how many times method was invoked.
func (s *MemStore[T]) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// TotalCalls reports the number of calls across all methods.
func (s *MemStore[T]) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *MemStore[T]) enter(method string) error {
	s.calls[method]++
	return s.fail[method]
}

func (s *MemStore[T]) Insert(_ context.Context, doc *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Insert"); err != nil {
		return err
	}

	m, err := toMap(doc)
	if err != nil {
		return err
	}
	id := primitive.NewObjectID().Hex()
	m[fieldID] = id
	m[fieldVersion] = int32(0)
	s.docs = append(s.docs, m)

	if d, ok := any(doc).(model.Document); ok {
		d.SetID(id)
	}
	return nil
}

func (s *MemStore[T]) Find(_ context.Context, q query.Descriptor) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Find"); err != nil {
		return nil, err
	}

	var matched []bson.M
	for _, doc := range s.docs {
		if matches(doc, q.Filter) {
			matched = append(matched, doc)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		for _, f := range q.Sort {
			c := compareValues(lookup(matched[i], f.Field), lookup(matched[j], f.Field))
			if c == 0 {
				continue
			}
			if f.Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	start := int(min(q.Skip(), int64(len(matched))))
	end := len(matched)
	if q.Limit > 0 {
		end = min(start+q.Limit, len(matched))
	}

	items := make([]T, 0, end-start)
	for _, doc := range matched[start:end] {
		var item T
		if err := fromMap(project(doc, q.Include, q.Exclude), &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *MemStore[T]) Count(_ context.Context, filter map[string]any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Count"); err != nil {
		return 0, err
	}

	var n int64
	for _, doc := range s.docs {
		if matches(doc, filter) {
			n++
		}
	}
	return n, nil
}

func (s *MemStore[T]) FindByID(_ context.Context, id string) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("FindByID"); err != nil {
		return nil, err
	}

	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", resource.ErrNotFound, id)
	}
	return s.decode(s.docs[i])
}

func (s *MemStore[T]) UpdateByID(_ context.Context, id string, changes map[string]any) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateByID"); err != nil {
		return nil, err
	}

	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", resource.ErrNotFound, id)
	}
	doc := s.docs[i]
	if len(changes) > 0 {
		for k, v := range changes {
			doc[k] = v
		}
		version, _ := number(doc[fieldVersion])
		doc[fieldVersion] = int32(version) + 1
	}
	return s.decode(doc)
}

func (s *MemStore[T]) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteByID"); err != nil {
		return err
	}

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", resource.ErrNotFound, id)
	}
	s.docs = append(s.docs[:i], s.docs[i+1:]...)
	return nil
}

// Version returns the stored version counter of id, or -1 when absent.
func (s *MemStore[T]) Version(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return -1
	}
	v, _ := number(s.docs[i][fieldVersion])
	return int(v)
}

func (s *MemStore[T]) indexOf(id string) int {
	for i, doc := range s.docs {
		if doc[fieldID] == id {
			return i
		}
	}
	return -1
}

func (s *MemStore[T]) decode(doc bson.M) (*T, error) {
	var item T
	if err := fromMap(project(doc, nil, []string{fieldVersion}), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func toMap(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	m := bson.M{}
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func fromMap(m bson.M, out any) error {
	raw, err := bson.Marshal(m)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

func project(doc bson.M, include, exclude []string) bson.M {
	out := bson.M{}
	if len(include) > 0 {
		out[fieldID] = doc[fieldID]
		for _, f := range include {
			if v, ok := doc[f]; ok {
				out[f] = v
			}
		}
		return out
	}
	for k, v := range doc {
		out[k] = v
	}
	for _, f := range exclude {
		delete(out, f)
	}
	return out
}

func lookup(doc bson.M, field string) any {
	var cur any = doc
	for _, part := range strings.Split(field, ".") {
		switch m := cur.(type) {
		case bson.M:
			cur = m[part]
		case map[string]any:
			cur = m[part]
		case bson.D:
			cur = m.Map()[part]
		default:
			return nil
		}
	}
	return cur
}

func matches(doc bson.M, filter map[string]any) bool {
	for field, cond := range filter {
		value := lookup(doc, field)
		ops, isOps := cond.(map[string]any)
		if !isOps {
			if !equals(value, cond) {
				return false
			}
			continue
		}
		for op, operand := range ops {
			if !apply(value, op, operand) {
				return false
			}
		}
	}
	return true
}

func apply(value any, op string, operand any) bool {
	switch op {
	case "$eq":
		return equals(value, operand)
	case "$in":
		list, _ := operand.([]any)
		for _, candidate := range list {
			if equals(value, candidate) {
				return true
			}
		}
		return false
	}

	if value == nil {
		return false
	}
	c := compareValues(value, operand)
	switch op {
	case "$gte":
		return c >= 0
	case "$gt":
		return c > 0
	case "$lte":
		return c <= 0
	case "$lt":
		return c < 0
	}
	return false
}

// equals follows MongoDB array semantics: an array matches when any element does.
func equals(value, want any) bool {
	if arr, ok := value.(primitive.A); ok {
		for _, el := range arr {
			if equals(el, want) {
				return true
			}
		}
		return false
	}
	if value == nil || want == nil {
		return value == nil && want == nil
	}
	return compareValues(value, want) == 0 && sameClass(value, want)
}

func sameClass(a, b any) bool {
	return classOf(a) == classOf(b)
}

func classOf(v any) int {
	if _, ok := number(v); ok {
		return 1
	}
	if _, ok := timeOf(v); ok {
		return 2
	}
	switch v.(type) {
	case string:
		return 3
	case bool:
		return 4
	}
	return 0
}

// compareValues orders missing values first, then numbers, times, strings
// and booleans, mirroring the server's comparison order closely enough for
// the scalar fields resources use.
func compareValues(a, b any) int {
	ca, cb := classOf(a), classOf(b)
	if a == nil || b == nil || ca != cb {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		case b == nil:
			return 1
		}
		return ca - cb
	}

	switch ca {
	case 1:
		x, _ := number(a)
		y, _ := number(b)
		return cmpOrdered(x, y)
	case 2:
		x, _ := timeOf(a)
		y, _ := timeOf(b)
		return x.Compare(y)
	case 3:
		return strings.Compare(a.(string), b.(string))
	case 4:
		x, y := a.(bool), b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	}
	return 0
}

func cmpOrdered(x, y float64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

func timeOf(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case primitive.DateTime:
		return t.Time(), true
	}
	return time.Time{}, false
}
