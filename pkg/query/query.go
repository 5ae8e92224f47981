package query

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "voyageiq/pkg/errors"
)

const (
	ParamPage   = "page"
	ParamLimit  = "limit"
	ParamSort   = "sort"
	ParamFields = "fields"

	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	FieldCreatedAt = "createdAt"
	FieldVersion   = "__v"
	FieldID        = "_id"

	// idAlias is the rendered name of FieldID.
	idAlias = "id"
)

var (
	reserved = map[string]struct{}{
		ParamPage:   {},
		ParamLimit:  {},
		ParamSort:   {},
		ParamFields: {},
	}

	// Shorthand comparison keywords and the store operators they become.
	operators = map[string]string{
		"gte": "$gte",
		"gt":  "$gt",
		"lte": "$lte",
		"lt":  "$lt",
	}

	fieldNameRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.]*$`)
	bracketRegex   = regexp.MustCompile(`^([^\[\]]+)\[([^\[\]]+)\]$`)
)

type SortField struct {
	Field      string
	Descending bool
}

// Descriptor is the store-facing description of one list request.
type Descriptor struct {
	Filter  map[string]any
	Sort    []SortField
	Include []string
	Exclude []string
	Page    int
	Limit   int
}

// Skip is the number of documents before the requested page. It saturates at
// math.MaxInt64 so that any page past the end yields an empty result.
func (d Descriptor) Skip() int64 {
	if d.Page <= 1 || d.Limit <= 0 {
		return 0
	}
	pages, limit := int64(d.Page-1), int64(d.Limit)
	if pages > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return pages * limit
}

type Options struct {
	DefaultLimit int
	MaxLimit     int
	Kinds        Kinds
}

// Parse derives a Descriptor from a query string. Reserved keys drive paging,
// sorting and projection; every other key becomes a filter predicate whose
// value is cast according to opts.Kinds.
func Parse(values url.Values, opts Options) (Descriptor, error) {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = MaxLimit
	}

	filter, err := parseFilter(values, opts.Kinds)
	if err != nil {
		return Descriptor{}, err
	}

	sortFields, err := parseSort(values.Get(ParamSort))
	if err != nil {
		return Descriptor{}, err
	}

	include, err := parseFields(values.Get(ParamFields))
	if err != nil {
		return Descriptor{}, err
	}

	d := Descriptor{
		Filter:  filter,
		Sort:    sortFields,
		Include: include,
		Page:    NormalizePage(values.Get(ParamPage)),
		Limit:   NormalizeLimit(values.Get(ParamLimit), opts.DefaultLimit, opts.MaxLimit),
	}
	if len(d.Include) == 0 {
		d.Exclude = []string{FieldVersion}
	}
	return d, nil
}

// NormalizePage falls back to DefaultPage for missing or non-positive values.
// Pages too large for an int are pinned to math.MaxInt.
func NormalizePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if errors.Is(err, strconv.ErrRange) && page > 0 {
		return page
	}
	if err != nil || page < 1 {
		return DefaultPage
	}
	return page
}

func NormalizeLimit(raw string, defaultLimit, maxLimit int) int {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || limit < 1 {
		return defaultLimit
	}
	return min(limit, maxLimit)
}

func parseFilter(values url.Values, kinds Kinds) (map[string]any, error) {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	filter := make(map[string]any)
	for _, key := range keys {
		if _, ok := reserved[key]; ok {
			continue
		}
		raw := values[key]
		if len(raw) == 0 {
			continue
		}

		field, op := key, ""
		if m := bracketRegex.FindStringSubmatch(key); m != nil {
			field, op = m[1], m[2]
		}
		if !fieldNameRegex.MatchString(field) {
			return nil, apperrors.BadRequest(fmt.Sprintf("Invalid filter field: %s", field))
		}
		if field == idAlias {
			field = FieldID
		}

		if op == "" {
			value, err := equality(field, raw, kinds)
			if err != nil {
				return nil, err
			}
			filter[field] = value
			continue
		}

		storeOp, ok := operators[op]
		if !ok {
			return nil, apperrors.BadRequest(fmt.Sprintf("Unsupported filter operator: %s", op))
		}
		value, err := kinds.Cast(field, raw[0])
		if err != nil {
			return nil, err
		}

		var predicate map[string]any
		switch existing := filter[field].(type) {
		case nil:
			predicate = make(map[string]any)
		case map[string]any:
			predicate = existing
		default:
			// price=50&price[gte]=10 keeps both conditions.
			predicate = map[string]any{"$eq": existing}
		}
		predicate[storeOp] = value
		filter[field] = predicate
	}
	return filter, nil
}

func equality(field string, raw []string, kinds Kinds) (any, error) {
	if len(raw) == 1 {
		return kinds.Cast(field, raw[0])
	}
	in := make([]any, 0, len(raw))
	for _, r := range raw {
		v, err := kinds.Cast(field, r)
		if err != nil {
			return nil, err
		}
		in = append(in, v)
	}
	return map[string]any{"$in": in}, nil
}

func parseSort(raw string) ([]SortField, error) {
	parts := splitList(raw)
	if len(parts) == 0 {
		return []SortField{{Field: FieldCreatedAt, Descending: true}}, nil
	}

	fields := make([]SortField, 0, len(parts))
	for _, part := range parts {
		sf := SortField{Field: part}
		if strings.HasPrefix(part, "-") {
			sf = SortField{Field: part[1:], Descending: true}
		}
		if !fieldNameRegex.MatchString(sf.Field) {
			return nil, apperrors.BadRequest(fmt.Sprintf("Invalid sort field: %s", sf.Field))
		}
		fields = append(fields, sf)
	}
	return fields, nil
}

func parseFields(raw string) ([]string, error) {
	parts := splitList(raw)
	for _, part := range parts {
		if !fieldNameRegex.MatchString(part) {
			return nil, apperrors.BadRequest(fmt.Sprintf("Invalid projection field: %s", part))
		}
	}
	return parts, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Kind is the scalar type a filterable field holds in the store.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindTime
)

// Kinds maps store field names to their kind. Fields absent from the map are
// matched as strings.
type Kinds map[string]Kind

func (k Kinds) Cast(field, raw string) (any, error) {
	var (
		v   any
		err error
	)
	switch k[field] {
	case KindInt:
		if v, err = strconv.ParseInt(raw, 10, 64); err != nil {
			// "4.5" against an integer field still compares numerically.
			v, err = strconv.ParseFloat(raw, 64)
		}
	case KindFloat:
		v, err = strconv.ParseFloat(raw, 64)
	case KindBool:
		v, err = strconv.ParseBool(raw)
	case KindTime:
		v, err = parseTime(raw)
	default:
		return raw, nil
	}
	if err != nil {
		return nil, &apperrors.CastError{Path: field, Value: raw, Err: err}
	}
	return v, nil
}

func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}
