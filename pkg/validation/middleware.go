package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	apperrors "voyageiq/pkg/errors"
	"voyageiq/pkg/sanitizer"
)

const (
	MsgBodyRequired = "Request body is required"
	MsgInvalidBody  = "Invalid request body"
)

// ErrorFunc forwards a failure to the central error handler.
type ErrorFunc func(w http.ResponseWriter, r *http.Request, err error)

type contextKey int

const (
	bodyKey contextKey = iota
	queryKey
	paramsKey
)

// Body decodes the JSON request body into T, normalizes it when T is a
// sanitizer.Normalizer, validates it against s and stores it in the request
// context for the next handler. Normalize is the only rewrite applied to the
// decoded value: validation and the handler both see the normalized form.
// Unknown JSON keys are ignored.
func Body[T any](s *Schema[T], onError ErrorFunc) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			in, err := decodeBody[T](r.Body)
			if err == nil {
				normalize(in)
				err = s.Validate(in)
			}
			if err != nil {
				onError(w, r, err)
				return
			}
			next(w, r.WithContext(context.WithValue(r.Context(), bodyKey, in)), ps)
		}
	}
}

// Query binds the URL query string into T by JSON field name and validates it.
func Query[T any](s *Schema[T], onError ErrorFunc) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			in, err := bindAndValidate(s, r.URL.Query())
			if err != nil {
				onError(w, r, err)
				return
			}
			next(w, r.WithContext(context.WithValue(r.Context(), queryKey, in)), ps)
		}
	}
}

// Params binds the route parameters into T by JSON field name and validates them.
func Params[T any](s *Schema[T], onError ErrorFunc) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			values := make(url.Values, len(ps))
			for _, p := range ps {
				values.Add(p.Key, p.Value)
			}
			in, err := bindAndValidate(s, values)
			if err != nil {
				onError(w, r, err)
				return
			}
			next(w, r.WithContext(context.WithValue(r.Context(), paramsKey, in)), ps)
		}
	}
}

func BodyFrom[T any](ctx context.Context) (T, bool) {
	in, ok := ctx.Value(bodyKey).(T)
	return in, ok
}

func QueryFrom[T any](ctx context.Context) (T, bool) {
	in, ok := ctx.Value(queryKey).(T)
	return in, ok
}

func ParamsFrom[T any](ctx context.Context) (T, bool) {
	in, ok := ctx.Value(paramsKey).(T)
	return in, ok
}

func normalize(in any) {
	if n, ok := in.(sanitizer.Normalizer); ok && !isNil(in) {
		n.Normalize()
	}
}

func decodeBody[T any](body io.Reader) (T, error) {
	var in T
	if body == nil {
		return in, apperrors.BadRequest(MsgBodyRequired)
	}

	err := json.NewDecoder(body).Decode(&in)
	switch {
	case err == nil:
		return in, nil
	case errors.Is(err, io.EOF):
		return in, apperrors.BadRequest(MsgBodyRequired)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return in, apperrors.BadRequest(fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type.String()))
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return in, apperrors.New(fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
	}
	return in, apperrors.Wrap(err, MsgInvalidBody, http.StatusBadRequest)
}

func bindAndValidate[T any](s *Schema[T], values url.Values) (T, error) {
	var in T
	target := reflect.ValueOf(&in).Elem()
	if target.Kind() == reflect.Pointer {
		target.Set(reflect.New(target.Type().Elem()))
		target = target.Elem()
	}

	bindViolations, failed := bind(target, values)

	violations, err := s.validator.Violations(in, s.messages)
	if err != nil {
		return in, apperrors.Internal("validation could not run", err)
	}
	for _, v := range violations {
		if !failed[strings.SplitN(v, " ", 2)[0]] {
			bindViolations = append(bindViolations, v)
		}
	}
	return in, violationError(bindViolations)
}

// bind copies string values into the exported fields of v whose JSON name
// matches a key. Keys without a matching field are ignored.
func bind(v reflect.Value, values url.Values) ([]string, map[string]bool) {
	var violations []string
	failed := make(map[string]bool)

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := jsonFieldName(f)
		raw, ok := values[name]
		if !ok || len(raw) == 0 {
			continue
		}
		if err := setField(v.Field(i), raw); err != nil {
			violations = append(violations, fmt.Sprintf("%s must be a valid %s", name, err.Error()))
			failed[name] = true
		}
	}
	return violations, failed
}

type kindError string

func (e kindError) Error() string { return string(e) }

func setField(field reflect.Value, raw []string) error {
	if field.Kind() == reflect.Pointer {
		ptr := reflect.New(field.Type().Elem())
		if err := setField(ptr.Elem(), raw); err != nil {
			return err
		}
		field.Set(ptr)
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw[0])
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return kindError("list")
		}
		field.Set(reflect.ValueOf(append([]string(nil), raw...)))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw[0], 10, field.Type().Bits())
		if err != nil {
			return kindError("integer")
		}
		field.SetInt(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(raw[0], field.Type().Bits())
		if err != nil {
			return kindError("number")
		}
		field.SetFloat(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw[0])
		if err != nil {
			return kindError("boolean")
		}
		field.SetBool(b)
	default:
		return kindError(field.Kind().String())
	}
	return nil
}
