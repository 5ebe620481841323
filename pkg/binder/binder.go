package binder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

var (
	ErrMissingContentType   = errors.New("missing content type")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrInvalidJSON          = errors.New("invalid JSON")
	ErrInvalidPath          = errors.New("invalid path parameter")
	ErrInvalidQuery         = errors.New("invalid query parameter")
	ErrInvalidTarget        = errors.New("binder target must be a non-nil pointer to struct")
)

// Func fills v from r.
type Func func(r *http.Request, v any) error

const maxBodySize = 1 << 20

// JSON decodes a single JSON object, rejecting unknown fields and trailing data.
func JSON() Func {
	return func(r *http.Request, v any) error {
		ct := r.Header.Get("Content-Type")
		if ct == "" {
			return fmt.Errorf("%w: expected application/json", ErrMissingContentType)
		}
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			return fmt.Errorf("%w: expected application/json", ErrUnsupportedMediaType)
		}

		dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: empty body", ErrInvalidJSON)
			}
			return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		if dec.More() {
			return fmt.Errorf("%w: unexpected data after JSON object", ErrInvalidJSON)
		}
		return nil
	}
}

// Path binds route parameters using extractor, typically chi.URLParam.
func Path(extractor func(r *http.Request, name string) string) Func {
	return func(r *http.Request, v any) error {
		if extractor == nil {
			return fmt.Errorf("%w: extractor is nil", ErrInvalidPath)
		}
		return bindTagged(v, "path", func(name string) []string {
			if val := extractor(r, name); val != "" {
				return []string{val}
			}
			return nil
		}, ErrInvalidPath)
	}
}

// Query binds URL query parameters. Slices accept repeated keys or a
// comma-separated value.
func Query() Func {
	return func(r *http.Request, v any) error {
		return bindTagged(v, "query", lookupValues(r.URL.Query()), ErrInvalidQuery)
	}
}

func lookupValues(q url.Values) func(string) []string {
	return func(name string) []string { return q[name] }
}

func bindTagged(v any, tag string, lookup func(string) []string, sentinel error) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrInvalidTarget
	}
	rv = rv.Elem()
	rt := rv.Type()

	for i := range rt.NumField() {
		sf := rt.Field(i)
		fv := rv.Field(i)
		if !fv.CanSet() {
			continue
		}
		name, _, _ := strings.Cut(sf.Tag.Get(tag), ",")
		if name == "" || name == "-" {
			continue
		}
		vals := lookup(name)
		if len(vals) == 0 {
			continue
		}
		if err := setValue(fv, vals); err != nil {
			return fmt.Errorf("%w: %s: %v", sentinel, name, err)
		}
	}
	return nil
}

func setValue(fv reflect.Value, vals []string) error {
	switch fv.Kind() {
	case reflect.Pointer:
		elem := reflect.New(fv.Type().Elem())
		if err := setValue(elem.Elem(), vals); err != nil {
			return err
		}
		fv.Set(elem)
		return nil
	case reflect.Slice:
		if len(vals) == 1 && strings.Contains(vals[0], ",") {
			vals = strings.Split(vals[0], ",")
		}
		out := reflect.MakeSlice(fv.Type(), 0, len(vals))
		for _, s := range vals {
			item := reflect.New(fv.Type().Elem()).Elem()
			if err := setScalar(item, strings.TrimSpace(s)); err != nil {
				return err
			}
			out = reflect.Append(out, item)
		}
		fv.Set(out)
		return nil
	default:
		return setScalar(fv, vals[0])
	}
}

func setScalar(fv reflect.Value, s string) error {
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("cannot parse %q as bool", s)
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, fv.Type().Bits())
		if err != nil {
			return fmt.Errorf("cannot parse %q as integer", s)
		}
		fv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, fv.Type().Bits())
		if err != nil {
			return fmt.Errorf("cannot parse %q as unsigned integer", s)
		}
		fv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, fv.Type().Bits())
		if err != nil {
			return fmt.Errorf("cannot parse %q as number", s)
		}
		fv.SetFloat(f)
	default:
		return fmt.Errorf("unsupported field type %s", fv.Type())
	}
	return nil
}
