package clang

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"tlog.app/go/errors"
)

// Diagnostic lists substrings of keys Filter drops.
var Diagnostic = []string{"id", "loc", "range", "mangledname", "isused", "type", "valuecategory", "castkind"}

// IsDiagnostic reports whether key holds dump diagnostics
// rather than tree structure.
func IsDiagnostic(key string) bool {
	key = strings.ToLower(key)

	for _, f := range Diagnostic {
		if strings.Contains(key, f) {
			return true
		}
	}

	return false
}

// Filter strips diagnostic keys from a dump at every depth.
// Key order and number literals are kept as they are.
func Filter(data []byte) ([]byte, error) {
	d := json.NewDecoder(bytes.NewReader(data))
	d.UseNumber()

	b, err := filterValue(d, nil)
	if err != nil {
		return nil, err
	}

	_, err = d.Token()
	if err != io.EOF {
		return nil, errors.New("trailing data after value")
	}

	return b, nil
}

func filterValue(d *json.Decoder, b []byte) (_ []byte, err error) {
	t, err := d.Token()
	if err != nil {
		return nil, errors.Wrap(err, "read token")
	}

	delim, ok := t.(json.Delim)
	if !ok {
		return appendScalar(b, t)
	}

	switch delim {
	case '{':
		b = append(b, '{')
		first := true

		for d.More() {
			t, err = d.Token()
			if err != nil {
				return nil, errors.Wrap(err, "read key")
			}

			key, _ := t.(string)

			if IsDiagnostic(key) {
				var skip json.RawMessage

				err = d.Decode(&skip)
				if err != nil {
					return nil, errors.Wrap(err, "skip %v", key)
				}

				continue
			}

			if !first {
				b = append(b, ',')
			}

			first = false

			b, err = appendScalar(b, key)
			if err != nil {
				return nil, err
			}

			b = append(b, ':')

			b, err = filterValue(d, b)
			if err != nil {
				return nil, errors.Wrap(err, "%v", key)
			}
		}

		b = append(b, '}')
	case '[':
		b = append(b, '[')

		for i := 0; d.More(); i++ {
			if i != 0 {
				b = append(b, ',')
			}

			b, err = filterValue(d, b)
			if err != nil {
				return nil, errors.Wrap(err, "[%d]", i)
			}
		}

		b = append(b, ']')
	default:
		return nil, errors.New("unexpected delimiter: %v", delim)
	}

	// closing delimiter
	_, err = d.Token()
	if err != nil {
		return nil, errors.Wrap(err, "read token")
	}

	return b, nil
}

func appendScalar(b []byte, v any) ([]byte, error) {
	if n, ok := v.(json.Number); ok {
		return append(b, n...), nil
	}

	var buf bytes.Buffer

	e := json.NewEncoder(&buf)
	e.SetEscapeHTML(false)

	err := e.Encode(v)
	if err != nil {
		return nil, errors.Wrap(err, "encode %v", v)
	}

	return append(b, bytes.TrimSuffix(buf.Bytes(), []byte("\n"))...), nil
}
