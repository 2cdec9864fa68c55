package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// MaxDepth is the deepest nesting of arrays and objects accepted.
const MaxDepth = 1000

// cancelCheckInterval is the number of tokens decoded between two
// context checks.
const cancelCheckInterval = 4096

// Document is a loaded data file.
type Document struct {
	// Path is the file the document was loaded from.
	Path string

	// Root is the top-level JSON value.
	Root Value

	// Size is the file size in bytes.
	Size int
}

// Load reads and parses the JSON file at path.
func Load(path string) (*Document, error) {
	return LoadContext(context.Background(), path)
}

// LoadContext reads and parses the JSON file at path, giving up with
// ctx.Err() once ctx is done.
// A missing or unreadable-for-permission file yields ErrFileNotFound;
// malformed content yields a *SyntaxError.
func LoadContext(ctx context.Context, path string) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided data path is intentional
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	root, err := ParseContext(ctx, data)
	if err != nil {
		return nil, err
	}

	return &Document{
		Path: path,
		Root: root,
		Size: len(data),
	}, nil
}

// Parse parses JSON content into a Value tree.
func Parse(data []byte) (Value, error) {
	return ParseContext(context.Background(), data)
}

// ParseContext parses JSON content into a Value tree in a single pass.
// Content that is not UTF-8 yields ErrInvalidUTF8 and content nested deeper
// than MaxDepth yields ErrTooDeep, both before any decoding.
func ParseContext(ctx context.Context, data []byte) (Value, error) {
	if err := ctx.Err(); err != nil {
		return Value{}, err
	}
	if !utf8.Valid(data) {
		return Value{}, ErrInvalidUTF8
	}
	if exceedsDepth(data, MaxDepth) {
		return Value{}, fmt.Errorf("%w (more than %d levels)", ErrTooDeep, MaxDepth)
	}
	if !gjson.ValidBytes(data) {
		return Value{}, syntaxError(data)
	}
	return build(ctx, data)
}

// exceedsDepth reports whether data nests arrays and objects more than
// limit levels deep. Brackets inside strings are ignored.
func exceedsDepth(data []byte, limit int) bool {
	depth := 0
	inString, escaped := false, false
	for _, c := range data {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
			if depth > limit {
				return true
			}
		case ']', '}':
			depth--
		}
	}
	return false
}

// syntaxError runs the strict decoder over invalid input to obtain a
// diagnostic with a position.
func syntaxError(data []byte) error {
	var v any
	err := json.Unmarshal(data, &v)
	if err == nil {
		return &SyntaxError{Offset: -1, Err: errors.New("invalid JSON document")}
	}

	var se *json.SyntaxError
	if errors.As(err, &se) {
		return &SyntaxError{Offset: se.Offset, Err: err}
	}
	return &SyntaxError{Offset: -1, Err: err}
}

// container is an array or object under construction.
type container struct {
	value Value

	// key is the member name waiting for its value.
	key    string
	hasKey bool
}

// add appends v to an array or stores it under the pending key.
func (c *container) add(v Value) {
	if c.value.kind == KindArray {
		c.value.items = append(c.value.items, v)
		return
	}
	c.value.set(c.key, v)
	c.hasKey = false
}

// build decodes already validated content token by token, keeping object
// member order. It uses an explicit stack, so nesting costs no recursion.
func build(ctx context.Context, data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var (
		stack []*container
		root  Value
	)

	for n := 1; ; n++ {
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Value{}, err
			}
		}

		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Value{}, &SyntaxError{Offset: dec.InputOffset(), Err: err}
		}

		var v Value
		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{':
				stack = append(stack, &container{value: Value{kind: KindObject, index: make(map[string]int)}})
				continue
			case '[':
				stack = append(stack, &container{value: Value{kind: KindArray}})
				continue
			default:
				v = stack[len(stack)-1].value
				stack = stack[:len(stack)-1]
			}
		case string:
			if len(stack) > 0 {
				if top := stack[len(stack)-1]; top.value.kind == KindObject && !top.hasKey {
					top.key, top.hasKey = t, true
					continue
				}
			}
			v = NewString(t)
		case json.Number:
			v = numberValue(string(t))
		case bool:
			v = NewBool(t)
		case nil:
			v = Null()
		}

		if len(stack) == 0 {
			root = v
			continue
		}
		stack[len(stack)-1].add(v)
	}

	return root, nil
}

// numberValue keeps the literal as written. Out-of-range literals hold
// ±Inf or 0.
func numberValue(raw string) Value {
	f, _ := strconv.ParseFloat(raw, 64) //nolint:errcheck // Range errors still return the nearest value
	return Value{kind: KindNumber, num: f, raw: raw}
}

// Field returns a top-level field of the document.
// The second result is false when the field is absent or the root is not
// an object.
func (d *Document) Field(name string) (Value, bool) {
	return d.Root.Get(name)
}
