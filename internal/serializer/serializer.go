// Package serializer renders domain objects as JSON restricted to named
// visibility groups, with optional depth checks on nested objects.
//
// Struct fields opt in to rendering with a groups tag:
//
//	Name string     `json:"name" groups:"api_read,api_write"`
//	Post *post.Post `json:"post" groups:"api_read" maxdepth:"1"`
//
// Fields without a groups tag are never rendered under a Context.
// A maxdepth:"N" field is rendered only while the struct that holds it
// sits at nesting depth N or less (the root object is depth 1).
package serializer

import (
	"bytes"
	"encoding"
	"reflect"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// DefaultMaxDepth caps object nesting when depth checks are enabled.
const DefaultMaxDepth = 8

// Context selects what a render includes.
type Context struct {
	Groups               []string
	EnableMaxDepthChecks bool
}

// NewContext returns a context for the given groups with depth checks on.
func NewContext(groups ...string) *Context {
	return &Context{Groups: groups, EnableMaxDepthChecks: true}
}

func (c *Context) visible(tag string) bool {
	if tag == "" {
		return false
	}
	if len(c.Groups) == 0 {
		return true
	}
	for _, g := range strings.Split(tag, ",") {
		g = strings.TrimSpace(g)
		for _, want := range c.Groups {
			if g == want {
				return true
			}
		}
	}
	return false
}

// Serializer renders values to JSON.
type Serializer struct {
	maxDepth int
	api      jsoniter.API
}

// Option configures a Serializer.
type Option func(*Serializer)

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(s *Serializer) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

// New creates a Serializer.
func New(opts ...Option) *Serializer {
	s := &Serializer{
		maxDepth: DefaultMaxDepth,
		api:      jsoniter.ConfigCompatibleWithStandardLibrary,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Render encodes v. A nil context encodes v as plain JSON; otherwise the
// output is restricted to the context's groups.
func (s *Serializer) Render(v interface{}, sc *Context) ([]byte, error) {
	if sc == nil {
		return s.api.Marshal(v)
	}
	w := &walker{ctx: sc, maxDepth: s.maxDepth, api: s.api, onPath: map[visitKey]bool{}}
	out, _ := w.value(reflect.ValueOf(v), 1)
	return s.api.Marshal(out)
}

// visitKey identifies a pointer, map or slice on the current path.
// Slices sharing a backing array differ by length.
type visitKey struct {
	ptr uintptr
	len int
	typ reflect.Type
}

type walker struct {
	ctx      *Context
	maxDepth int
	api      jsoniter.API
	onPath   map[visitKey]bool
}

type jsonMarshaler interface {
	MarshalJSON() ([]byte, error)
}

var (
	jsonMarshalerType = reflect.TypeOf((*jsonMarshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// value normalizes v into plain maps, slices and scalars. depth is the
// nesting depth a struct found at v would have. The bool result is false
// when v closes a cycle through a pointer, map or slice and must be left out.
func (w *walker) value(v reflect.Value, depth int) (interface{}, bool) {
	if !v.IsValid() {
		return nil, true
	}

	t := v.Type()
	if t.Kind() != reflect.Ptr && t.Kind() != reflect.Interface &&
		(t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType)) {
		return v.Interface(), true
	}

	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return nil, true
		}
		if t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType) {
			return v.Interface(), true
		}
		key := visitKey{ptr: v.Pointer(), typ: t}
		if w.onPath[key] {
			return nil, false
		}
		w.onPath[key] = true
		defer delete(w.onPath, key)
		return w.value(v.Elem(), depth)

	case reflect.Interface:
		if v.IsNil() {
			return nil, true
		}
		return w.value(v.Elem(), depth)

	case reflect.Struct:
		return w.object(v, depth), true

	case reflect.Slice:
		if v.IsNil() {
			return nil, true
		}
		if t.Elem().Kind() == reflect.Uint8 {
			return v.Interface(), true
		}
		if v.Len() > 0 {
			key := visitKey{ptr: v.Pointer(), len: v.Len(), typ: t}
			if w.onPath[key] {
				return nil, false
			}
			w.onPath[key] = true
			defer delete(w.onPath, key)
		}
		fallthrough
	case reflect.Array:
		items := make([]interface{}, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			item, ok := w.value(v.Index(i), depth)
			if ok {
				items = append(items, item)
			}
		}
		return items, true

	case reflect.Map:
		if v.IsNil() {
			return nil, true
		}
		key := visitKey{ptr: v.Pointer(), typ: t}
		if w.onPath[key] {
			return nil, false
		}
		w.onPath[key] = true
		defer delete(w.onPath, key)

		out := make(map[string]interface{}, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			item, ok := w.value(iter.Value(), depth)
			if ok {
				out[mapKey(iter.Key())] = item
			}
		}
		return out, true

	default:
		return v.Interface(), true
	}
}

// object renders the visible fields of struct v in declaration order.
func (w *walker) object(v reflect.Value, depth int) *object {
	obj := &object{api: w.api}
	w.fields(v, depth, obj)
	return obj
}

func (w *walker) fields(v reflect.Value, depth int, obj *object) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		fv := v.Field(i)

		if f.Anonymous && f.Tag.Get("json") == "" {
			inner := fv
			if inner.Kind() == reflect.Ptr {
				if inner.IsNil() {
					continue
				}
				inner = inner.Elem()
			}
			if inner.Kind() == reflect.Struct {
				w.fields(inner, depth, obj)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if !w.ctx.visible(f.Tag.Get("groups")) {
			continue
		}

		name, omitEmpty, skip := jsonName(f)
		if skip {
			continue
		}

		if w.ctx.EnableMaxDepthChecks {
			if limit, ok := maxDepthTag(f); ok && depth > limit {
				continue
			}
			if depth >= w.maxDepth && nests(f.Type) {
				continue
			}
		}

		if omitEmpty && isEmptyValue(fv) {
			continue
		}

		item, ok := w.value(fv, depth+1)
		if !ok {
			continue
		}
		obj.members = append(obj.members, member{name: name, value: item})
	}
}

type member struct {
	name  string
	value interface{}
}

// object is a JSON object that keeps its members in insertion order.
type object struct {
	api     jsoniter.API
	members []member
}

// MarshalJSON implements json.Marshaler.
func (o *object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o.members {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := o.api.Marshal(m.name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := o.api.Marshal(m.value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func jsonName(f reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	for _, opt := range strings.Split(opts, ",") {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

func maxDepthTag(f reflect.StructField) (int, bool) {
	tag := f.Tag.Get("maxdepth")
	if tag == "" {
		return 0, false
	}
	n, err := strconv.Atoi(tag)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// nests reports whether values of t render as nested objects or collections.
func nests(t reflect.Type) bool {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Implements(jsonMarshalerType) || reflect.PointerTo(t).Implements(jsonMarshalerType) {
		return false
	}
	switch t.Kind() {
	case reflect.Struct, reflect.Map, reflect.Interface:
		return true
	case reflect.Slice, reflect.Array:
		return t.Elem().Kind() != reflect.Uint8
	default:
		return false
	}
}

func mapKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		if b, err := tm.MarshalText(); err == nil {
			return string(b)
		}
	}
	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(k.Uint(), 10)
	default:
		return ""
	}
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	}
	return false
}
