package iniconf

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

var (
	ErrInvalidType  = errors.New("iniconf: invalid type")
	ErrInvalidValue = errors.New("iniconf: invalid value")
	ErrBadSchema    = errors.New("iniconf: bad schema")
)

// Value is the custom load/save strategy hook. A field type
// implementing Value controls its own wire keys; key is the field's
// composed key and acts as the prefix for multi-key types.
type Value interface {
	LoadIni(sec *Section, key string) error
	AppendIni(sec *Section, key string) error
	RemoveIni(sec *Section, key string)
}

// Sectioned names the INI section a struct binds to; the empty string
// binds to the top (general) section.
type Sectioned interface {
	IniSection() string
}

// KeyFormatted overrides the default "{prefix}{name}" template for the
// struct's contained fields.
type KeyFormatted interface {
	IniKeyFormat() string
}

// LoadSection loads v from its section in f.
func LoadSection(f *File, v Sectioned) error {
	return Load(f.Section(v.IniSection()), "", v)
}

// SaveSection clears v's known keys in its section of f and writes the
// current value back.
func SaveSection(f *File, v Sectioned) error {
	sec := f.Section(v.IniSection())
	Remove(sec, "", v)
	return Append(sec, "", v)
}

// Load mutates the struct pointed to by v from sec. Fields whose keys
// are absent keep their prior value.
func Load(sec *Section, prefix string, v any) error {
	rv, err := structValue(v)
	if err != nil {
		return err
	}
	return loadStruct(sec, prefix, rv)
}

// Append writes v's fields into sec under their composed keys.
func Append(sec *Section, prefix string, v any) error {
	rv, err := structValue(v)
	if err != nil {
		return err
	}
	return appendStruct(sec, prefix, rv)
}

// Remove deletes every key v's schema knows from sec.
func Remove(sec *Section, prefix string, v any) {
	rv, err := structValue(v)
	if err != nil {
		return
	}
	removeStruct(sec, prefix, rv)
}

func structValue(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: want pointer to struct, got %T", ErrBadSchema, v)
	}
	return rv.Elem(), nil
}

type fieldSpec struct {
	name    string // rename or field name
	flatten bool
	format  string // key template, "" for the struct default
}

func parseTag(field reflect.StructField) (fieldSpec, bool) {
	spec := fieldSpec{name: field.Name}
	tag, ok := field.Tag.Lookup("ini")
	if !ok {
		return spec, field.IsExported()
	}
	if tag == "-" {
		return spec, false
	}
	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		spec.name = parts[0]
	}
	for _, opt := range parts[1:] {
		switch {
		case opt == "flatten":
			spec.flatten = true
		case strings.HasPrefix(opt, "format="):
			spec.format = strings.TrimPrefix(opt, "format=")
		}
	}
	return spec, field.IsExported()
}

func composeKey(format, prefix, name string) string {
	key := strings.ReplaceAll(format, "{prefix}", prefix)
	return strings.ReplaceAll(key, "{name}", name)
}

func defaultFormat(rv reflect.Value) string {
	if kf, ok := rv.Addr().Interface().(KeyFormatted); ok {
		return kf.IniKeyFormat()
	}
	return "{prefix}{name}"
}

type fieldFunc func(field reflect.Value, spec fieldSpec, key string) error

// walkStruct resolves each field's composed key and hands it to fn;
// flattened fields recurse with the prefix unchanged.
func walkStruct(prefix string, rv reflect.Value, fn fieldFunc) error {
	structFormat := defaultFormat(rv)
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		spec, ok := parseTag(t.Field(i))
		if !ok {
			continue
		}
		field := rv.Field(i)

		if spec.flatten {
			if spec.name != t.Field(i).Name || spec.format != "" {
				return fmt.Errorf("%w: %s.%s: flatten excludes rename and format",
					ErrBadSchema, t.Name(), t.Field(i).Name)
			}
			if field.Kind() != reflect.Struct {
				return fmt.Errorf("%w: %s.%s: flatten requires a struct field",
					ErrBadSchema, t.Name(), t.Field(i).Name)
			}
			if err := walkStruct(prefix, field, fn); err != nil {
				return err
			}
			continue
		}

		format := spec.format
		if format == "" {
			format = structFormat
		}
		if err := fn(field, spec, composeKey(format, prefix, spec.name)); err != nil {
			return err
		}
	}
	return nil
}

func loadStruct(sec *Section, prefix string, rv reflect.Value) error {
	return walkStruct(prefix, rv, func(field reflect.Value, spec fieldSpec, key string) error {
		return loadField(sec, key, field)
	})
}

func loadField(sec *Section, key string, field reflect.Value) error {
	if v, ok := field.Addr().Interface().(Value); ok {
		return v.LoadIni(sec, key)
	}
	if u, ok := field.Addr().Interface().(encoding.TextUnmarshaler); ok {
		text, present := sec.Get(key)
		if !present {
			return nil
		}
		if err := u.UnmarshalText([]byte(text)); err != nil {
			return fmt.Errorf("%w: key %q: %v", ErrInvalidType, key, err)
		}
		return nil
	}

	switch field.Kind() {
	case reflect.Pointer:
		if _, present := sec.Get(key); !present {
			return nil
		}
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return loadField(sec, key, field.Elem())

	case reflect.Struct:
		// Non-flattened nested struct: the composed key prefixes the
		// inner fields.
		return loadStruct(sec, key, field)
	}

	text, present := sec.Get(key)
	if !present {
		return nil
	}
	return setScalar(field, key, text)
}

func setScalar(field reflect.Value, key, text string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(text)
	case reflect.Bool:
		v, err := strconv.ParseBool(text)
		if err != nil {
			return fmt.Errorf("%w: key %q: %v", ErrInvalidType, key, err)
		}
		field.SetBool(v)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(text, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("%w: key %q: %v", ErrInvalidType, key, err)
		}
		field.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(text, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("%w: key %q: %v", ErrInvalidType, key, err)
		}
		field.SetUint(v)
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(text, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("%w: key %q: %v", ErrInvalidType, key, err)
		}
		field.SetFloat(v)
	default:
		return fmt.Errorf("%w: key %q: unsupported field kind %s", ErrBadSchema, key, field.Kind())
	}
	return nil
}

func appendStruct(sec *Section, prefix string, rv reflect.Value) error {
	return walkStruct(prefix, rv, func(field reflect.Value, spec fieldSpec, key string) error {
		return appendField(sec, key, field)
	})
}

func appendField(sec *Section, key string, field reflect.Value) error {
	if v, ok := field.Addr().Interface().(Value); ok {
		return v.AppendIni(sec, key)
	}
	if m, ok := field.Addr().Interface().(encoding.TextMarshaler); ok {
		text, err := m.MarshalText()
		if err != nil {
			return fmt.Errorf("%w: key %q: %v", ErrInvalidValue, key, err)
		}
		sec.Set(key, string(text))
		return nil
	}

	switch field.Kind() {
	case reflect.Pointer:
		if field.IsNil() {
			return nil
		}
		return appendField(sec, key, field.Elem())
	case reflect.Struct:
		return appendStruct(sec, key, field)
	}

	text, err := formatScalar(field, key)
	if err != nil {
		return err
	}
	sec.Set(key, text)
	return nil
}

func formatScalar(field reflect.Value, key string) (string, error) {
	switch field.Kind() {
	case reflect.String:
		return field.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(field.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(field.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(field.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(field.Float(), 'f', -1, field.Type().Bits()), nil
	}
	return "", fmt.Errorf("%w: key %q: unsupported field kind %s", ErrBadSchema, key, field.Kind())
}

func removeStruct(sec *Section, prefix string, rv reflect.Value) {
	walkStruct(prefix, rv, func(field reflect.Value, spec fieldSpec, key string) error {
		removeField(sec, key, field)
		return nil
	})
}

func removeField(sec *Section, key string, field reflect.Value) {
	if v, ok := field.Addr().Interface().(Value); ok {
		v.RemoveIni(sec, key)
		return
	}
	if _, ok := field.Addr().Interface().(encoding.TextMarshaler); ok {
		sec.Delete(key)
		return
	}
	switch field.Kind() {
	case reflect.Pointer:
		// A pointer to a struct owns composed inner keys, so remove
		// recurses like load and append do. The schema decides which
		// keys exist, not the value, so a nil pointer still removes
		// through a zero instance.
		elem := field.Type().Elem()
		if elem.Kind() == reflect.Struct {
			v := field
			if v.IsNil() {
				v = reflect.New(elem)
			}
			if _, ok := v.Interface().(encoding.TextMarshaler); !ok {
				removeStruct(sec, key, v.Elem())
				return
			}
		}
		sec.Delete(key)
	case reflect.Struct:
		removeStruct(sec, key, field)
	default:
		sec.Delete(key)
	}
}
