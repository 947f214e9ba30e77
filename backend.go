package cache

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type CacheKey[K comparable] interface {
	Marshal(K) string
	Unmarshal(string) (K, error)
}

type StringCacheKey struct {
}

func (k *StringCacheKey) Marshal(key string) string {
	return key
}

func (k *StringCacheKey) Unmarshal(data string) (string, error) {
	return data, nil
}

type IntCacheKey struct {
}

func (k *IntCacheKey) Marshal(key int) string {
	return fmt.Sprintf("%d", key)
}

func (k *IntCacheKey) Unmarshal(data string) (int, error) {
	return strconv.Atoi(data)
}

const keySeparator = ":"

var keyEscaper = strings.NewReplacer(`\`, `\\`, ":", `\:`, "=", `\=`)

// Key builds a cache key from a namespace and the arguments that shape the
// cached value. Every part is escaped, so Key("a", "b:c") and
// Key("a", "b", "c") produce different keys.
func Key(namespace string, args ...any) string {
	var b strings.Builder
	b.WriteString(keyEscaper.Replace(namespace))
	for _, arg := range args {
		b.WriteString(keySeparator)
		b.WriteString(formatKeyPart(arg))
	}
	return b.String()
}

// KeyWithParams is Key for named parameters. Parameter names are sorted so
// map iteration order never changes the key.
func KeyWithParams(namespace string, params map[string]any) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(keyEscaper.Replace(namespace))
	for _, name := range names {
		b.WriteString(keySeparator)
		b.WriteString(keyEscaper.Replace(name))
		b.WriteString("=")
		b.WriteString(formatKeyPart(params[name]))
	}
	return b.String()
}

// KeyPrefix returns the prefix shared by every key built from namespace, for
// use with RemovePrefix.
func KeyPrefix(namespace string) string {
	return keyEscaper.Replace(namespace) + keySeparator
}

// formatKeyPart renders one key argument, already escaped. Strings, numbers,
// booleans and Stringers render as their plain text, so 10 and "10" share a
// key. nil and composite values carry a marker that escaped text can never
// contain, so they never collide with a plain value or with each other.
func formatKeyPart(v any) string {
	switch t := v.(type) {
	case nil:
		return `\0`
	case string:
		return keyEscaper.Replace(t)
	case fmt.Stringer:
		return keyEscaper.Replace(t.String())
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return keyEscaper.Replace(fmt.Sprintf("%v", t))
	default:
		return `\#` + keyEscaper.Replace(fmt.Sprintf("%#v", t))
	}
}
