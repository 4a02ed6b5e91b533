package catalog

import (
	"fmt"
	"path"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a translation file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf returns the format implied by the file extension.
func FormatOf(name string) (Format, bool) {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	default:
		return "", false
	}
}

// Decode parses data as a translation file and flattens nested tables
// into dot-separated keys:
//
//	errors:
//	  not_found: Not found
//
// becomes "errors.not_found". Numbers and booleans are kept as their text;
// lists are rejected.
func Decode(format Format, data []byte) (map[string]string, error) {
	var raw map[string]any
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &raw)
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	case FormatTOML:
		err = toml.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFile, err)
	}

	out := make(map[string]string, len(raw))
	if err := flatten(out, "", raw); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(out map[string]string, prefix string, in map[string]any) error {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			if err := flatten(out, key, val); err != nil {
				return err
			}
		case string:
			out[key] = val
		case nil:
			out[key] = ""
		case []any:
			return fmt.Errorf("%w: key %q", ErrInvalidValue, key)
		default:
			out[key] = fmt.Sprint(val)
		}
	}
	return nil
}

// placement derives the locale and key namespace of a translation file
// from its path relative to the catalog root. "{locale}.{ext}" holds keys
// as written; "{locale}/{namespace}.{ext}" prefixes them with "{namespace}.".
func placement(rel string) (locale, namespace string, err error) {
	rel = strings.TrimPrefix(path.Clean(rel), "/")
	base := strings.TrimSuffix(path.Base(rel), path.Ext(rel))
	dir := path.Dir(rel)

	switch {
	case dir == "." || dir == "":
		return base, "", nil
	case !strings.Contains(dir, "/"):
		return dir, base, nil
	default:
		return "", "", fmt.Errorf("%w: %q is nested too deep", ErrInvalidFile, rel)
	}
}

// add merges entries into dict under locale, prefixing keys with namespace.
func add(dict map[string]map[string]string, locale, namespace string, entries map[string]string) {
	target, ok := dict[locale]
	if !ok {
		target = make(map[string]string, len(entries))
		dict[locale] = target
	}
	for k, v := range entries {
		if namespace != "" {
			k = namespace + "." + k
		}
		target[k] = v
	}
}
