package catalog

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/dmitrymomot/lingo/internal"
)

// FS returns a Source reading translation files from fsys. Files use the
// layout described by Decode and are named either "{locale}.{ext}" or
// "{locale}/{namespace}.{ext}". Files of unknown extension are skipped.
//
//	en.json
//	de/errors.yaml
//	zh-Hans/common.toml
func FS(fsys fs.FS) Source {
	return SourceFunc(func(ctx context.Context) (internal.Dictionary, error) {
		dict := internal.Dictionary{}
		err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			format, ok := FormatOf(name)
			if !ok {
				return nil
			}

			locale, namespace, err := placement(name)
			if err != nil {
				return err
			}

			data, err := fs.ReadFile(fsys, name)
			if err != nil {
				return fmt.Errorf("reading %q: %w", name, err)
			}
			entries, err := Decode(format, data)
			if err != nil {
				return fmt.Errorf("parsing %q: %w", name, err)
			}
			add(dict, locale, namespace, entries)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return dict, nil
	})
}
