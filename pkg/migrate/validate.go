package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"go.uber.org/multierr"
)

const (
	annotationUp   = "-- +goose Up"
	annotationDown = "-- +goose Down"
	statementBegin = "-- +goose StatementBegin"
	statementEnd   = "-- +goose StatementEnd"
)

// ValidateDir checks the migrations in dir on disk.
func ValidateDir(dir string) error {
	if dir == "" {
		return errors.New("dir is required")
	}
	return ValidateFS(os.DirFS(dir), ".")
}

// ValidateFS reports every problem with the .sql files under dir, not just
// the first: bad names, duplicate versions and missing or unbalanced goose
// annotations.
func ValidateFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	var errs error
	versions := make(map[int64]string)
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".sql" {
			continue
		}
		name := e.Name()

		version, err := fileVersion(name)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if prev, dup := versions[version]; dup {
			errs = multierr.Append(errs, fmt.Errorf("version %d used by both %q and %q", version, prev, name))
			continue
		}
		versions[version] = name

		body, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("read %q: %w", name, err))
			continue
		}
		errs = multierr.Append(errs, checkAnnotations(name, string(body)))
	}

	if len(versions) == 0 && errs == nil {
		return fmt.Errorf("no migrations found in %q", dir)
	}
	return errs
}

// fileVersion expects <YYYYMMDDHHMMSS>_<snake_name>.sql.
func fileVersion(name string) (int64, error) {
	stem := strings.TrimSuffix(name, ".sql")
	raw, label, ok := strings.Cut(stem, "_")
	if !ok || label == "" || nameSanitizeRe.MatchString(label) {
		return 0, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
	}
	v, err := ParseVersion(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid migration filename %q: %w", name, err)
	}
	return v, nil
}

func checkAnnotations(name, body string) error {
	up := strings.Index(body, annotationUp)
	down := strings.Index(body, annotationDown)
	switch {
	case up < 0:
		return fmt.Errorf("migration %q missing %q", name, annotationUp)
	case down < 0:
		return fmt.Errorf("migration %q missing %q", name, annotationDown)
	case down < up:
		return fmt.Errorf("migration %q has Down before Up", name)
	}
	if b, e := strings.Count(body, statementBegin), strings.Count(body, statementEnd); b != e {
		return fmt.Errorf("migration %q has %d StatementBegin and %d StatementEnd", name, b, e)
	}
	return nil
}
