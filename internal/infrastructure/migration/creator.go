package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"text/template"
	"time"
)

// versionLayout sorts lexically in time order; golang-migrate reads it as a uint
const versionLayout = "20060102150405"

// Generated files wrap their statements in a transaction
var (
	upTemplate = template.Must(template.New("up").Parse(`-- {{.Name}}
-- {{.Description}}
-- Created {{.Created}}. Money columns are unconstrained NUMERIC; record status is derived, never stored.
BEGIN;

COMMIT;
`))
	downTemplate = template.Must(template.New("down").Parse(`-- Rollback of {{.Name}}
BEGIN;

COMMIT;
`))
)

var (
	invalid    = regexp.MustCompile(`[^a-z0-9_]`)
	separators = regexp.MustCompile(`[\s_-]+`)
)

// MigrationFile describes a created up/down pair
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Created     string
	UpPath      string
	DownPath    string
}

// CreateMigration writes an empty up/down pair into migrationsDir. The version
// is the current UTC time, bumped past the newest existing migration so that
// files created in the same second still sort after it.
func CreateMigration(migrationsDir, name, description string) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, errors.New("migration name must contain letters or digits")
	}
	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := ListMigrations(os.DirFS(migrationsDir))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	version := nextVersion(now, existing)

	base := version + "_" + slug
	mf := &MigrationFile{
		Version:     version,
		Name:        name,
		Description: description,
		Created:     now.Format(time.RFC3339),
		UpPath:      filepath.Join(migrationsDir, base+".up.sql"),
		DownPath:    filepath.Join(migrationsDir, base+".down.sql"),
	}

	if err := writeTemplate(mf.UpPath, upTemplate, mf); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}
	if err := writeTemplate(mf.DownPath, downTemplate, mf); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}
	return mf, nil
}

// nextVersion returns now as a version, or one second past the latest
// existing version when the clock has not moved past it
func nextVersion(now time.Time, existing []string) string {
	version := now.Format(versionLayout)
	if len(existing) == 0 {
		return version
	}
	latest, _, _ := strings.Cut(existing[len(existing)-1], "_")
	if version > latest {
		return version
	}
	if t, err := time.Parse(versionLayout, latest); err == nil {
		return t.Add(time.Second).Format(versionLayout)
	}
	return version
}

func writeTemplate(path string, tmpl *template.Template, data *MigrationFile) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer f.Close()

	return tmpl.Execute(f, data)
}

// sanitizeName lowercases name, joins its words with underscores and drops
// any other punctuation
func sanitizeName(name string) string {
	s := separators.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	return strings.Trim(invalid.ReplaceAllString(s, ""), "_")
}

// ListMigrations returns the base names of all up migrations in fsys, in
// version order. Use os.DirFS for a directory on disk.
func ListMigrations(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if base, ok := strings.CutSuffix(entry.Name(), ".up.sql"); ok && !entry.IsDir() {
			names = append(names, base)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Unpaired returns the up migrations in fsys that have no down migration
func Unpaired(fsys fs.FS) ([]string, error) {
	names, err := ListMigrations(fsys)
	if err != nil {
		return nil, err
	}
	var unpaired []string
	for _, base := range names {
		if _, err := fs.Stat(fsys, base+".down.sql"); err != nil {
			unpaired = append(unpaired, base)
		}
	}
	return unpaired, nil
}
