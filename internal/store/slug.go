package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var (
	slugQuotes    = regexp.MustCompile(`['"]`)
	slugNonAlnum  = regexp.MustCompile(`[^a-z0-9]+`)
	slugEdgeDash  = regexp.MustCompile(`^-+|-+$`)
	slugTranslits = strings.NewReplacer("å", "a", "ä", "a", "ö", "o")
)

// Slugify derives a lowercase hyphenated identifier from a name.
func Slugify(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = slugTranslits.Replace(s)
	s = slugQuotes.ReplaceAllString(s, "")
	s = slugNonAlnum.ReplaceAllString(s, "-")
	return slugEdgeDash.ReplaceAllString(s, "")
}

// Tables that carry a slug column. UniqueSlug refuses anything else so the
// table name can be interpolated into SQL safely.
var slugTables = map[string]bool{
	"products":   true,
	"categories": true,
}

// UniqueSlug derives a slug from name that is unique within table, appending
// -2, -3, ... on collision. excludeID > 0 skips the entity's own row when
// regenerating a slug on rename.
func (s *Store) UniqueSlug(ctx context.Context, table, name string, excludeID int64) (string, error) {
	if !slugTables[table] {
		return "", fmt.Errorf("unknown slug table: %s", table)
	}

	base := Slugify(name)
	if base == "" {
		base = "item"
	}

	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE slug = ?", table)
	args := []interface{}{}
	if excludeID > 0 {
		query += " AND id != ?"
	}
	query += ")"

	slug := base
	for counter := 2; ; counter++ {
		args = args[:0]
		args = append(args, slug)
		if excludeID > 0 {
			args = append(args, excludeID)
		}

		var exists bool
		if err := s.db.GetContext(ctx, &exists, query, args...); err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !exists {
			return slug, nil
		}

		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}
