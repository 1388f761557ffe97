package store

import (
	"context"

	"storefront-service/internal/models"
)

type spotRow struct {
	ID       int64  `db:"id"`
	Title    string `db:"title"`
	ImageURL string `db:"image_url"`
}

// HomepageSpots returns the active promo tiles in display order, capped at
// limit. Callers fill missing slots with placeholders.
func (s *Store) HomepageSpots(ctx context.Context, limit int) ([]models.Spot, error) {
	var rows []spotRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, title, image_url
		FROM spots
		WHERE active = 1
		ORDER BY sort_order ASC, id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}

	spots := make([]models.Spot, 0, len(rows))
	for i := range rows {
		id := rows[i].ID
		spots = append(spots, models.Spot{
			ID:       &id,
			Title:    rows[i].Title,
			ImageURL: rows[i].ImageURL,
		})
	}
	return spots, nil
}

// CreateSpot inserts a promo tile (used by seeding)
func (s *Store) CreateSpot(ctx context.Context, title, imageURL string, sortOrder int, active bool) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO spots (title, image_url, sort_order, active) VALUES (?, ?, ?, ?)",
		title, imageURL, sortOrder, boolToInt(active))
	return err
}
