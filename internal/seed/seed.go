// Package seed loads the lid catalog from a JSON file. The catalog has no
// user-facing edit flow; this is how it gets populated and refreshed.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/ymori/futalog/internal/domain"
)

type lidEntry struct {
	ID              int64    `json:"id"`
	RegionID        int64    `json:"region_id"`
	PrefectureID    *int64   `json:"prefecture_id"`
	PrefectureOrder *int64   `json:"prefecture_order"`
	CityName        string   `json:"city_name"`
	Address         string   `json:"address"`
	DifficultyCode  string   `json:"difficulty_code"`
	ImageURL        *string  `json:"image_url"`
	Designs         []string `json:"designs"`
}

// lidWriter is the subset of store.LidStore that seeding requires.
type lidWriter interface {
	GetByID(ctx context.Context, id int64) (*domain.Lid, error)
	Create(ctx context.Context, lid *domain.Lid, designNames []string) (*domain.Lid, error)
}

// Load reads the catalog file at path and inserts entries not yet present.
// Entries with a non-positive id are skipped. It returns how many lids were
// inserted.
func Load(ctx context.Context, path string, lids lidWriter, logger *slog.Logger) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var entries []lidEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	inserted := 0
	for _, entry := range entries {
		if entry.ID <= 0 {
			logger.Warn("skipping catalog entry with invalid id", "id", entry.ID)
			continue
		}

		existing, err := lids.GetByID(ctx, entry.ID)
		if err != nil {
			return inserted, fmt.Errorf("failed to check existing lid %d: %w", entry.ID, err)
		}
		if existing != nil {
			continue
		}

		lid := &domain.Lid{
			ID:              entry.ID,
			RegionID:        entry.RegionID,
			PrefectureID:    entry.PrefectureID,
			PrefectureOrder: entry.PrefectureOrder,
			CityName:        entry.CityName,
			Address:         entry.Address,
			DifficultyCode:  entry.DifficultyCode,
			ImageURL:        entry.ImageURL,
		}
		if lid.DifficultyCode == "" {
			lid.DifficultyCode = "C"
		}
		if _, err := lids.Create(ctx, lid, entry.Designs); err != nil {
			return inserted, fmt.Errorf("failed to insert lid %d: %w", entry.ID, err)
		}
		inserted++
	}

	logger.Info("catalog seed complete", "inserted", inserted, "total", len(entries))
	return inserted, nil
}
