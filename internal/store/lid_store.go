package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ymori/futalog/internal/domain"
)

type LidStore struct {
	db *sql.DB
}

func NewLidStore(db *sql.DB) *LidStore {
	return &LidStore{db: db}
}

// List returns the whole catalog with display names composed from each
// lid's designs. Row order follows the raw table ordering the original
// feed used; final presentation order is the grouping engine's job.
func (s *LidStore) List(ctx context.Context) ([]*domain.Lid, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, region_id, prefecture_id, prefecture_order, city_name, address, difficulty_code, image_url
		FROM lids
		ORDER BY region_id ASC, prefecture_id ASC, prefecture_order ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list lids: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var lids []*domain.Lid
	byID := make(map[int64]*domain.Lid)
	for rows.Next() {
		lid := &domain.Lid{}
		if err := rows.Scan(&lid.ID, &lid.RegionID, &lid.PrefectureID, &lid.PrefectureOrder,
			&lid.CityName, &lid.Address, &lid.DifficultyCode, &lid.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan lid: %w", err)
		}
		lids = append(lids, lid)
		byID[lid.ID] = lid
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lids: %w", err)
	}

	if err := s.attachDisplayNames(ctx, byID); err != nil {
		return nil, err
	}
	return lids, nil
}

func (s *LidStore) GetByID(ctx context.Context, id int64) (*domain.Lid, error) {
	lid := &domain.Lid{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, region_id, prefecture_id, prefecture_order, city_name, address, difficulty_code, image_url
		FROM lids WHERE id = ?
	`, id).Scan(&lid.ID, &lid.RegionID, &lid.PrefectureID, &lid.PrefectureOrder,
		&lid.CityName, &lid.Address, &lid.DifficultyCode, &lid.ImageURL)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lid: %w", err)
	}

	byID := map[int64]*domain.Lid{lid.ID: lid}
	if err := s.attachDisplayNames(ctx, byID); err != nil {
		return nil, err
	}
	return lid, nil
}

// attachDisplayNames joins designs onto the given lids, composing each
// display name as the design names in display order separated by " / ".
// Unset display orders sort first, as order zero.
func (s *LidStore) attachDisplayNames(ctx context.Context, byID map[int64]*domain.Lid) error {
	if len(byID) == 0 {
		return nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT lid_id, design_name FROM lid_designs
		ORDER BY lid_id ASC, COALESCE(display_order, 0) ASC, id ASC
	`)
	if err != nil {
		return fmt.Errorf("failed to list lid designs: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	names := make(map[int64][]string)
	for rows.Next() {
		var lidID int64
		var name string
		if err := rows.Scan(&lidID, &name); err != nil {
			return fmt.Errorf("failed to scan lid design: %w", err)
		}
		names[lidID] = append(names[lidID], name)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating lid designs: %w", err)
	}

	for id, lid := range byID {
		lid.DisplayName = strings.Join(names[id], " / ")
	}
	return nil
}

// Create inserts one catalog row. The catalog has no user-facing edit flow;
// this exists for seeding and tests.
func (s *LidStore) Create(ctx context.Context, lid *domain.Lid, designNames []string) (*domain.Lid, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lids (id, region_id, prefecture_id, prefecture_order, city_name, address, difficulty_code, image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, lid.ID, lid.RegionID, lid.PrefectureID, lid.PrefectureOrder, lid.CityName, lid.Address, lid.DifficultyCode, lid.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create lid: %w", err)
	}

	for i, name := range designNames {
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO lid_designs (lid_id, design_name, display_order) VALUES (?, ?, ?)
		`, lid.ID, name, i+1); err != nil {
			return nil, fmt.Errorf("failed to create lid design: %w", err)
		}
	}

	return s.GetByID(ctx, lid.ID)
}
