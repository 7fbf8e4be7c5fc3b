package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"rentdesk/internal/models"
)

// SetVehicles replaces the in-memory catalog cache.
func (db *DB) SetVehicles(vehicles []models.Vehicle) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.vehiclesCache = make(map[int64]models.Vehicle, len(vehicles))
	for _, v := range vehicles {
		db.vehiclesCache[v.ID] = v
	}
}

// SyncVehicles upserts the config-declared fleet into the vehicles table and
// refreshes the cache. Vehicles missing from the list are deactivated, not
// deleted, so historical bookings keep a valid reference.
func (db *DB) SyncVehicles(ctx context.Context, vehicles []models.Vehicle) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `UPDATE vehicles SET is_active = 0, updated_at = ?`, time.Now()); err != nil {
		return fmt.Errorf("failed to deactivate vehicles: %w", err)
	}

	query := `INSERT INTO vehicles (id, name, description, daily_rate, sort_order, is_active, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, 1, ?, ?)
              ON CONFLICT(id) DO UPDATE SET
                  name = excluded.name,
                  description = excluded.description,
                  daily_rate = excluded.daily_rate,
                  sort_order = excluded.sort_order,
                  is_active = 1,
                  updated_at = excluded.updated_at`
	now := time.Now()
	for _, v := range vehicles {
		if _, err := tx.ExecContext(ctx, query, v.ID, v.Name, v.Description, v.DailyRate, v.SortOrder, now, now); err != nil {
			return fmt.Errorf("failed to upsert vehicle %d: %w", v.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit vehicle sync: %w", err)
	}

	db.SetVehicles(vehicles)
	return nil
}

// GetVehicleByID resolves a vehicle from the cache, falling back to the
// table. Inactive vehicles are treated as absent.
func (db *DB) GetVehicleByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	db.mu.RLock()
	v, ok := db.vehiclesCache[id]
	db.mu.RUnlock()
	if ok {
		return &v, nil
	}

	var vehicle models.Vehicle
	query := `SELECT id, name, description, daily_rate, sort_order, is_active, created_at, updated_at
              FROM vehicles WHERE id = ? AND is_active = 1`
	err := db.QueryRowContext(ctx, query, id).Scan(
		&vehicle.ID, &vehicle.Name, &vehicle.Description, &vehicle.DailyRate,
		&vehicle.SortOrder, &vehicle.IsActive, &vehicle.CreatedAt, &vehicle.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle by id: %w", err)
	}
	return &vehicle, nil
}

// GetActiveVehicles returns the cached fleet sorted for display.
func (db *DB) GetActiveVehicles(ctx context.Context) ([]*models.Vehicle, error) {
	db.mu.RLock()
	vehicles := make([]*models.Vehicle, 0, len(db.vehiclesCache))
	for _, v := range db.vehiclesCache {
		vehicle := v
		vehicles = append(vehicles, &vehicle)
	}
	db.mu.RUnlock()

	if len(vehicles) > 0 {
		sort.Slice(vehicles, func(i, j int) bool {
			if vehicles[i].SortOrder == vehicles[j].SortOrder {
				return vehicles[i].ID < vehicles[j].ID
			}
			return vehicles[i].SortOrder < vehicles[j].SortOrder
		})
		return vehicles, nil
	}

	query := `SELECT id, name, description, daily_rate, sort_order, is_active, created_at, updated_at
              FROM vehicles WHERE is_active = 1 ORDER BY sort_order ASC, id ASC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get active vehicles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v := &models.Vehicle{}
		err := rows.Scan(&v.ID, &v.Name, &v.Description, &v.DailyRate,
			&v.SortOrder, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return vehicles, nil
}
