package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/seedlink/platform/internal/model"
)

// StationRepo provides read access to stations and their inventory lines
// for the browse API and the USSD station picker.
type StationRepo struct {
	db *sql.DB
}

// NewStationRepo returns a new StationRepo bound to the provided database.
func NewStationRepo(db *sql.DB) *StationRepo { return &StationRepo{db: db} }

// ListByCountyWithInventory returns stations whose county matches the
// given name (case-insensitive substring, the way the original county
// search behaves), each with its full set of inventory lines.  Stations
// are ordered by name for deterministic menus; an empty county returns
// all stations.
func (r *StationRepo) ListByCountyWithInventory(ctx context.Context, county string) ([]model.StationWithInventory, error) {
	q := `SELECT id, name, county, location, created_at, updated_at FROM stations`
	args := []interface{}{}
	if strings.TrimSpace(county) != "" {
		q += ` WHERE LOWER(county) LIKE ?`
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(county))+"%")
	}
	q += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	stations := make([]model.StationWithInventory, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var s model.StationWithInventory
		if err := rows.Scan(&s.ID, &s.Name, &s.County, &s.Location, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.Inventory = []model.InventoryLine{}
		index[s.ID] = len(stations)
		stations = append(stations, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(stations) == 0 {
		return stations, nil
	}
	// Fetch inventory for all matched stations in one query.
	ids := make([]interface{}, 0, len(stations))
	placeholders := make([]string, 0, len(stations))
	for _, s := range stations {
		ids = append(ids, s.ID)
		placeholders = append(placeholders, "?")
	}
	invQ := `SELECT id, station_id, seedling_type, quantity_available, updated_at
             FROM seedling_inventory
             WHERE station_id IN (` + strings.Join(placeholders, ",") + `)
             ORDER BY station_id, seedling_type`
	irows, err := r.db.QueryContext(ctx, invQ, ids...)
	if err != nil {
		return nil, err
	}
	defer irows.Close()
	for irows.Next() {
		var line model.InventoryLine
		if err := irows.Scan(&line.ID, &line.StationID, &line.SeedlingType, &line.QuantityAvailable, &line.UpdatedAt); err != nil {
			return nil, err
		}
		line.Status = model.StatusFor(line.QuantityAvailable)
		if idx, ok := index[line.StationID]; ok {
			stations[idx].Inventory = append(stations[idx].Inventory, line)
		}
	}
	return stations, irows.Err()
}

// GetByID returns a single station, or ErrNotFound.
func (r *StationRepo) GetByID(ctx context.Context, id uint64) (*model.Station, error) {
	const q = `SELECT id, name, county, location, created_at, updated_at FROM stations WHERE id = ?`
	var s model.Station
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.Name, &s.County, &s.Location, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
