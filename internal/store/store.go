// Package store is the local SQLite cache of satellites. Rows are keyed by
// satellite id and written insert-or-ignore: the first write of an id wins
// and is never overwritten by later syncs.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mariavieira99/Satellites/internal/filter"
	"github.com/mariavieira99/Satellites/internal/satellite"
)

// ErrNotFound is returned when no cached row has the requested id.
var ErrNotFound = errors.New("not found")

// row is the GORM model for the satellites table.
type row struct {
	SatelliteID  int     `gorm:"column:satellite_id;primaryKey;autoIncrement:false"`
	RecordID     string  `gorm:"column:record_id"`
	Name         string  `gorm:"column:name;index:idx_satellites_name"`
	Date         string  `gorm:"column:date"`
	Line1        string  `gorm:"column:line1"`
	Line2        string  `gorm:"column:line2"`
	Type         string  `gorm:"column:type"`
	Inclination  float64 `gorm:"column:inclination;index:idx_satellites_inclination"`
	Eccentricity float64 `gorm:"column:eccentricity;index:idx_satellites_eccentricity"`
}

// TableName pins the table name.
func (row) TableName() string {
	return "satellites"
}

func toRow(s satellite.Satellite) row {
	return row{
		SatelliteID:  s.SatelliteID,
		RecordID:     s.ID,
		Name:         s.Name,
		Date:         s.Date,
		Line1:        s.Line1,
		Line2:        s.Line2,
		Type:         s.Type,
		Inclination:  s.Inclination,
		Eccentricity: s.Eccentricity,
	}
}

func (r row) cached() satellite.CachedRow {
	return satellite.CachedRow{
		ID:           r.RecordID,
		SatelliteID:  r.SatelliteID,
		Name:         r.Name,
		Date:         r.Date,
		Line1:        r.Line1,
		Line2:        r.Line2,
		Type:         r.Type,
		Inclination:  r.Inclination,
		Eccentricity: r.Eccentricity,
	}
}

// orderable lists the columns a query may sort on.
var orderable = map[string]bool{
	"name":         true,
	"inclination":  true,
	"eccentricity": true,
}

// Store is the SQLite-backed satellite cache.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the cache database at path and migrates the
// schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn(path)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening cache %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("cache handle: %w", err)
	}
	// SQLite has a single writer; one connection queues background writes
	// behind reads instead of failing them with SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&row{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrating cache schema: %w", err)
	}

	logger.Info("cache opened", "component", "store", "path", path)
	return &Store{db: db, logger: logger}, nil
}

func dsn(path string) string {
	if path == ":memory:" || strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000&_journal_mode=WAL"
}

// Close releases the database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// InsertAll inserts satellites in one statement, ignoring ids that are
// already cached. It returns the number of rows actually inserted.
func (s *Store) InsertAll(ctx context.Context, sats []satellite.Satellite) (int64, error) {
	if len(sats) == 0 {
		return 0, nil
	}
	rows := make([]row, 0, len(sats))
	for _, sat := range sats {
		rows = append(rows, toRow(sat))
	}

	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	if res.Error != nil {
		return 0, fmt.Errorf("inserting %d satellites: %w", len(rows), res.Error)
	}
	return res.RowsAffected, nil
}

// Default returns up to limit cached satellites ordered by name.
func (s *Store) Default(ctx context.Context, limit int) ([]satellite.CachedRow, error) {
	var rows []row
	err := s.db.WithContext(ctx).Order("name ASC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing cached satellites: %w", err)
	}
	return cachedRows(rows), nil
}

// Query runs a filter predicate against the cache.
func (s *Store) Query(ctx context.Context, p filter.Predicate) ([]satellite.CachedRow, error) {
	order := p.OrderBy
	if !orderable[order] {
		order = "name"
	}

	q := s.db.WithContext(ctx).Model(&row{})
	for _, c := range p.Clauses {
		sql, args := c.SQL()
		q = q.Where(sql, args...)
	}
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}

	var rows []row
	if err := q.Order(order + " ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying cached satellites: %w", err)
	}

	s.logger.Debug("cache query", "component", "store", "query", p.String(), "rows", len(rows))
	return cachedRows(rows), nil
}

// ByID returns the cached row for a satellite id, or ErrNotFound.
func (s *Store) ByID(ctx context.Context, id int) (satellite.CachedRow, error) {
	var r row
	err := s.db.WithContext(ctx).Where("satellite_id = ?", id).Take(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return satellite.CachedRow{}, ErrNotFound
	}
	if err != nil {
		return satellite.CachedRow{}, fmt.Errorf("reading satellite %d: %w", id, err)
	}
	return r.cached(), nil
}

// Count returns the number of cached satellites.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&row{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting cached satellites: %w", err)
	}
	return n, nil
}

// Clear deletes every cached satellite. Only operators call this; the query
// path never clears the cache.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&row{})
	if res.Error != nil {
		return 0, fmt.Errorf("clearing cache: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func cachedRows(rows []row) []satellite.CachedRow {
	out := make([]satellite.CachedRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.cached())
	}
	return out
}
