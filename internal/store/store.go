// Package store persists the local working copy of metadata entities in
// SQLite. The working copy is what diff and push operate on; the remote
// catalog is never read at diff time without going through this store
// first.
package store

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/metastore-labs/metasync/pkg/errors"
	"github.com/metastore-labs/metasync/pkg/metadata"
)

// InMemoryDSN opens a private in-process database. Used by tests and by
// one-shot CLI runs that do not want a file on disk.
const InMemoryDSN = "file::memory:?cache=shared"

// Store wraps the SQLite-backed record table.
type Store struct {
	db *gorm.DB
}

// Open connects to the SQLite database at dsn and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, errors.WrapStore("sqlite", "open", dsn, err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, errors.WrapStore("sqlite", "migrate", dsn, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return errors.WrapStore("sqlite", "close", "", err)
	}
	return db.Close()
}

// Save upserts an entity's record keyed by URN, preserving the record ID
// on update so history stays attached.
func (s *Store) Save(ctx context.Context, entity metadata.Entity, status metadata.SyncStatus) (Record, error) {
	record, err := newRecord(entity, status)
	if err != nil {
		return Record{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Record
		result := tx.Where("urn = ?", record.URN).First(&existing)
		switch {
		case result.Error == nil:
			record.ID = existing.ID
			record.CreatedAt = existing.CreatedAt
			record.Connection = existing.Connection
			return tx.Save(&record).Error
		case stderrors.Is(result.Error, gorm.ErrRecordNotFound):
			return tx.Create(&record).Error
		default:
			return result.Error
		}
	})
	if err != nil {
		return Record{}, errors.WrapStore("sqlite", "save", record.URN, err)
	}
	return record, nil
}

// Get returns the record for a URN.
func (s *Store) Get(ctx context.Context, urn string) (Record, error) {
	var record Record
	err := s.db.WithContext(ctx).Where("urn = ?", urn).First(&record).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, &errors.NotFoundError{Resource: "record", URN: urn}
	}
	if err != nil {
		return Record{}, errors.WrapStore("sqlite", "get", urn, err)
	}
	return record, nil
}

// List returns every record, ordered by URN.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	var records []Record
	err := s.db.WithContext(ctx).Order("urn").Find(&records).Error
	if err != nil {
		return nil, errors.WrapStore("sqlite", "list", "", err)
	}
	return records, nil
}

// ListByKind returns every record of one entity kind, ordered by URN.
func (s *Store) ListByKind(ctx context.Context, kind metadata.Kind) ([]Record, error) {
	var records []Record
	err := s.db.WithContext(ctx).Where("kind = ?", string(kind)).Order("urn").Find(&records).Error
	if err != nil {
		return nil, errors.WrapStore("sqlite", "list", string(kind), err)
	}
	return records, nil
}

// ListByStatus returns every record in one sync status, ordered by URN.
func (s *Store) ListByStatus(ctx context.Context, status metadata.SyncStatus) ([]Record, error) {
	var records []Record
	err := s.db.WithContext(ctx).Where("sync_status = ?", string(status)).Order("urn").Find(&records).Error
	if err != nil {
		return nil, errors.WrapStore("sqlite", "list", string(status), err)
	}
	return records, nil
}

// Entities returns the decoded entities for a kind, ordered by URN.
func (s *Store) Entities(ctx context.Context, kind metadata.Kind) ([]metadata.Entity, error) {
	records, err := s.ListByKind(ctx, kind)
	if err != nil {
		return nil, err
	}
	entities := make([]metadata.Entity, 0, len(records))
	for _, record := range records {
		entity, err := record.Entity()
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// SetStatus bulk-updates the sync status of the given URNs.
func (s *Store) SetStatus(ctx context.Context, urns []string, status metadata.SyncStatus) error {
	if len(urns) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Model(&Record{}).
		Where("urn IN ?", urns).
		Update("sync_status", string(status)).Error
	if err != nil {
		return errors.WrapStore("sqlite", "set-status", string(status), err)
	}
	return nil
}

// SetConnection tags a record with the DataHub connection it belongs to.
// An empty name clears the reference.
func (s *Store) SetConnection(ctx context.Context, urn, connection string) error {
	result := s.db.WithContext(ctx).
		Model(&Record{}).
		Where("urn = ?", urn).
		Update("connection", connection)
	if result.Error != nil {
		return errors.WrapStore("sqlite", "set-connection", urn, result.Error)
	}
	if result.RowsAffected == 0 {
		return &errors.NotFoundError{Resource: "record", URN: urn}
	}
	return nil
}

// Delete removes a record by URN.
func (s *Store) Delete(ctx context.Context, urn string) error {
	result := s.db.WithContext(ctx).Where("urn = ?", urn).Delete(&Record{})
	if result.Error != nil {
		return errors.WrapStore("sqlite", "delete", urn, result.Error)
	}
	if result.RowsAffected == 0 {
		return &errors.NotFoundError{Resource: "record", URN: urn}
	}
	return nil
}

// Count returns the number of records per kind.
func (s *Store) Count(ctx context.Context) (map[metadata.Kind]int64, error) {
	type row struct {
		Kind  string
		Total int64
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Model(&Record{}).
		Select("kind, count(*) as total").
		Group("kind").
		Find(&rows).Error
	if err != nil {
		return nil, errors.WrapStore("sqlite", "count", "", err)
	}
	counts := make(map[metadata.Kind]int64, len(rows))
	for _, r := range rows {
		counts[metadata.Kind(r.Kind)] = r.Total
	}
	return counts, nil
}
