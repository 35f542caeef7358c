package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/metastore-labs/metasync/pkg/errors"
	"github.com/metastore-labs/metasync/pkg/metadata"
)

// Record is a locally managed entity row. Aspects are stored as a JSON
// document so kinds can carry different aspect sets without schema
// churn.
type Record struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	URN        string    `json:"urn" gorm:"type:varchar(512);not null;uniqueIndex"`
	Kind       string    `json:"kind" gorm:"type:varchar(64);not null;index"`
	Name       string    `json:"name" gorm:"type:varchar(255);not null"`
	Aspects    string    `json:"aspects" gorm:"type:text;not null"`
	SyncStatus string    `json:"sync_status" gorm:"type:varchar(32);not null;index"`
	Connection string    `json:"connection,omitempty" gorm:"type:varchar(255)"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func newRecord(entity metadata.Entity, status metadata.SyncStatus) (Record, error) {
	if err := entity.Validate(); err != nil {
		return Record{}, err
	}
	if !status.Valid() {
		return Record{}, &errors.ValidationError{
			Field: "sync_status", Value: string(status), Message: "unknown sync status",
		}
	}

	aspects, err := json.Marshal(entity.Aspects)
	if err != nil {
		return Record{}, errors.WrapStore("sqlite", "encode", entity.URN, err)
	}
	return Record{
		ID:         uuid.New(),
		URN:        entity.URN,
		Kind:       string(entity.Kind),
		Name:       entity.Name,
		Aspects:    string(aspects),
		SyncStatus: string(status),
	}, nil
}

// Entity decodes the record back into its entity form.
func (r Record) Entity() (metadata.Entity, error) {
	entity := metadata.NewEntity(r.URN, metadata.Kind(r.Kind), r.Name)
	if r.Aspects != "" {
		if err := json.Unmarshal([]byte(r.Aspects), &entity.Aspects); err != nil {
			return metadata.Entity{}, errors.WrapStore("sqlite", "decode", r.URN, err)
		}
	}
	return entity, nil
}

// Status returns the record's sync status as its typed form.
func (r Record) Status() metadata.SyncStatus {
	return metadata.SyncStatus(r.SyncStatus)
}
