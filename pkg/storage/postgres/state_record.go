package postgres

import "time"

// StateRecord is one serialized game state, addressed by its storage key.
type StateRecord struct {
	ID uint `gorm:"primaryKey"`

	Key     string `gorm:"type:varchar(64);not null;uniqueIndex:idx_state_key"`
	Payload []byte `gorm:"type:bytea;not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName overrides the default table name for GORM.
func (StateRecord) TableName() string {
	return "app_state_record"
}
