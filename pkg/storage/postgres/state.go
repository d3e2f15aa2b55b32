package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaveState upserts the payload stored under key.
func (p *PostgresClient) SaveState(ctx context.Context, key string, payload []byte) error {
	record := &StateRecord{Key: key, Payload: payload, UpdatedAt: time.Now()}
	tx := p.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(record)

	if tx.Error != nil {
		return fmt.Errorf("save state %q: %w", key, tx.Error)
	}
	return nil
}

// LoadState returns nil without error when nothing is stored under key.
func (p *PostgresClient) LoadState(ctx context.Context, key string) ([]byte, error) {
	var record StateRecord
	err := p.DB.WithContext(ctx).
		Where("key = ?", key).
		First(&record).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load state %q: %w", key, err)
	}
	return record.Payload, nil
}

// DeleteState removes the payload stored under key.
func (p *PostgresClient) DeleteState(ctx context.Context, key string) error {
	return p.DB.WithContext(ctx).
		Where("key = ?", key).
		Delete(&StateRecord{}).Error
}
