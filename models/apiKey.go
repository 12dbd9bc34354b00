package models

import (
	"context"
	"errors"
	"time"

	"github.com/petrovis/hemjilt_backend/config"
	"github.com/petrovis/hemjilt_backend/utils"
	"gorm.io/gorm"
)

// ApiKey is the allow-list for machine clients of the external lookup
// endpoint. Keys are static credentials, separate from interactive sessions.
type ApiKey struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Key         string    `gorm:"size:100;not null;uniqueIndex" json:"key"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	IsActive    *bool     `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// ValidateApiKey resolves a presented key to its name, failing for unknown
// and inactive keys alike.
func ValidateApiKey(ctx context.Context, key string) (*ApiKey, error) {
	db := config.GetDB()

	var apiKey ApiKey
	err := db.WithContext(ctx).Where("`key` = ?", key).First(&apiKey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}

	if apiKey.IsActive != nil && !*apiKey.IsActive {
		return nil, utils.ErrorRecordNotFound
	}

	return &apiKey, nil
}
