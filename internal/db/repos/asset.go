package repos

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mediaforge/mediaforge/internal/db/models"
)

// AssetRepository provides access to asset-related database operations
type AssetRepository struct {
	db *gorm.DB
}

// NewAssetRepository creates a new asset repository instance
func NewAssetRepository(db *gorm.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// Create creates a new asset in the database
func (r *AssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	if asset.ID == "" {
		return fmt.Errorf("asset id is required")
	}
	if asset.StorageKey == "" {
		return fmt.Errorf("asset storage key is required")
	}
	return r.db.WithContext(ctx).Create(asset).Error
}

// GetByID retrieves an asset by its ID
func (r *AssetRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	var asset models.Asset
	err := r.db.WithContext(ctx).Where(&models.Asset{ID: id}).First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("asset %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return &asset, nil
}

// Delete removes the asset row
func (r *AssetRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Asset{ID: id})
	if result.Error != nil {
		return fmt.Errorf("failed to delete asset: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("asset %s: %w", id, ErrNotFound)
	}
	return nil
}

// List returns assets, newest first
func (r *AssetRepository) List(ctx context.Context, opts *models.ListOptions) ([]models.Asset, error) {
	opts = opts.WithDefaults()

	var assets []models.Asset
	err := r.db.WithContext(ctx).Model(&models.Asset{}).
		Order("created_at DESC").
		Limit(opts.Limit).
		Offset(opts.Offset).
		Find(&assets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return assets, nil
}
