package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mediaforge/mediaforge/internal/db/models"
	"github.com/mediaforge/mediaforge/internal/db/repos"
	"github.com/mediaforge/mediaforge/internal/events"
	"github.com/mediaforge/mediaforge/internal/logger"
	"github.com/mediaforge/mediaforge/internal/storage"
	"github.com/mediaforge/mediaforge/internal/types"
)

// Asset provides business logic for asset operations, including the
// two-resource deletion protocol.
type Asset struct {
	assets AssetStore
	store  ObjectStore
}

// NewAssetService creates a new asset service instance
func NewAssetService(assets AssetStore, store ObjectStore) *Asset {
	return &Asset{assets: assets, store: store}
}

// DeleteResult reports the outcome of a deletion. Warning is set when the
// operation succeeded overall but the store and the record had diverged.
type DeleteResult struct {
	ID      string `json:"id"`
	Warning string `json:"warning,omitempty"`
}

// PartialDeletionError marks the state where the object store bytes are gone
// but the database row could not be removed. It needs operator follow-up
// rather than a blind retry of the whole request.
type PartialDeletionError struct {
	ID         string
	StorageKey string
	Err        error
}

func (e *PartialDeletionError) Error() string {
	return fmt.Sprintf("partial deletion of asset %s: object %q was removed from the store but the record could not be deleted: %v",
		e.ID, e.StorageKey, e.Err)
}

func (e *PartialDeletionError) Unwrap() error {
	return e.Err
}

// Delete removes an asset from both the object store and the database.
//
// Ordering is deliberate: the bytes go first and the record last, so the
// store never holds bytes that no record points to. A record whose bytes are
// already gone is tolerated and reported as a warning; the reverse state is
// never created by this path.
func (a *Asset) Delete(ctx context.Context, id string) (*DeleteResult, error) {
	if id == "" {
		return nil, fmt.Errorf("asset: %w", ErrMissingID)
	}

	asset, err := a.assets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	bytesAlreadyGone := false
	if err := a.store.Delete(ctx, asset.StorageKey); err != nil {
		if !storage.IsNotFound(err) {
			// Abort before touching the record so the two resources cannot
			// diverge; the caller can retry the whole request.
			return nil, fmt.Errorf("object store delete of %q failed, asset record left intact: %w", asset.StorageKey, err)
		}
		bytesAlreadyGone = true
		logger.WarnWithFields("asset bytes already absent from object store", map[string]interface{}{
			"asset_id":    id,
			"storage_key": asset.StorageKey,
		})
	}

	if err := a.assets.Delete(ctx, id); err != nil {
		if !bytesAlreadyGone {
			return nil, &PartialDeletionError{ID: id, StorageKey: asset.StorageKey, Err: err}
		}
		return nil, fmt.Errorf("failed to delete asset record %s: %w", id, err)
	}

	events.Publish(events.Event{Type: events.EventAssetDeleted, AssetID: id})

	result := &DeleteResult{ID: id}
	if bytesAlreadyGone {
		result.Warning = fmt.Sprintf("object %q was already absent from the object store; record deleted", asset.StorageKey)
	}
	return result, nil
}

// Upload stores a new asset's bytes and creates its record
func (a *Asset) Upload(ctx context.Context, req *types.UploadAssetRequest) (*models.Asset, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	folder := req.Folder
	if folder == "" {
		folder = "assets"
	}

	uploaded, err := a.store.Upload(ctx, req.Data, req.Name, req.ContentType, folder)
	if err != nil {
		return nil, err
	}

	asset := &models.Asset{
		ID:          uuid.NewString(),
		Name:        req.Name,
		StorageKey:  uploaded.StoreRelativePath,
		Size:        int64(len(req.Data)),
		ContentType: req.ContentType,
		Metadata: models.JSONMap{
			"external_url": uploaded.ExternalURL,
		},
	}
	if err := a.assets.Create(ctx, asset); err != nil {
		// The bytes were stored but the record failed; remove the bytes so no
		// orphaned object is left behind.
		if delErr := a.store.Delete(ctx, uploaded.StoreRelativePath); delErr != nil && !storage.IsNotFound(delErr) {
			logger.Errorf("failed to clean up object %q after record create failure: %v", uploaded.StoreRelativePath, delErr)
		}
		return nil, fmt.Errorf("failed to create asset record: %w", err)
	}

	return asset, nil
}

// Get retrieves an asset by id
func (a *Asset) Get(ctx context.Context, id string) (*models.Asset, error) {
	if id == "" {
		return nil, fmt.Errorf("asset: %w", ErrMissingID)
	}
	return a.assets.GetByID(ctx, id)
}

// List returns asset records
func (a *Asset) List(ctx context.Context, opts *models.ListOptions) ([]models.Asset, error) {
	return a.assets.List(ctx, opts)
}

// Browse lists the direct children of a prefix in the object store
func (a *Asset) Browse(ctx context.Context, prefix string) ([]storage.Object, error) {
	return a.store.List(ctx, prefix)
}

// CreateFolder creates an empty folder marker in the object store
func (a *Asset) CreateFolder(ctx context.Context, folderPath string) error {
	return a.store.CreateFolder(ctx, folderPath)
}

// IsNotFound reports whether err maps to a missing-record outcome
func IsNotFound(err error) bool {
	return errors.Is(err, repos.ErrNotFound)
}
