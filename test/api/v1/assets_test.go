package api_test

import (
	"testing"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediaforge/mediaforge/internal/db/models"
	"github.com/mediaforge/mediaforge/internal/storage"
	"github.com/mediaforge/mediaforge/test"
)

// seedAsset creates an asset record with matching bytes in the object store
func seedAsset(s *test.Suite, id, name, key string, data []byte) {
	s.Store.Put(key, data)
	s.Require().NoError(s.AssetRepo.Create(s.Context(), &models.Asset{
		ID:         id,
		Name:       name,
		StorageKey: key,
		Size:       int64(len(data)),
		CreatedAt:  time.Now().UTC(),
	}))
}

func TestDeleteAssetRemovesBothResources(t *testing.T) {
	s := test.NewSuite(t)
	defer s.Cleanup()

	seedAsset(s, "asset-1", "style.lora", "models/style.lora", []byte("weights"))

	result, err := s.APIClient.DeleteAsset(s.Context(), "asset-1")
	require.NoError(t, err)
	assert.Equal(t, "asset-1", result.ID)
	assert.Empty(t, result.Warning)

	// Bytes are gone from the store and the record from the database.
	_, ok := s.Store.Get("models/style.lora")
	assert.False(t, ok)
	_, err = s.AssetRepo.GetByID(s.Context(), "asset-1")
	require.Error(t, err)
}

func TestDeleteAssetWithMissingBytesWarns(t *testing.T) {
	s := test.NewSuite(t)
	defer s.Cleanup()

	// Record exists but the stored object is already gone.
	require.NoError(t, s.AssetRepo.Create(s.Context(), &models.Asset{
		ID:         "asset-2",
		Name:       "orphan.png",
		StorageKey: "images/orphan.png",
	}))

	result, err := s.APIClient.DeleteAsset(s.Context(), "asset-2")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Warning)

	// The record is still removed.
	_, err = s.AssetRepo.GetByID(s.Context(), "asset-2")
	require.Error(t, err)
}

func TestDeleteAssetNotFound(t *testing.T) {
	s := test.NewSuite(t)
	defer s.Cleanup()

	_, err := s.APIClient.DeleteAsset(s.Context(), "nonexistent")
	require.Error(t, err)

	var fiberErr *fiber.Error
	require.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusNotFound, fiberErr.Code)
}

func TestListAndGetAssets(t *testing.T) {
	s := test.NewSuite(t)
	defer s.Cleanup()

	seedAsset(s, "asset-1", "style.lora", "models/style.lora", []byte("weights"))
	seedAsset(s, "asset-2", "base.safetensors", "models/base.safetensors", []byte("tensors"))

	assets, err := s.APIClient.GetAssets(s.Context(), nil)
	require.NoError(t, err)
	assert.Len(t, assets, 2)

	asset, err := s.APIClient.GetAsset(s.Context(), "asset-1")
	require.NoError(t, err)
	assert.Equal(t, "models/style.lora", asset.StorageKey)
}

func TestBrowseStore(t *testing.T) {
	s := test.NewSuite(t)
	defer s.Cleanup()

	s.Store.Put("models/loras/style.lora", []byte("weights"))
	s.Store.Put("models/base.safetensors", []byte("tensors"))

	objects, err := s.APIClient.BrowseAssets(s.Context(), "models/")
	require.NoError(t, err)
	require.Len(t, objects, 2)

	// Directories sort before files.
	assert.Equal(t, storage.ObjectKindDirectory, objects[0].Kind)
	assert.Equal(t, "models/loras", objects[0].Key)
	assert.Equal(t, "models/base.safetensors", objects[1].Key)
}

func TestCreateFolder(t *testing.T) {
	s := test.NewSuite(t)
	defer s.Cleanup()

	require.NoError(t, s.APIClient.CreateFolder(s.Context(), "models/loras"))

	_, ok := s.Store.Get("models/loras/")
	assert.True(t, ok)
}
