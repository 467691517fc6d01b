package repos

import (
	"github.com/google/uuid"

	"github.com/mediaforge/mediaforge/internal/db/models"
)

type AssetRepositoryTestSuite struct {
	DBRepositoryTestSuite
}

func (s *AssetRepositoryTestSuite) TestCreate() {
	asset := s.createTestAsset()
	s.NotEmpty(asset.ID)

	// Storage key is mandatory.
	err := s.assetRepo.Create(s.ctx, &models.Asset{ID: uuid.NewString(), Name: "x"})
	s.Error(err)
}

func (s *AssetRepositoryTestSuite) TestGetByID() {
	original := s.createTestAsset()

	found, err := s.assetRepo.GetByID(s.ctx, original.ID)
	s.NoError(err)
	s.Equal(original.StorageKey, found.StorageKey)

	_, err = s.assetRepo.GetByID(s.ctx, "missing-id")
	s.ErrorIs(err, ErrNotFound)
}

func (s *AssetRepositoryTestSuite) TestDelete() {
	asset := s.createTestAsset()

	s.NoError(s.assetRepo.Delete(s.ctx, asset.ID))

	_, err := s.assetRepo.GetByID(s.ctx, asset.ID)
	s.ErrorIs(err, ErrNotFound)

	// Deleting again reports not found.
	s.ErrorIs(s.assetRepo.Delete(s.ctx, asset.ID), ErrNotFound)
}

func (s *AssetRepositoryTestSuite) TestList() {
	s.createTestAsset()
	s.createTestAsset()

	assets, err := s.assetRepo.List(s.ctx, nil)
	s.NoError(err)
	s.Len(assets, 2)
}
