package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mediaforge/mediaforge/internal/db/models"
)

// assetOutput represents the filtered output for an asset record
type assetOutput struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	StorageKey string `json:"storage_key"`
	Size       int64  `json:"size"`
}

// assetListOutput represents the filtered output for a list of assets
type assetListOutput struct {
	Assets []assetOutput `json:"assets"`
}

func init() {
	assetsCmd.AddCommand(listAssetsCmd)
	assetsCmd.AddCommand(browseAssetsCmd)
	assetsCmd.AddCommand(getAssetCmd)
	assetsCmd.AddCommand(deleteAssetCmd)
	assetsCmd.AddCommand(mkdirAssetCmd)

	// Add flags
	listAssetsCmd.Flags().IntP("page", "p", 1, "Page of assets to return")

	browseAssetsCmd.Flags().String("prefix", "", "Store prefix to browse")

	getAssetCmd.Flags().StringP("id", "i", "", "Asset ID to fetch")
	_ = getAssetCmd.MarkFlagRequired("id")

	deleteAssetCmd.Flags().StringP("id", "i", "", "Asset ID to delete")
	_ = deleteAssetCmd.MarkFlagRequired("id")

	mkdirAssetCmd.Flags().String("path", "", "Folder path to create")
	_ = mkdirAssetCmd.MarkFlagRequired("path")
}

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Manage stored assets",
}

var listAssetsCmd = &cobra.Command{
	Use:   "list",
	Short: "List asset records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		page, _ := cmd.Flags().GetInt("page")

		opts := (&models.ListOptions{}).WithDefaults()
		if page > 1 {
			opts.Offset = (page - 1) * opts.Limit
		}

		assets, err := apiClient.GetAssets(context.Background(), opts)
		if err != nil {
			return fmt.Errorf("error fetching assets: %w", err)
		}

		output := assetListOutput{
			Assets: make([]assetOutput, len(assets)),
		}
		for i, asset := range assets {
			output.Assets[i] = assetOutput{
				ID:         asset.ID,
				Name:       asset.Name,
				StorageKey: asset.StorageKey,
				Size:       asset.Size,
			}
		}

		return printJSON(cmd, output)
	},
}

var browseAssetsCmd = &cobra.Command{
	Use:   "browse",
	Short: "List the object store contents under a prefix",
	RunE: func(cmd *cobra.Command, _ []string) error {
		prefix, _ := cmd.Flags().GetString("prefix")

		objects, err := apiClient.BrowseAssets(context.Background(), prefix)
		if err != nil {
			return fmt.Errorf("error browsing store: %w", err)
		}

		return printJSON(cmd, objects)
	},
}

var getAssetCmd = &cobra.Command{
	Use:   "get",
	Short: "Get a specific asset record",
	RunE: func(cmd *cobra.Command, _ []string) error {
		assetID, _ := cmd.Flags().GetString("id")

		asset, err := apiClient.GetAsset(context.Background(), assetID)
		if err != nil {
			return fmt.Errorf("error fetching asset: %w", err)
		}

		return printJSON(cmd, asset)
	},
}

var deleteAssetCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete an asset from the store and the database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		assetID, _ := cmd.Flags().GetString("id")

		result, err := apiClient.DeleteAsset(context.Background(), assetID)
		if err != nil {
			return fmt.Errorf("error deleting asset: %w", err)
		}

		if result.Warning != "" {
			cmd.Printf("Warning: %s\n", result.Warning)
		}
		return printJSON(cmd, result)
	},
}

var mkdirAssetCmd = &cobra.Command{
	Use:   "mkdir",
	Short: "Create an empty folder in the object store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("path")

		if err := apiClient.CreateFolder(context.Background(), path); err != nil {
			return fmt.Errorf("error creating folder: %w", err)
		}

		cmd.Printf("Created %s\n", path)
		return nil
	},
}

// GetAssetsCmd returns the assets command
func GetAssetsCmd() *cobra.Command {
	return assetsCmd
}
