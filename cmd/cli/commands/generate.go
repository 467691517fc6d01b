package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mediaforge/mediaforge/internal/types"
)

func init() {
	generateCmd.Flags().StringP("type", "t", "", "Generation type (e.g. text-to-video)")
	_ = generateCmd.MarkFlagRequired("type")

	generateCmd.Flags().StringP("params", "p", "", "Generation parameters as a JSON object")
	generateCmd.Flags().StringArrayP("file", "f", nil, "Input file to attach (repeatable)")
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Submit a generation job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		genType, _ := cmd.Flags().GetString("type")
		rawParams, _ := cmd.Flags().GetString("params")
		files, _ := cmd.Flags().GetStringArray("file")

		req := &types.GenerateRequest{Type: genType}

		if rawParams != "" {
			if err := json.Unmarshal([]byte(rawParams), &req.Parameters); err != nil {
				return fmt.Errorf("invalid params JSON: %w", err)
			}
		}

		for _, path := range files {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("error reading input file %s: %w", path, err)
			}
			req.Inputs = append(req.Inputs, types.InputFile{
				Name: filepath.Base(path),
				Data: data,
			})
		}

		resp, err := apiClient.Generate(context.Background(), req)
		if err != nil {
			return fmt.Errorf("error submitting job: %w", err)
		}

		return printJSON(cmd, resp)
	},
}

// GetGenerateCmd returns the generate command
func GetGenerateCmd() *cobra.Command {
	return generateCmd
}
