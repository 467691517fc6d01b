package types

import "fmt"

// InputFile is one staged input for a generation request. Data is
// base64-encoded on the wire when the request arrives as JSON.
type InputFile struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type,omitempty"`
	Data        []byte `json:"data"`
}

// GenerateRequest is a request to dispatch a generation job
type GenerateRequest struct {
	Type       string                 `json:"type"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	Inputs     []InputFile            `json:"inputs,omitempty"`
}

// Validate checks the request before any network call is made
func (r *GenerateRequest) Validate() error {
	if r.Type == "" {
		return fmt.Errorf("generation type is required")
	}
	for _, f := range r.Inputs {
		if f.Name == "" {
			return fmt.Errorf("input file name is required")
		}
		if len(f.Data) == 0 {
			return fmt.Errorf("input file %q is empty", f.Name)
		}
	}
	return nil
}

// UploadAssetRequest is a request to store a new asset
type UploadAssetRequest struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Folder      string `json:"folder,omitempty"`
	Data        []byte `json:"-"`
}

// Validate checks the request fields
func (r *UploadAssetRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("asset name is required")
	}
	if len(r.Data) == 0 {
		return fmt.Errorf("asset data is required")
	}
	return nil
}
