package workflows

import "encoding/json"

// NewFileUploadPipelineDefinition builds the file upload pipeline: store the
// object, scan it, extract metadata, and conditionally generate thumbnails
// when the extracted metadata says the file is an image.
func NewFileUploadPipelineDefinition() *Definition {
	return &Definition{
		Name: "file_upload_pipeline",
		Steps: []Step{
			{
				Name:     "upload",
				Activity: "upload_to_storage",
				Input:    passthroughInput,
			},
			{
				Name:     "scan",
				Activity: "virus_scan_file",
				Input:    fileKeyInput,
			},
			{
				Name:     "extract_metadata",
				Activity: "extract_file_metadata",
				Input:    fileKeyInput,
			},
			{
				Name:      "generate_thumbnails",
				Activity:  "generate_thumbnails",
				Input:     fileKeyInput,
				Condition: metadataIsImage,
			},
		},
	}
}

func fileKeyInput(state map[string]json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Key string `json:"key"`
	}
	if err := json.Unmarshal(state["input"], &in); err != nil {
		return nil, err
	}
	return json.Marshal(map[string]string{"key": in.Key})
}

func metadataIsImage(state map[string]json.RawMessage) bool {
	meta, ok := state["extract_metadata"]
	if !ok {
		return false
	}
	var out struct {
		IsImage bool `json:"is_image"`
	}
	if err := json.Unmarshal(meta, &out); err != nil {
		return false
	}
	return out.IsImage
}
