package domain

// StagedFile is a file selected in the form and held in memory until submit.
type StagedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadedAsset is one file stored by the upload collaborator.
type UploadedAsset struct {
	URL  string `json:"url"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}
