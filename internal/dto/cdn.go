package dto

type UploadChunkQuery struct {
	LoginToken string `json:"login_token"`
	Chunk      []byte `json:"chunk"`
}

type ChunkID struct {
	ChunkID string `json:"chunk_id"`
}

type ListScopesQuery struct {
	LoginToken string `json:"login_token"`
}

type MainScopeQuery struct {
	LoginToken string `json:"login_token"`
}

type Scope struct {
	Scope string `json:"scope"`
}

type UpdateAssetQuery struct {
	LoginToken string         `json:"login_token"`
	Scope      string         `json:"scope"`
	Path       string         `json:"path"`
	Name       string         `json:"name"`
	Action     CdnAssetAction `json:"action"`
}

// CdnAssetAction is a flat union; Action selects the operation and the
// other fields apply only where noted.
type CdnAssetAction struct {
	Action string `json:"action"` // list_path, read_file, create_folder, add_file, copy_file, delete

	// add_file
	Overwrite bool     `json:"overwrite,omitempty"`
	Chunks    []string `json:"chunks,omitempty"`
	SHA512    string   `json:"sha512,omitempty"`

	// copy_file
	CopyTo         string `json:"copy_to,omitempty"`
	DeleteOriginal bool   `json:"delete_original,omitempty"`
}

type CdnAssetItem struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	LastModified int64  `json:"last_modified"`
	IsDir        bool   `json:"is_dir"`
	Permissions  uint32 `json:"permissions"`
}
