package cdn

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"panel/internal/cache"
	"panel/internal/config"
	"panel/internal/cryptoutil"
	"panel/internal/domain"
	"panel/internal/dto"
)

const (
	// MaxChunkSize bounds a single uploaded chunk.
	MaxChunkSize = 100 * 1024 * 1024
	// MaxChunks bounds how many chunks one file may assemble from.
	MaxChunks = 100_000

	chunkIDRetries = 10
)

// Assembler manages chunked uploads and the asset trees under the
// configured scopes. All paths it touches are validated first, so no
// operation can reach outside a scope root.
type Assembler struct {
	chunks    *cache.ChunkCache
	scopes    map[string]config.CdnScope
	mainScope string
}

func New(chunks *cache.ChunkCache, scopes map[string]config.CdnScope, mainScope string) *Assembler {
	return &Assembler{chunks: chunks, scopes: scopes, mainScope: mainScope}
}

// Scopes lists the configured scope names, sorted.
func (a *Assembler) Scopes() []string {
	names := make([]string, 0, len(a.scopes))
	for name := range a.scopes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (a *Assembler) MainScope() string { return a.mainScope }

// UploadChunk stores one chunk and returns its id. Ids are random; on the
// vanishingly unlikely collision the insert retries a bounded number of
// times rather than looping forever.
func (a *Assembler) UploadChunk(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: chunk must not be empty", domain.ErrValidation)
	}
	if len(data) > MaxChunkSize {
		return "", fmt.Errorf("%w: chunk exceeds %d bytes", domain.ErrValidation, MaxChunkSize)
	}

	for i := 0; i < chunkIDRetries; i++ {
		id := cryptoutil.RandomString(cryptoutil.ChunkIDLength)
		if a.chunks.Add(id, data) {
			return id, nil
		}
	}
	return "", domain.ErrChunkIDExhausted
}

// Resolve validates scope, path and name and returns the directory and the
// full asset path on disk. Name may be empty for directory operations.
func (a *Assembler) Resolve(scope, path, name string) (dir, full string, err error) {
	sc, ok := a.scopes[scope]
	if !ok {
		return "", "", fmt.Errorf("%w: unknown scope %q", domain.ErrValidation, scope)
	}
	if err := ValidatePath(path); err != nil {
		return "", "", err
	}
	if name != "" {
		if err := ValidateName(name); err != nil {
			return "", "", err
		}
	}

	dir = filepath.Join(sc.Path, filepath.FromSlash(path))
	if name == "" {
		return dir, dir, nil
	}
	return dir, filepath.Join(dir, name), nil
}

// List returns the directory entries of a scope path.
func (a *Assembler) List(scope, path string) ([]dto.CdnAssetItem, error) {
	_, dir, err := a.Resolve(scope, path, "")
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("list %s: %w", path, err)
	}

	items := make([]dto.CdnAssetItem, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		items = append(items, dto.CdnAssetItem{
			Name:         e.Name(),
			Path:         strings.TrimPrefix(path+"/"+e.Name(), "/"),
			Size:         info.Size(),
			LastModified: info.ModTime().Unix(),
			IsDir:        e.IsDir(),
			Permissions:  uint32(info.Mode().Perm()),
		})
	}
	return items, nil
}

// Read returns the contents of an asset file.
func (a *Assembler) Read(scope, path, name string) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", domain.ErrValidation)
	}
	_, full, err := a.Resolve(scope, path, name)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, name)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrValidation, name)
	}
	return os.ReadFile(full)
}

// Mkdir creates a folder inside a scope.
func (a *Assembler) Mkdir(scope, path, name string) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", domain.ErrValidation)
	}
	_, full, err := a.Resolve(scope, path, name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(full); err == nil {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, name)
	}
	return os.MkdirAll(full, 0o755)
}

// AddFile assembles the referenced chunks into an asset file. The file is
// built in a temp location and verified against the expected SHA-512
// before it replaces anything; a failed verification leaves the
// destination untouched. Chunks are consumed even on failure.
func (a *Assembler) AddFile(scope, path, name string, chunkIDs []string, sha512 string, overwrite bool) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", domain.ErrValidation)
	}
	if len(chunkIDs) == 0 {
		return fmt.Errorf("%w: no chunks given", domain.ErrValidation)
	}
	if len(chunkIDs) > MaxChunks {
		return fmt.Errorf("%w: more than %d chunks", domain.ErrValidation, MaxChunks)
	}
	for _, id := range chunkIDs {
		if !a.chunks.Has(id) {
			return fmt.Errorf("%w: %s", domain.ErrChunkMissing, id)
		}
	}

	dir, full, err := a.Resolve(scope, path, name)
	if err != nil {
		return err
	}

	if info, err := os.Stat(full); err == nil {
		if info.IsDir() {
			return fmt.Errorf("%w: %s is a directory", domain.ErrValidation, name)
		}
		if !overwrite {
			return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, name)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create parent dirs: %w", err)
	}

	tmp := filepath.Join(os.TempDir(), "asset-"+cryptoutil.RandomString(cryptoutil.ChunkIDLength))
	if err := a.assemble(tmp, chunkIDs, sha512); err != nil {
		return err
	}

	if err := copyFile(tmp, full); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("publish asset: %w", err)
	}
	return os.Remove(tmp)
}

func (a *Assembler) assemble(tmp string, chunkIDs []string, sha512 string) error {
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	for _, id := range chunkIDs {
		chunk, ok := a.chunks.Consume(id)
		if !ok {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("%w: %s", domain.ErrChunkMissing, id)
		}
		if _, err := f.Write(chunk); err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("write chunk: %w", err)
		}
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}

	r, err := os.Open(tmp)
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("reopen temp file: %w", err)
	}
	digest, err := cryptoutil.Sha512Hex(r)
	r.Close()
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("digest temp file: %w", err)
	}

	// Exact match against the lowercase hex digest; no case folding.
	if digest != sha512 {
		os.Remove(tmp)
		return domain.ErrHashMismatch
	}
	return nil
}

// Copy copies or moves an asset to another location in the same scope.
// With deleteOriginal a plain rename does the whole job; without it the
// tree is walked and duplicated.
func (a *Assembler) Copy(scope, path, name, copyTo string, deleteOriginal bool) error {
	if copyTo == "" {
		return fmt.Errorf("%w: copy destination must not be empty", domain.ErrValidation)
	}
	if err := ValidatePath(copyTo); err != nil {
		return err
	}

	sc := a.scopes[scope]
	_, src, err := a.Resolve(scope, path, name)
	if err != nil {
		return err
	}
	dst := filepath.Join(sc.Path, filepath.FromSlash(copyTo))

	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, name)
		}
		return err
	}
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, copyTo)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create parent dirs: %w", err)
	}

	if deleteOriginal {
		return os.Rename(src, dst)
	}
	return copyTree(src, dst)
}

// Delete removes an asset file or folder.
func (a *Assembler) Delete(scope, path, name string) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", domain.ErrValidation)
	}
	_, full, err := a.Resolve(scope, path, name)
	if err != nil {
		return err
	}

	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, name)
		}
		return err
	}
	if info.IsDir() {
		return os.RemoveAll(full)
	}
	return os.Remove(full)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return copyFile(src, dst)
	}

	if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := copyTree(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
