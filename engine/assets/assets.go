package assets

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/iftodebogdan/gitechdemo/engine/core"
)

var ErrClosed = errors.New("asset manager already closed")

type AssetType uint8

const (
	ASSET_TYPE_NONE AssetType = iota
	ASSET_TYPE_SHADER
	ASSET_TYPE_IMAGE
	ASSET_TYPE_MODEL
	ASSET_TYPE_FONT
	ASSET_TYPE_CONFIG
)

/**
 * @brief Owns the asset directory: hands out loaders reading from it and,
 * once watching, records which files changed on disk. Changes are collected
 * on the watcher goroutine and drained by the main loop.
 */
type AssetManager struct {
	root string
	fsys fs.FS

	textures *TextureLoader
	models   *ModelLoader

	mutex   sync.Mutex
	changed map[string]AssetType

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewAssetManager(root string) (*AssetManager, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "open", Path: root, Err: errors.New("not a directory")}
	}
	fsys := os.DirFS(root)
	return &AssetManager{
		root:     root,
		fsys:     fsys,
		textures: NewTextureLoader(fsys),
		models:   NewModelLoader(fsys),
		changed:  make(map[string]AssetType),
	}, nil
}

func (am *AssetManager) Root() string {
	return am.root
}

// FS is the asset directory. Paths are slash separated and relative to Root.
func (am *AssetManager) FS() fs.FS {
	return am.fsys
}

func (am *AssetManager) TextureLoader() *TextureLoader {
	return am.textures
}

func (am *AssetManager) ModelLoader() *ModelLoader {
	return am.models
}

// Watch starts recording changes below the asset directory.
func (am *AssetManager) Watch() error {
	if am.isClosed {
		return ErrClosed
	}
	if am.fsnotify != nil {
		return nil
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	am.fsnotify = fsWatch
	am.done = make(chan struct{})
	am.stopped = make(chan struct{})

	if err := am.watchRecursive(am.root); err != nil {
		fsWatch.Close()
		am.fsnotify = nil
		return err
	}
	go am.start()
	return nil
}

// Changes drains the files changed since the last call, sorted by path.
func (am *AssetManager) Changes() map[AssetType][]string {
	am.mutex.Lock()
	changed := am.changed
	am.changed = make(map[string]AssetType)
	am.mutex.Unlock()

	if len(changed) == 0 {
		return nil
	}
	out := make(map[AssetType][]string)
	for path, t := range changed {
		out[t] = append(out[t], path)
	}
	for _, paths := range out {
		sort.Strings(paths)
	}
	return out
}

func (am *AssetManager) Close() error {
	if am.isClosed {
		return ErrClosed
	}
	am.isClosed = true
	if am.fsnotify == nil {
		return nil
	}
	close(am.done)
	<-am.stopped
	return nil
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			if e.Op&fsnotify.Create != 0 {
				if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
					if err := am.watchRecursive(e.Name); err != nil {
						core.LogError("assets: watching %s: %s", e.Name, err)
					}
					continue
				}
			}
			// Editors often save by renaming a temporary file over the original.
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				am.handleFileEvent(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("assets: %s", err)

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

// watchRecursive adds dir and all its sub-directories to the watch list.
func (am *AssetManager) watchRecursive(dir string) error {
	return filepath.WalkDir(dir, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		return nil
	})
}

func (am *AssetManager) handleFileEvent(name string) {
	assetType := determineAssetType(name)
	if assetType == ASSET_TYPE_NONE {
		return
	}
	rel, err := filepath.Rel(am.root, name)
	if err != nil {
		return
	}
	core.LogDebug("assets: %s changed", rel)

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.changed[filepath.ToSlash(rel)] = assetType
}

func determineAssetType(path string) AssetType {
	switch filepath.Ext(path) {
	case ".hlsl", ".fx":
		return ASSET_TYPE_SHADER
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp":
		return ASSET_TYPE_IMAGE
	case ".obj", ".mtl":
		return ASSET_TYPE_MODEL
	case ".fnt":
		return ASSET_TYPE_FONT
	case ".toml":
		return ASSET_TYPE_CONFIG
	default:
		return ASSET_TYPE_NONE
	}
}
