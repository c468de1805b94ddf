package engine

import (
	"path/filepath"

	"github.com/iftodebogdan/gitechdemo/engine/core"
	"github.com/iftodebogdan/gitechdemo/engine/pipeline"
)

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX int32
	// Window starting position y axis, if applicable.
	StartPosY int32
	// Window starting width, if applicable.
	StartWidth uint32
	// Window starting height, if applicable.
	StartHeight uint32
	// The application name used in windowing, if applicable.
	Name     string
	LogLevel core.LogLevel
	// Root of the models, textures and shaders.
	AssetsDir string
	HotReload bool
	// Full path of the loading screen font, empty when disabled.
	LoadingFont string
}

// NewApplicationConfig extracts the host settings from the demo configuration.
func NewApplicationConfig(cfg *pipeline.Config) *ApplicationConfig {
	app := &ApplicationConfig{
		StartPosX:   cfg.App.PosX,
		StartPosY:   cfg.App.PosY,
		StartWidth:  cfg.App.Width,
		StartHeight: cfg.App.Height,
		Name:        cfg.App.Name,
		LogLevel:    core.LogLevel(cfg.App.LogLevel),
		AssetsDir:   cfg.App.AssetsDir,
		HotReload:   cfg.App.HotReload,
	}
	if cfg.App.LoadingFont != "" {
		app.LoadingFont = filepath.Join(cfg.App.AssetsDir, filepath.FromSlash(cfg.App.LoadingFont))
	}
	return app
}
