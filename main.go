/*
GITechDemo renders a deferred shading scene: directional light with cascaded
shadow maps, reflective shadow map indirect light, SSAO and an HDR post
processing chain. The first argument is the configuration file.
*/
package main

import (
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/iftodebogdan/gitechdemo/engine"
	"github.com/iftodebogdan/gitechdemo/engine/core"
	"github.com/iftodebogdan/gitechdemo/engine/pipeline"
	"github.com/iftodebogdan/gitechdemo/engine/platform"
)

const defaultConfigPath = "assets/config/gitechdemo.toml"

func init() {
	// Window messages must be pumped from the thread that created the window.
	runtime.LockOSThread()
}

func loadConfig() *pipeline.Config {
	path := defaultConfigPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := pipeline.LoadConfig(path)
	if err == nil {
		return cfg
	}
	if len(os.Args) <= 1 && errors.Is(err, fs.ErrNotExist) {
		core.LogWarn("%s not found, using built-in defaults", path)
		return pipeline.DefaultConfig()
	}
	core.LogFatal("%s", err)
	return nil
}

func main() {
	cfg := loadConfig()
	core.SetLogLevel(core.LogLevel(cfg.App.LogLevel))

	e, err := engine.New(cfg, platform.New())
	if err != nil {
		core.LogFatal("%s", err)
	}

	if err := e.Initialize(); err != nil {
		_ = e.Shutdown()
		core.LogFatal("%s", err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// the main loop exits on the next iteration and shuts down on this thread
	go func() {
		<-sigCh
		core.LogInfo("signal received, shutting down.")
		e.Quit()
	}()

	runErr := e.Run()
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err)
	}
	if runErr != nil {
		core.LogFatal("%s", runErr)
	}
}
