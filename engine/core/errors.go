package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidHandle          = errors.New("invalid resource handle")
	ErrShaderInputActive      = errors.New("shader template already has an enabled shader input")
	ErrNoShaderInputActive    = errors.New("shader template has no enabled shader input")
	ErrTextureSamplerMismatch = errors.New("texture type does not match sampler type")
	ErrRenderTargetNotActive  = errors.New("render target is not the active render target")
	ErrWrongInputType         = errors.New("shader input type mismatch")
	ErrUnknown                = errors.New("unknown")
)

// LoadStage identifies the step of the loading phase that failed.
type LoadStage string

const (
	LoadStageOpen    LoadStage = "open"
	LoadStageDecode  LoadStage = "decode"
	LoadStageCompile LoadStage = "compile"
	LoadStageCreate  LoadStage = "create"
)

// ResourceLoadError is returned by every loading-phase failure. It aborts startup.
type ResourceLoadError struct {
	Path  string
	Stage LoadStage
	Err   error
}

func NewResourceLoadError(path string, stage LoadStage, err error) *ResourceLoadError {
	return &ResourceLoadError{Path: path, Stage: stage, Err: err}
}

func (e *ResourceLoadError) Error() string {
	return fmt.Sprintf("failed to load resource %q (%s): %v", e.Path, e.Stage, e.Err)
}

func (e *ResourceLoadError) Unwrap() error {
	return e.Err
}
