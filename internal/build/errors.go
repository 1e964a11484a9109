package build

import "errors"

// Sentinel errors classifying stage failures. They are wrapped with context
// at the call site.
var (
	ErrUnsafeOutputDir = errors.New("refusing to clean output directory")
	ErrOutputPrepare   = errors.New("prepare output directory")
	ErrCopyAssets      = errors.New("copy assets")
	ErrWritePage       = errors.New("write page")
	ErrRenderPage      = errors.New("render page")
)
