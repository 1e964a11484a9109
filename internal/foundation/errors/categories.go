package errors

import (
	"log/slog"
	"maps"
	"slices"
)

// ErrorCategory says which part of a build failed. The CLI maps it to an
// exit code and a hint.
type ErrorCategory string

const (
	// Input errors: the user has to change a flag or the config file.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryNotFound   ErrorCategory = "not_found"

	// Site source errors: the content tree or the page templates are wrong.
	CategoryContent  ErrorCategory = "content"
	CategoryTemplate ErrorCategory = "template"

	// Build errors.
	CategoryBuild      ErrorCategory = "build"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryGit        ErrorCategory = "git"
	CategoryHistory    ErrorCategory = "history"

	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

type categoryInfo struct {
	exitCode int
	hint     string
}

var categories = map[ErrorCategory]categoryInfo{
	CategoryValidation: {2, "run with --help for usage"},
	CategoryNotFound:   {3, ""},
	CategoryConfig:     {7, "check the configuration file"},
	CategoryGit:        {8, "rerun with --no-git to date posts by build time"},
	CategoryInternal:   {10, ""},
	CategoryBuild:      {11, ""},
	CategoryFileSystem: {11, "check that the directories exist and are writable"},
	CategoryContent:    {11, "check the pillar descriptors and post file names"},
	CategoryTemplate:   {11, "check base.html, home.html and topic.html in the template directory"},
	CategoryRuntime:    {12, ""},
	CategoryHistory:    {12, "check history.path or remove it to disable build history"},
}

// ExitCode is the process exit status for errors of this category. Unknown
// categories exit with 1.
func (c ErrorCategory) ExitCode() int {
	if info, ok := categories[c]; ok {
		return info.exitCode
	}
	return 1
}

// Hint is a short suggestion shown next to the error, or "".
func (c ErrorCategory) Hint() string {
	return categories[c].hint
}

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // aborts the build
	SeverityError   ErrorSeverity = "error"   // fails the current operation
	SeverityWarning ErrorSeverity = "warning" // build continues
	SeverityInfo    ErrorSeverity = "info"
)

// ErrorContext holds structured key/value details about an error, such as
// the pillar or file involved.
type ErrorContext map[string]any

// Set adds or updates a context value.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// Get retrieves a context value.
func (c ErrorContext) Get(key string) (any, bool) {
	value, exists := c[key]
	return value, exists
}

// GetString retrieves a string context value.
func (c ErrorContext) GetString(key string) (string, bool) {
	str, ok := c[key].(string)
	return str, ok
}

// Merge combines two contexts, with other taking precedence.
func (c ErrorContext) Merge(other ErrorContext) ErrorContext {
	result := make(ErrorContext, len(c)+len(other))
	maps.Copy(result, c)
	maps.Copy(result, other)
	return result
}

// Keys returns the context keys in sorted order.
func (c ErrorContext) Keys() []string {
	return slices.Sorted(maps.Keys(c))
}

// Attrs returns the context as slog attributes in key order.
func (c ErrorContext) Attrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, len(c))
	for _, k := range c.Keys() {
		attrs = append(attrs, slog.Any(k, c[k]))
	}
	return attrs
}
