// Package errors provides classified error primitives used across pillarsite.
//
// A ClassifiedError carries a category (config, content, template, filesystem, ...),
// a severity and structured context. The CLI adapter maps categories to exit codes
// so a failed build always terminates with a meaningful non-zero status.
//
// Example usage:
//
//	err := errors.ContentError("slug collision").
//		WithContext("pillar", pillar).
//		WithContext("slug", slug).
//		WithCause(content.ErrSlugCollision).
//		Build()
package errors
