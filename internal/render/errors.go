package render

import "errors"

var (
	// ErrTemplateMissing indicates a page template file does not exist.
	ErrTemplateMissing = errors.New("page template missing")

	// ErrTemplateParse indicates a page template has a syntax error.
	ErrTemplateParse = errors.New("page template parse failed")

	// ErrTemplateExecute indicates a template referenced an unknown slot or
	// nav target, or otherwise failed while rendering.
	ErrTemplateExecute = errors.New("page template execution failed")
)
