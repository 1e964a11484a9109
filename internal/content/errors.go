package content

import "errors"

var (
	// ErrSlugCollision indicates two posts of one pillar resolve to the same output page.
	ErrSlugCollision = errors.New("slug collision")

	// ErrSlugInvalid indicates a declared slug is not a single file name stem.
	ErrSlugInvalid = errors.New("invalid topic slug")

	// ErrPillarReserved indicates a pillar directory name clashes with generated output.
	ErrPillarReserved = errors.New("reserved pillar name")

	// ErrDescriptorInvalid indicates a pillar descriptor exists but cannot be parsed.
	ErrDescriptorInvalid = errors.New("invalid pillar descriptor")

	// ErrRootUnreadable indicates the content root cannot be listed.
	ErrRootUnreadable = errors.New("content root unreadable")

	// ErrPostReadFailed indicates an existing markdown file could not be read.
	ErrPostReadFailed = errors.New("post read failed")
)
