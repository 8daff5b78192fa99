package service

import "errors"

var (
	ErrTeamNotFound    = errors.New("team not found")
	ErrFeatureNotFound = errors.New("feature not found")
	ErrStepNotFound    = errors.New("step not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrMediaNotFound   = errors.New("media not found")
	ErrNotInTrash      = errors.New("team is not in trash")

	ErrEmptyName        = errors.New("name cannot be empty")
	ErrEmptyDescription = errors.New("step description cannot be empty")
	ErrEmptyComment     = errors.New("comment cannot be empty")
	ErrInvalidStatus    = errors.New("invalid verification status")
	ErrInvalidIndex     = errors.New("index out of range")
	ErrInvalidImport    = errors.New("invalid import file: team and version are required")
	ErrInvalidMedia     = errors.New("only image or video files are allowed")
	ErrMediaTooLarge    = errors.New("video cannot exceed 300MB")
)
