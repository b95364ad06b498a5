package domain

import "errors"

// Validation errors (400).
var (
	ErrValidation          = errors.New("invalid input")
	ErrEmptyComment        = errors.New("comment text is required")
	ErrSelfFollow          = errors.New("you cannot follow yourself")
	ErrInvalidStatus       = errors.New("status must be one of: active, completed, on-hold")
	ErrInvalidProgress     = errors.New("progress must be between 0 and 100")
	ErrInvalidCollaborator = errors.New("project author cannot be a collaborator")
	ErrInvalidAction       = errors.New("action must be one of: add, remove")
)

// Conflict errors. The API reports these as 400, not 409.
var (
	ErrAlreadyFollowing = errors.New("already following")
	ErrAlreadyLiked     = errors.New("you have already liked this project")
	ErrUserExists       = errors.New("user already exists")
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("not authorized")
	ErrUserBanned         = errors.New("account has been banned")
)

// Not found errors. Malformed identifiers are reported the same way.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrCommentNotFound = errors.New("comment not found")
)
