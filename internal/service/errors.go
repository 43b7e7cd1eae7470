package service

import (
	"errors"

	"github.com/intellijobs/api/internal/extract"
	"github.com/intellijobs/api/internal/repository"
)

var (
	ErrUserIDRequired     = errors.New("userId is required")
	ErrQueryRequired      = errors.New("query is required")
	ErrInvalidAction      = errors.New("invalid action")
	ErrMalformedResume    = errors.New("resume parser returned malformed JSON")
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskTerminal       = errors.New("task already finished")
	ErrUserNotFound       = repository.ErrUserNotFound
	ErrUnsupportedFormat  = extract.ErrUnsupportedFormat
	ErrEmptyResumeText    = errors.New("resume text is empty")
	ErrEmptyEmbeddingText = errors.New("resume has no fields to embed")
)
