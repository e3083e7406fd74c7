package domain

import "errors"

var (
	ErrEmptyQuery   = errors.New("empty query")
	ErrQueryTooLong = errors.New("query too long")
	ErrInvalidLimit = errors.New("invalid limit")
	ErrNoSources    = errors.New("no sources available")
)

var (
	ErrInvalidURL  = errors.New("invalid url")
	ErrMissingLink = errors.New("missing link")
)

var (
	ErrEmptyText    = errors.New("empty text")
	ErrNoSpeaker    = errors.New("no tts provider configured")
	ErrNoSummarizer = errors.New("no llm provider configured")
)
