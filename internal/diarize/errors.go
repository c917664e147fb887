package diarize

import "errors"

// ErrClipNotExported indicates a clip has no file for the diarizer to read.
var ErrClipNotExported = errors.New("clip not exported")

// ErrTokenMissing indicates the diarization backend has no credentials.
var ErrTokenMissing = errors.New("diarization token not set")

// ErrInvalidResponse indicates the backend answered with an unreadable payload.
var ErrInvalidResponse = errors.New("invalid diarization response")

// ErrDiarizationFailed wraps any backend failure surfaced by Filter.
var ErrDiarizationFailed = errors.New("diarization failed")
