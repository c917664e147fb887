package acquire

import "errors"

// ErrSourceNotFound indicates a local source file does not exist.
var ErrSourceNotFound = errors.New("source not found")

// ErrDownloaderMissing indicates a URL was given but no yt-dlp binary is configured.
var ErrDownloaderMissing = errors.New("yt-dlp required for URL sources")

// ErrDownloadFailed indicates yt-dlp could not fetch the source audio.
var ErrDownloadFailed = errors.New("download failed")

// ErrTranscodeFailed indicates ffmpeg could not produce the canonical WAV.
var ErrTranscodeFailed = errors.New("transcode failed")
