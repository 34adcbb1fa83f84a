// Package media wraps the external ffmpeg and ffprobe binaries behind small
// context-aware helpers and provides PCM WAV codec support for the speech
// pipeline. All subprocess invocations surface stderr in the returned error.
package media
