// Command clipctl runs the clipfilter conversion pipeline without the web UI.
//
// It shares configuration with the server: the same environment variables
// and optional TOML file (--config or CONFIG_FILE) select the ffmpeg and
// ffprobe binaries, the upload limit and the engine timeout.
//
// Usage:
//
//	clipctl convert holiday.mov              # writes holiday-filtered.mp4
//	clipctl convert clip.webm -o out.mp4 --poster
//	clipctl check                            # probe ffmpeg and ffprobe
//	clipctl version
//
// Each convert invocation takes its own temporary work directory unless
// --work-dir is given. Two invocations sharing a work directory are refused
// by the engine's directory lock.
package main
