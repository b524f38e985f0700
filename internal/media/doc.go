// Package media renders still images for converted clips.
//
// Poster frames extracted by the engine (JPEG, PNG or WebP) are decoded, orientation-corrected,
// fitted into a bounding box with a Lanczos filter and re-encoded as JPEG:
//
//	jpeg, err := media.Thumbnail(frame, media.PosterWidth, media.PosterHeight)
package media
