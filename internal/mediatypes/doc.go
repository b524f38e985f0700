// Package mediatypes defines the video containers the converter accepts and
// the file name rules used when staging uploads into the engine.
//
// It has no dependencies beyond the standard library so that handlers,
// pipeline and the CLI can share it without import cycles.
//
// # Extensions
//
// SanitizeExtension lowercases the text after the final dot and strips
// everything that is not a letter or digit:
//
//	mediatypes.SanitizeExtension("clip.MOV")     // "mov"
//	mediatypes.SanitizeExtension("clip.tar.gz!") // "gz"
//	mediatypes.SanitizeExtension("noext")        // "mp4"
//
// # Detection
//
// Detect resolves an upload to one of Containers, preferring the file name
// and falling back to the declared content type:
//
//	c, ok := mediatypes.Detect(header.Filename, header.Header.Get("Content-Type"))
package mediatypes
