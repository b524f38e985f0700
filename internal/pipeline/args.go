package pipeline

import (
	"clipfilter/internal/mediatypes"
)

const (
	// OutputName is the engine file the job writes.
	OutputName = "output.mp4"
	// OutputContentType is the content type of the result preview.
	OutputContentType = "video/mp4"
	// PosterName is the engine file the poster frame is extracted to.
	PosterName = "poster.jpg"

	// FilterGraph caps the frame rate at 30 fps and applies the fixed look:
	// contrast and saturation boost, light sharpening and a vignette.
	FilterGraph = "fps=30,eq=contrast=1.12:brightness=0.03:saturation=1.35,unsharp=5:5:0.6:5:5:0.0,vignette=PI/6"
)

// InputName returns the engine file name used to stage an upload named
// original.
func InputName(original string) string {
	return "input." + mediatypes.SanitizeExtension(original)
}

// TransformArgs returns the fixed engine arguments that convert input into
// OutputName. Audio is copied untouched.
func TransformArgs(input string) []string {
	return []string{
		"-i", input,
		"-vf", FilterGraph,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		"-c:a", "copy",
		"-movflags", "+faststart",
		OutputName,
	}
}

// PosterArgs returns the engine arguments that extract one frame of the
// result into PosterName.
func PosterArgs() []string {
	return []string{
		"-i", OutputName,
		"-frames:v", "1",
		"-q:v", "3",
		"-f", "image2",
		PosterName,
	}
}
