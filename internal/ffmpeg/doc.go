// Package ffmpeg runs an external transcoder to extract MP4 audio as MP3.
//
// The argument vector is built by [Build], the child is run by [Execute]
// with both output streams captured, and [Converter] ties the two together
// behind the [convert.Converter] contract. The transcoder writes into a
// hidden temp sibling that is renamed over the target only on exit 0, so a
// failed run never leaves a partial MP3 or clobbers an existing one.
package ffmpeg
