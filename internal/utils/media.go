package utils

import "strings"

// MediaExt picks the upload extension from a simple suffix/keyword check on
// the source reference: ".mp4" or a "video" marker means video, everything
// else is treated as an image.
func MediaExt(source string) string {
	lower := strings.ToLower(source)
	if strings.HasSuffix(lower, ".mp4") || strings.Contains(lower, "video") {
		return "mp4"
	}
	return "jpg"
}

// MediaContentType maps an upload extension to its MIME type.
func MediaContentType(ext string) string {
	if ext == "mp4" {
		return "video/mp4"
	}
	return "image/jpeg"
}
