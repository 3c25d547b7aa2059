package mimetypes

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type MIME string

const (
	Unknown   MIME = "unknown"
	TextPlain MIME = "text/plain"

	ApplicationPDF  MIME = "application/pdf"
	ApplicationJSON MIME = "application/json"
	ApplicationZIP  MIME = "application/zip"

	ImagePNG  MIME = "image/png"
	ImageJPEG MIME = "image/jpeg"
	ImageGIF  MIME = "image/gif"
	ImageWEBP MIME = "image/webp"
)

// Matches compares a declared media type (parameters allowed) with an expected one.
func Matches(declared string, expected MIME) (MIME, bool) {
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return Unknown, false
	}
	return expected, mt == string(expected)
}

// Normalize resolves a declared attachment type against the detector's
// registry, following aliases. Types the registry does not know return Unknown.
func Normalize(declared string) MIME {
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return Unknown
	}
	known := mimetype.Lookup(mt)
	if known == nil {
		return Unknown
	}
	return MIME(known.String())
}

// IsImage reports whether the type belongs to the image tree.
func IsImage(m MIME) bool {
	return strings.HasPrefix(string(m), "image/")
}

// Detect sniffs the first bytes of an upload.
func Detect(content []byte) MIME {
	mt, _, err := mime.ParseMediaType(mimetype.Detect(content).String())
	if err != nil {
		return Unknown
	}
	return MIME(mt)
}
