package constants

import "strings"

// AllowedExtensions holds the image extensions accepted for assisted fill and batch import.
var AllowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"webp": {},
	"bmp":  {},
	"tif":  {},
	"tiff": {},
	"heic": {},
	"heif": {},
}

var extMIME = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"heic": "image/heic",
	"heif": "image/heif",
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MIMEForExt returns the image MIME type for ext, or "" when unsupported.
func MIMEForExt(ext string) string {
	return extMIME[NormalizeExt(ext)]
}

// ExtForMIME is the reverse of MIMEForExt; used when spooling data-URIs to disk.
func ExtForMIME(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch mime {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/tiff":
		return "tiff"
	}
	for ext, m := range extMIME {
		if m == mime && ext != "jpeg" && ext != "tif" {
			return ext
		}
	}
	return ""
}

// IsHEIC reports whether the MIME type needs conversion before OCR.
func IsHEIC(mime string) bool {
	mime = strings.ToLower(mime)
	return mime == "image/heic" || mime == "image/heif"
}
