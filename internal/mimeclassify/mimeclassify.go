// Package mimeclassify implements the MimeClassifier capability: given a
// path, return its MIME type. No libmagic-equivalent library appears
// anywhere in the retrieved corpus (see DESIGN.md), so this classifies by
// sniffing the leading bytes with the same well-known magic numbers
// libmagic itself ships, falling back to extension for text formats whose
// content is not a fixed signature.
package mimeclassify

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var extensionTypes = map[string]string{
	".c":       "text/x-c",
	".h":       "text/x-c",
	".cc":      "text/x-c++",
	".cpp":     "text/x-c++",
	".hpp":     "text/x-c++",
	".py":      "text/x-python",
	".sh":      "text/x-shellscript",
	".mo":      "application/x-gettext-translation",
	".po":      "text/x-gettext-translation",
	".xml":     "application/xml",
	".desktop": "application/x-desktop",
	".rules":   "text/x-udev-rules",
	".service": "text/x-systemd-unit",
	".conf":    "text/plain",
	".txt":     "text/plain",
	".md":      "text/plain",
	".yaml":    "text/plain",
	".yml":     "text/plain",
	".json":    "application/json",
	".pyc":     "application/x-python-bytecode",
	".pyo":     "application/x-python-bytecode",
}

var magicSignatures = []struct {
	magic []byte
	mime  string
}{
	{[]byte("\x7fELF"), "application/x-executable"},
	{[]byte("\x1f\x8b"), "application/gzip"},
	{[]byte("BZh"), "application/x-bzip2"},
	{[]byte("\xfd7zXZ\x00"), "application/x-xz"},
	{[]byte("\x28\xb5\x2f\xfd"), "application/zstd"},
	{[]byte("\xde\x12\x04\x95"), "application/x-gettext-translation"}, // .mo, little-endian magic
	{[]byte("\x95\x04\x12\xde"), "application/x-gettext-translation"}, // .mo, big-endian magic
	{[]byte("!<arch>\n"), "application/x-archive"},
	{[]byte{0x1a, 0xff}, "application/x-python-bytecode"},
}

// Classify returns path's MIME type: a content magic-signature match first,
// then the file extension, then a text/binary guess from the content.
func Classify(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return "", err
	}
	defer f.Close() // nolint: errcheck

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "inode/directory", nil
	}

	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	buf = buf[:n]

	for _, sig := range magicSignatures {
		if bytes.HasPrefix(buf, sig.magic) {
			return sig.mime, nil
		}
	}

	if ext, ok := extensionTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return ext, nil
	}

	if utf8.Valid(buf) && isMostlyText(buf) {
		return "text/plain", nil
	}

	return "application/octet-stream", nil
}

func isMostlyText(buf []byte) bool {
	if len(buf) == 0 {
		return true
	}
	control := 0
	for _, b := range buf {
		if b == 0 {
			return false
		}
		if b < 0x09 || (b > 0x0d && b < 0x20) {
			control++
		}
	}
	return control*20 < len(buf)
}

// IsText reports whether mimeType should be treated as text for diffing
// purposes.
func IsText(mimeType string) bool {
	switch mimeType {
	case "application/xml", "application/json", "application/x-gettext-translation":
		return true
	}
	return strings.HasPrefix(mimeType, "text/")
}
