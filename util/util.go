// Package util is a set of utility variables or methods
package util

import (
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

var SupportedExt = mapset.NewSet(
	".jpeg", ".jpg", ".JPEG", ".JPG",
	".png", ".PNG",
)

// IsSupportedPhoto reports whether the file name carries a supported photo
// extension, case-insensitively.
func IsSupportedPhoto(name string) bool {
	ext := filepath.Ext(name)
	return SupportedExt.Contains(ext) || SupportedExt.Contains(strings.ToLower(ext))
}
