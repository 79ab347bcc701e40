package api

import (
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
)

// apostrophes separate words in upload names; slug.Make would drop them.
var apostrophes = strings.NewReplacer("'", " ", "\u2019", " ")

// sanitizeFileName transliterates and slugifies the stem of name and keeps
// its lowercased extension.
func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	ext := filepath.Ext(name)
	stem := slug.Make(apostrophes.Replace(strings.TrimSuffix(name, ext)))
	if stem == "" {
		stem = "file"
	}
	if ext = slug.Make(strings.TrimPrefix(ext, ".")); ext != "" {
		return stem + "." + ext
	}
	return stem
}
