package chat

import "regexp"

// fileRef matches a bare file name with one of the explainable extensions.
// Longer alternatives come first so "deck.pptx" is not cut to "deck.ppt".
var fileRef = regexp.MustCompile(`(?i)[a-z0-9_\-]+\.(?:pptx|ppt|pdf|docx|txt)`)

// DetectFileName returns the first file-name-shaped token of an already
// lowercased message. It does not check that the file exists.
func DetectFileName(lowered string) (string, bool) {
	name := fileRef.FindString(lowered)
	return name, name != ""
}
