package main

import (
	"path/filepath"
	"strings"
)

// resolvePackOut picks the pack output path: the explicit flag when given,
// otherwise the input name with a .tvf extension.
func resolvePackOut(inPath, outFlag string) string {
	outFlag = strings.TrimSpace(outFlag)
	if outFlag != "" {
		return filepath.Clean(outFlag)
	}
	ext := filepath.Ext(inPath)
	if ext == "" {
		return inPath + ".tvf"
	}
	return strings.TrimSuffix(inPath, ext) + ".tvf"
}
