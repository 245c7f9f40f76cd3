// Package annotate writes copies of source files with a hit-count gutter.
package annotate

import (
	"os"
	"strings"
)

// OutputName derives the flat output file name for filePath relative to
// base. The longest run of leading path segments shared with base is
// dropped and the remaining separators become underscores:
//
//	OutputName("/p", "/p/a/b.c")          == "a_b.c"
//	OutputName("/home/u/flow", "src/a.c") == "src_a.c"
//
// Different sources can map to the same name ("/p/a/b.c" and "/p/a_b.c"
// both give "a_b.c"); Annotator reports such collisions.
func OutputName(base, filePath string) string {
	fileSegs := strings.Split(filePath, "/")
	baseSegs := strings.Split(base, "/")

	// keep at least the file name itself
	limit := len(fileSegs) - 1
	common := 0
	for common < limit && common < len(baseSegs) && fileSegs[common] == baseSegs[common] {
		common++
	}

	name := strings.Join(fileSegs[common:], "_")
	if os.PathSeparator != '/' {
		name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	}
	return name
}
