// relocate.go rewrites relative image paths for a new document location.
package md

import "strings"

// Relocate rewrites every relative image reference in text so that it still
// resolves when the text moves from the directory of source to the directory
// of output. Paths are slash separated. Absolute paths and http(s) URLs are
// left untouched.
//
// The second return value is false if output or source has no parent
// directory.
func Relocate(output, source, text string) (string, bool) {
	outputDir, ok := parentDir(output)
	if !ok {
		return "", false
	}
	sourceDir, ok := parentDir(source)
	if !ok {
		return "", false
	}

	var prefix []string
	for range pathComponents(outputDir) {
		prefix = append(prefix, "..")
	}
	prefix = append(prefix, sourceDir)

	refs := ScanImageRefs(text)
	// Replace right to left so earlier spans stay valid
	for i := len(refs) - 1; i >= 0; i-- {
		ref := refs[i]
		if isAbsoluteRef(ref.Content) {
			continue
		}
		// The raw span keeps escaped quotes of HTML attributes intact
		newPath := joinPath(append(prefix, text[ref.Start:ref.End])...)
		text = text[:ref.Start] + newPath + text[ref.End:]
	}

	return text, true
}

func isAbsoluteRef(ref string) bool {
	return strings.HasPrefix(ref, "/") ||
		strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://")
}

// parentDir returns the directory part of a slash separated path. A bare file
// name has the empty directory as its parent; "" and "/" have none.
func parentDir(p string) (string, bool) {
	if p == "" || p == "/" {
		return "", false
	}
	p = strings.TrimSuffix(p, "/")
	i := strings.LastIndexByte(p, '/')
	switch {
	case i < 0:
		return "", true
	case i == 0:
		return "/", true
	default:
		return p[:i], true
	}
}

// pathComponents splits p into its named components, ignoring empty and "."
// segments.
func pathComponents(p string) []string {
	var parts []string
	for _, part := range strings.Split(p, "/") {
		if part == "" || part == "." {
			continue
		}
		parts = append(parts, part)
	}
	return parts
}

// joinPath joins non-empty elements with "/" without cleaning them, so
// segments like "./" in the original reference survive.
func joinPath(elems ...string) string {
	var sb strings.Builder
	for _, e := range elems {
		if e == "" {
			continue
		}
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "/") {
			sb.WriteByte('/')
		}
		sb.WriteString(e)
	}
	return sb.String()
}
