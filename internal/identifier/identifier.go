// Package identifier splits package file names into an identity-and-version
// substring and a file extension. It treats file names as opaque text and
// never touches the file system.
package identifier

import "strings"

// Split extracts the identity-and-version substring and the extension from
// an externally supplied file name such as
// "package.suffix.1.0.0.zip-e55fcd51-6081-4300-91a3-117b7930c023".
//
// The first candidate extension found scanning the base name from the left
// is used, candidates being tried in the given order at each position.
// Anything following the extension is ignored. When no candidate matches
// the returned extension is empty.
func Split(filename string, extensions []string) (idAndVersion, extension string) {
	name := BaseName(filename)

	for i := 0; i < len(name); i++ {
		for _, ext := range extensions {
			if ext == "" {
				continue
			}
			if strings.HasPrefix(name[i:], ext) {
				return name[:i], ext
			}
		}
	}

	return "", ""
}

// SplitServer extracts the identity-and-version substring and the extension
// from a file name written by the server cache, in the form
// <identity-and-version><cacheDelimiter><token><extension>. The token is
// discarded.
//
// The base name must end with one of the candidate extensions, tried in the
// given order, and the last cache delimiter before it must be followed by a
// non-empty token. Otherwise the returned extension is empty.
func SplitServer(filename string, extensions []string, cacheDelimiter string) (idAndVersion, extension string) {
	if cacheDelimiter == "" {
		return "", ""
	}

	name := BaseName(filename)

	for _, ext := range extensions {
		if ext == "" || !strings.HasSuffix(name, ext) {
			continue
		}

		stem := strings.TrimSuffix(name, ext)
		idx := strings.LastIndex(stem, cacheDelimiter)
		if idx < 0 || idx+len(cacheDelimiter) == len(stem) {
			return "", ""
		}

		return stem[:idx], ext
	}

	return "", ""
}

// BaseName strips everything up to the last forward or back slash, so both
// POSIX and Windows style paths reduce to their file name.
func BaseName(filename string) string {
	if idx := strings.LastIndexAny(filename, `/\`); idx >= 0 {
		return filename[idx+1:]
	}
	return filename
}
