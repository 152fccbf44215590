package position

import "unicode/utf16"

// ByteColumn converts a column counted in UTF-16 code units, as editors send it, into a
// byte offset within line. Columns past the end clamp to len(line) and a column that
// splits a surrogate pair lands after the whole rune.
func ByteColumn(line string, utf16Col int) int {
	if utf16Col <= 0 {
		return 0
	}
	units := 0
	for i, r := range line {
		if units >= utf16Col {
			return i
		}
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		units += n
	}
	return len(line)
}
