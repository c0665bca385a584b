package display

// scrollSteps returns how many window positions one full traversal of the
// text takes.
func scrollSteps(text string) int {
	steps := len(text) - Digits + 1
	if steps < 1 {
		steps = 1
	}
	return steps
}

// scrollWindow returns the 4 characters visible at a scroll position,
// padded with blanks when the text is shorter than the window.
func scrollWindow(text string, pos int) string {
	buf := make([]byte, Digits)
	for i := 0; i < Digits; i++ {
		idx := pos + i
		if idx < len(text) {
			buf[i] = text[idx]
		} else {
			buf[i] = ' '
		}
	}
	return string(buf)
}
