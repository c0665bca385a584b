package display

// 7-segment bit mapping, reversed from the standard layout to match the
// physical display wiring:
// bit 0 = G, bit 1 = F, bit 2 = E, bit 3 = D, bit 4 = C, bit 5 = B,
// bit 6 = A, bit 7 = DP.

// Segments returns the raw segment pattern for a character. Unknown
// characters render blank.
func Segments(c byte) byte {
	switch c {
	case '0':
		return 0b01111110
	case '1':
		return 0b00110000
	case '2':
		return 0b11011010
	case '3':
		return 0b11110010
	case '4':
		return 0b10110110
	case '5':
		return 0b11100110
	case '6':
		return 0b11101110
	case '7':
		return 0b00110010
	case '8':
		return 0b11111110
	case '9':
		return 0b11110110
	case 'A', 'a':
		return 0b11110110
	case 'B', 'b':
		return 0b11101110
	case 'C', 'c':
		return 0b11001100
	case 'D', 'd':
		return 0b11111000
	case 'E', 'e':
		return 0b11001110
	case 'F', 'f':
		return 0b11000110
	case 'G', 'g':
		return 0b11111100
	case 'H', 'h':
		return 0b10110110
	case 'I', 'i':
		return 0b00110000
	case 'J', 'j':
		return 0b01111000
	case 'K', 'k':
		return 0b10110110
	case 'L', 'l':
		return 0b01001100
	case 'M', 'm':
		return 0b11110110
	case 'N', 'n':
		return 0b10110000
	case 'O', 'o':
		return 0b11111000
	case 'P', 'p':
		return 0b11010110
	case 'Q', 'q':
		return 0b11110110
	case 'R', 'r':
		return 0b10010000
	case 'S', 's':
		return 0b11100110
	case 'T', 't':
		return 0b01001110
	case 'U', 'u':
		return 0b01111000
	case 'V', 'v':
		return 0b01111000
	case 'W', 'w':
		return 0b01111110
	case 'X', 'x':
		return 0b10110110
	case 'Y', 'y':
		return 0b11110100
	case 'Z', 'z':
		return 0b11011010
	case '-':
		return 0b00000010
	case '_':
		return 0b00001000
	case '=':
		return 0b00010010
	case ' ':
		return 0b00000000
	default:
		return 0b00000000
	}
}

// CodeBCompatible reports whether the MAX7219's built-in Code-B decoder can
// render the character directly: 0-9, -, E, H, L, P and blank.
func CodeBCompatible(c byte) bool {
	return (c >= '0' && c <= '9') ||
		c == '-' ||
		c == 'E' || c == 'H' || c == 'L' || c == 'P' ||
		c == ' '
}

// codeB maps a Code-B compatible character to the decoder's input value.
func codeB(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c == '-':
		return 0x0A
	case c == 'E':
		return 0x0B
	case c == 'H':
		return 0x0C
	case c == 'L':
		return 0x0D
	case c == 'P':
		return 0x0E
	default: // blank
		return 0x0F
	}
}
