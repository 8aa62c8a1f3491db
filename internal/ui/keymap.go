package ui

// KeyForRune returns the keypad key 0x0-0xF for a typed character.
// Digits and the letters a-f in both cases map to the key of the same
// hexadecimal value.
func KeyForRune(r rune) (uint8, bool) {
	switch {
	case r >= '0' && r <= '9':
		return uint8(r - '0'), true
	case r >= 'a' && r <= 'f':
		return uint8(r-'a') + 0xA, true
	case r >= 'A' && r <= 'F':
		return uint8(r-'A') + 0xA, true
	default:
		return 0, false
	}
}
