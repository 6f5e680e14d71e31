package otp

// CodeBuffer models the six single-character code entries. A non-numeric
// write is rejected without touching the position's prior value.
type CodeBuffer [CodeLength]string

// Set stores a single digit at position i. It reports whether the write was
// accepted.
func (b *CodeBuffer) Set(i int, v string) bool {
	if i < 0 || i >= CodeLength {
		return false
	}
	if len(v) != 1 || v[0] < '0' || v[0] > '9' {
		return false
	}
	b[i] = v
	return true
}

// Clear empties position i.
func (b *CodeBuffer) Clear(i int) {
	if i < 0 || i >= CodeLength {
		return
	}
	b[i] = ""
}

// Code concatenates the entries. ok is false until all six are filled.
func (b *CodeBuffer) Code() (code string, ok bool) {
	for _, d := range b {
		if d == "" {
			return "", false
		}
		code += d
	}
	return code, true
}
