package pkgserial

const (
	digitsFirst  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lettersFirst = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// formatRadix writes n in the given radix using table, left padded with
// table[0] up to size characters.
func formatRadix(n uint64, radix uint64, size int, table string) string {
	buf := make([]byte, 0, size)
	for {
		buf = append(buf, table[n%radix])
		n /= radix
		if n == 0 {
			break
		}
	}
	for len(buf) < size {
		buf = append(buf, table[0])
	}

	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}

	return string(buf)
}
