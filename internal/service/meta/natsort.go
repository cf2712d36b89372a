package meta

// natCompare orders strings the way release directories should be ordered:
// runs of digits compare by numeric value, everything else byte-wise.
// "1.9.0" sorts before "1.10.0". Strings are never rejected, a name that is
// not version-shaped still gets a deterministic position.
func natCompare(a, b string) int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if isDigit(a[i]) && isDigit(b[j]) {
			// Skip leading zeros, then compare the digit runs by length
			// first and digits second.
			for i < len(a) && a[i] == '0' {
				i++
			}
			for j < len(b) && b[j] == '0' {
				j++
			}

			si, sj := i, j
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			for j < len(b) && isDigit(b[j]) {
				j++
			}

			if la, lb := i-si, j-sj; la != lb {
				if la < lb {
					return -1
				}
				return 1
			}

			for k := 0; k < i-si; k++ {
				if a[si+k] != b[sj+k] {
					if a[si+k] < b[sj+k] {
						return -1
					}
					return 1
				}
			}

			continue
		}

		if a[i] != b[j] {
			if a[i] < b[j] {
				return -1
			}
			return 1
		}
		i++
		j++
	}

	switch {
	case len(a)-i < len(b)-j:
		return -1
	case len(a)-i > len(b)-j:
		return 1
	}

	return 0
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
