package history

// ratio computes a normalized sequence similarity in [0,1] between two
// strings: 2*M / (len(a)+len(b)) where M is the total length of the
// longest common matching blocks, found by recursively splitting around
// the longest common substring. Identical strings score 1.0; strings with
// no common characters score 0.
func ratio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	m := matchingBlocksLen([]byte(a), []byte(b))
	return 2.0 * float64(m) / float64(len(a)+len(b))
}

// matchingBlocksLen sums the lengths of the recursive longest-common
// matching blocks of a and b.
func matchingBlocksLen(a, b []byte) int {
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingBlocksLen(a[:ai], b[:bi])
	total += matchingBlocksLen(a[ai+size:], b[bi+size:])
	return total
}

// longestMatch finds the longest common substring of a and b, preferring
// the earliest occurrence in a, then in b. Standard dynamic program over
// suffix lengths.
func longestMatch(a, b []byte) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > size {
					size = cur[j]
					ai = i - size
					bi = j - size
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, size
}
