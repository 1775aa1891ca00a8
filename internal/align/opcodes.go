package align

type editTag int

const (
	tagEqual editTag = iota
	tagReplace
	tagDelete
	tagInsert
)

// opcode describes how a[i1:i2] relates to b[j1:j2].
type opcode struct {
	tag editTag
	i1  int
	i2  int
	j1  int
	j2  int
}

// matchingPairs returns index pairs (i, j) with a[i] == b[j] along a
// longest common subsequence of a and b.
func matchingPairs(a, b []string) [][2]int {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return nil
	}

	// dp[i][j] holds the LCS length of a[i:] and b[j:].
	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				dp[i][j] = dp[i+1][j+1] + 1
			} else if dp[i+1][j] >= dp[i][j+1] {
				dp[i][j] = dp[i+1][j]
			} else {
				dp[i][j] = dp[i][j+1]
			}
		}
	}

	var pairs [][2]int
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			pairs = append(pairs, [2]int{i, j})
			i++
			j++
		case dp[i+1][j] >= dp[i][j+1]:
			i++
		default:
			j++
		}
	}
	return pairs
}

// opcodes describes how to turn a into b as ordered runs of equal,
// replace, delete and insert spans covering both sequences completely.
func opcodes(a, b []string) []opcode {
	pairs := matchingPairs(a, b)

	var ops []opcode
	i, j := 0, 0
	emitGap := func(i2, j2 int) {
		switch {
		case i < i2 && j < j2:
			ops = append(ops, opcode{tagReplace, i, i2, j, j2})
		case i < i2:
			ops = append(ops, opcode{tagDelete, i, i2, j, j2})
		case j < j2:
			ops = append(ops, opcode{tagInsert, i, i2, j, j2})
		}
	}

	idx := 0
	for idx < len(pairs) {
		start := pairs[idx]
		end := start
		for idx+1 < len(pairs) && pairs[idx+1][0] == end[0]+1 && pairs[idx+1][1] == end[1]+1 {
			idx++
			end = pairs[idx]
		}
		idx++

		emitGap(start[0], start[1])
		ops = append(ops, opcode{tagEqual, start[0], end[0] + 1, start[1], end[1] + 1})
		i, j = end[0]+1, end[1]+1
	}
	emitGap(len(a), len(b))

	return ops
}
