package domain

// The four axes a winning line can lie on, as (deltaRow, deltaCol).
var axes = [4][2]int{
	{0, 1},  // horizontal
	{1, 0},  // vertical
	{1, 1},  // diagonal \
	{1, -1}, // diagonal /
}

// CheckWin reports whether placing disc at (row, column) completed a line
// of ToWin. Only lines through the placed cell are scanned.
func CheckWin(board [][]Disc, row, column int, disc Disc) bool {
	for _, axis := range axes {
		if runAlong(board, row, column, disc, axis[0], axis[1]) >= ToWin {
			return true
		}
	}
	return false
}

// LongestRunThrough returns the longest contiguous run of disc that passes
// through (row, column), across all four axes.
func LongestRunThrough(board [][]Disc, row, column int, disc Disc) int {
	best := 0
	for _, axis := range axes {
		if run := runAlong(board, row, column, disc, axis[0], axis[1]); run > best {
			best = run
		}
	}
	return best
}

// runAlong counts contiguous discs through (row, column) on one axis,
// including the cell itself.
func runAlong(board [][]Disc, row, column int, disc Disc, deltaRow, deltaCol int) int {
	return 1 +
		countConsecutive(board, row, column, disc, deltaRow, deltaCol) +
		countConsecutive(board, row, column, disc, -deltaRow, -deltaCol)
}

func countConsecutive(board [][]Disc, row, column int, disc Disc, deltaRow, deltaCol int) int {
	count := 0
	r, c := row+deltaRow, column+deltaCol
	for r >= 0 && r < Rows && c >= 0 && c < Columns && board[r][c] == disc {
		count++
		r += deltaRow
		c += deltaCol
	}
	return count
}
