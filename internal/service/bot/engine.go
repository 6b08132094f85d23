package bot

import "github.com/dropfour/server/internal/domain"

// NoMove is returned when the board has no legal column left.
const NoMove = -1

// centerOrder is the middle-out column preference.
var centerOrder = [domain.Columns]int{3, 2, 4, 1, 5, 0, 6}

// BestMove picks a column for own using a fixed greedy policy, first match
// wins: take an immediate win, block an immediate opponent win, build a
// 2-3 run from the center out, take the best-scoring column, fall back to
// the center order, then any legal column.
func BestMove(board [][]domain.Disc, own domain.Disc) int {
	validMoves := domain.ValidMoves(board)
	if len(validMoves) == 0 {
		return NoMove
	}

	if col := findWinningMove(board, validMoves, own); col != NoMove {
		return col
	}

	opponent := domain.Opponent(own)
	if col := findWinningMove(board, validMoves, opponent); col != NoMove {
		return col
	}

	for _, col := range centerOrder {
		if domain.IsColumnFull(board, col) {
			continue
		}
		if createsOpportunity(board, col, own) {
			return col
		}
	}

	if col := findBestOpportunity(board, validMoves, own); col != NoMove {
		return col
	}

	for _, col := range centerOrder {
		if !domain.IsColumnFull(board, col) {
			return col
		}
	}

	return validMoves[0]
}

// findWinningMove returns the first column where dropping disc completes a
// line, or NoMove.
func findWinningMove(board [][]domain.Disc, validMoves []int, disc domain.Disc) int {
	for _, col := range validMoves {
		test, row, err := domain.SimulateDrop(board, col, disc)
		if err != nil {
			continue
		}
		if domain.CheckWin(test, row, col, disc) {
			return col
		}
	}
	return NoMove
}

// createsOpportunity reports whether dropping in col yields a 2-3 run.
// A run of 4 is a win and was already taken by the win check.
func createsOpportunity(board [][]domain.Disc, col int, disc domain.Disc) bool {
	test, row, err := domain.SimulateDrop(board, col, disc)
	if err != nil {
		return false
	}
	run := domain.LongestRunThrough(test, row, col, disc)
	return run >= 2 && run < domain.ToWin
}

// findBestOpportunity scores each legal column by the run it creates plus
// a center bonus, keeping the first strictly-best column.
func findBestOpportunity(board [][]domain.Disc, validMoves []int, disc domain.Disc) int {
	bestCol := NoMove
	bestScore := 0.0

	for _, col := range validMoves {
		test, row, err := domain.SimulateDrop(board, col, disc)
		if err != nil {
			continue
		}

		score := float64(domain.LongestRunThrough(test, row, col, disc))
		switch col {
		case 3:
			score += 1
		case 2, 4:
			score += 0.5
		}

		if score > bestScore {
			bestScore = score
			bestCol = col
		}
	}

	return bestCol
}
