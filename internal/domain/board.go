package domain

// Board is indexed board[row][column], row 0 at the top.

func NewBoard() [][]Disc {
	board := make([][]Disc, Rows)
	for i := range board {
		board[i] = make([]Disc, Columns)
	}
	return board
}

func IsValidColumn(column int) bool {
	return column >= 0 && column < Columns
}

func IsColumnFull(board [][]Disc, column int) bool {
	return board[0][column] != Empty
}

// DropDisc places a disc in the lowest empty cell of the column and
// returns the row it landed in.
func DropDisc(board [][]Disc, column int, disc Disc) (int, error) {
	if !IsValidColumn(column) {
		return -1, ErrInvalidMove
	}

	for row := Rows - 1; row >= 0; row-- {
		if board[row][column] == Empty {
			board[row][column] = disc
			return row, nil
		}
	}

	return -1, ErrColumnFull
}

func IsBoardFull(board [][]Disc) bool {
	for c := 0; c < Columns; c++ {
		if board[0][c] == Empty {
			return false
		}
	}
	return true
}

// CopyBoard creates a deep copy so simulations never alias the live board.
func CopyBoard(board [][]Disc) [][]Disc {
	newBoard := make([][]Disc, len(board))
	for i := range board {
		newBoard[i] = make([]Disc, len(board[i]))
		copy(newBoard[i], board[i])
	}
	return newBoard
}

func ValidMoves(board [][]Disc) []int {
	moves := []int{}
	for col := 0; col < Columns; col++ {
		if !IsColumnFull(board, col) {
			moves = append(moves, col)
		}
	}
	return moves
}

// SimulateDrop plays a move on a copy of the board.
func SimulateDrop(board [][]Disc, column int, disc Disc) ([][]Disc, int, error) {
	newBoard := CopyBoard(board)
	row, err := DropDisc(newBoard, column, disc)
	if err != nil {
		return nil, -1, err
	}
	return newBoard, row, nil
}
