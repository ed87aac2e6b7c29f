package game

import (
	"fmt"

	"github.com/bloops-games/bingo/internal/database/room/model"
)

// MaxDimension bounds rows and columns so a rendered card fits a chat message.
const MaxDimension = 10

func ValidateSettings(s model.Settings) error {
	if s.Rows <= 0 || s.Columns <= 0 {
		return fmt.Errorf("%w: %dx%d, dimensions must be positive", ErrInvalidGridShape, s.Rows, s.Columns)
	}

	if s.Rows > MaxDimension || s.Columns > MaxDimension {
		return fmt.Errorf("%w: %dx%d, dimensions must not exceed %d",
			ErrInvalidGridShape, s.Rows, s.Columns, MaxDimension)
	}

	return nil
}
