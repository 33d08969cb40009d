// Package errors maps engine error conditions to machine-readable codes
// and transport status.
package errors

import (
	"errors"
	"net/http"

	"github.com/louisbranch/conquest-engine/internal/combat/dice"
	"github.com/louisbranch/conquest-engine/internal/combat/odds"
	"github.com/louisbranch/conquest-engine/internal/combat/round"
	"github.com/louisbranch/conquest-engine/internal/combat/table"
	"github.com/louisbranch/conquest-engine/internal/storage"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Dice/combat errors
	CodeInvalidDiceCount Code = "INVALID_DICE_COUNT"
	CodeInvalidArmyCount Code = "INVALID_ARMY_COUNT"

	// Table errors
	CodeInvalidTableBounds      Code = "INVALID_TABLE_BOUNDS"
	CodeTableTooLarge           Code = "TABLE_TOO_LARGE"
	CodeCorruptTableData        Code = "CORRUPT_TABLE_DATA"
	CodeUnsupportedTableVersion Code = "UNSUPPORTED_TABLE_VERSION"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// FromError classifies an error into a Code.
func FromError(err error) Code {
	switch {
	case err == nil:
		return CodeUnknown
	case errors.Is(err, dice.ErrInvalidDiceCount):
		return CodeInvalidDiceCount
	case errors.Is(err, round.ErrInvalidArmyCount), errors.Is(err, odds.ErrInvalidArmyCount):
		return CodeInvalidArmyCount
	case errors.Is(err, table.ErrInvalidTableBounds):
		return CodeInvalidTableBounds
	case errors.Is(err, table.ErrTableTooLarge):
		return CodeTableTooLarge
	case errors.Is(err, table.ErrCorruptTableData):
		return CodeCorruptTableData
	case errors.Is(err, table.ErrUnsupportedTableVersion):
		return CodeUnsupportedTableVersion
	case errors.Is(err, storage.ErrNotFound):
		return CodeNotFound
	default:
		return CodeUnknown
	}
}

// HTTPStatus maps engine codes to HTTP status codes.
func HTTPStatus(code Code) int {
	switch code {
	case CodeInvalidDiceCount, CodeInvalidArmyCount, CodeInvalidTableBounds:
		return http.StatusBadRequest
	case CodeTableTooLarge:
		return http.StatusUnprocessableEntity
	case CodeCorruptTableData, CodeUnsupportedTableVersion:
		return http.StatusInternalServerError
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
