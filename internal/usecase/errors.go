package usecase

import "errors"

var (
	ErrInvalidPrice   = errors.New("price must be a positive finite number")
	ErrSeriesMismatch = errors.New("invalid series")
	ErrEmptyBatch     = errors.New("batch contains no assets")
	ErrFormulaPanic   = errors.New("formula panicked")
	ErrSymbolRequired = errors.New("symbol required")
)
