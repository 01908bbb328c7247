package engine

import "errors"

// Global error declarations.
var (
	InvalidOrderErr         = errors.New("invalid order")
	InsufficientPositionErr = errors.New("insufficient position, sell exceeds held quantity")
	DataQualityErr          = errors.New("data quality violation")
)
