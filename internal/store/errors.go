package store

import "errors"

var (
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidState     = errors.New("invalid ticket state")
	ErrCounterBusy      = errors.New("counter already has a calling ticket")
	ErrNothingToRecall  = errors.New("no ticket to recall")
)
