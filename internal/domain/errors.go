package domain

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is. Each typed error below matches exactly one of them.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrOutOfStock        = errors.New("out of stock")
	ErrInvalidTransition = errors.New("invalid transition")
)

type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type NotFoundError struct {
	Entity string
	ID     uint64
}

func NewNotFoundError(entity string, id uint64) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// OutOfStockError names the first requested menu item that is unavailable.
type OutOfStockError struct {
	MenuItemID uint64
	Name       string
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("menu item %q (%d) is out of stock", e.Name, e.MenuItemID)
}

func (e *OutOfStockError) Is(target error) bool { return target == ErrOutOfStock }

type InvalidTransitionError struct {
	From   OrderStatus
	To     OrderStatus
	Action string
}

func (e *InvalidTransitionError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("cannot %s an order in status %s", e.Action, e.From)
	}
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }
