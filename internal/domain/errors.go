package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrDuplicate         = errors.New("duplicate resource")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict with current state")
	ErrInsufficientStock = errors.New("not enough stock")

	// Fallos del protocolo industrial. Se envuelven junto con la causa original (ver plc.OpError).
	ErrPLCConnection = errors.New("cannot connect to PLC")
	ErrPLCRead       = errors.New("PLC read failed")
	ErrPLCWrite      = errors.New("PLC write failed")
)
