package http

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-bridge/internal/application/dto"
	"github.com/jhoicas/almacen-bridge/internal/domain"
)

// errorTexts reemplaza el mensaje de un error centinela sin envolver por el texto
// que esperan los clientes del PLC/HMI. Los errores envueltos conservan su contexto.
type errorTexts map[error]string

// classify traduce un error de dominio a status HTTP y código.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusBadRequest, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrPLCConnection):
		return fiber.StatusInternalServerError, "PLC_CONNECTION"
	case errors.Is(err, domain.ErrPLCRead):
		return fiber.StatusInternalServerError, "PLC_READ"
	case errors.Is(err, domain.ErrPLCWrite):
		return fiber.StatusInternalServerError, "PLC_WRITE"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

// fail responde con dto.ErrorResponse según el tipo de error.
func fail(c *fiber.Ctx, err error, texts errorTexts) error {
	status, code := classify(err)
	msg := err.Error()
	for target, text := range texts {
		if err == target {
			msg = text
			break
		}
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// decodeBody decodifica JSON conservando los números como json.Number,
// para que 3 y 3.5 no se confundan al validar puntos enteros.
func decodeBody(c *fiber.Ctx, out any) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return domain.ErrInvalidInput
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

// paramID lee un id numérico positivo de la ruta.
func paramID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int64(id), true
}
