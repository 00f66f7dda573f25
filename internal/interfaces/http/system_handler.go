package http

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/almacen-bridge/internal/application/backup"
	"github.com/jhoicas/almacen-bridge/internal/application/dto"
)

// SchemaMigrator re-aplica el esquema del almacén (idempotente).
type SchemaMigrator interface {
	Migrate(ctx context.Context) error
}

// SystemHandler salud, copias de seguridad, alertas y reinicialización del esquema.
type SystemHandler struct {
	appName  string
	backups  *backup.Service
	migrator SchemaMigrator
	log      zerolog.Logger
}

// NewSystemHandler construye el handler.
func NewSystemHandler(appName string, backups *backup.Service, migrator SchemaMigrator, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		appName:  appName,
		backups:  backups,
		migrator: migrator,
		log:      log.With().Str("component", "http").Logger(),
	}
}

// Health godoc
// @Summary      Liveness
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *SystemHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "service": h.appName})
}

// BackupNow godoc
// @Summary      Copia de seguridad inmediata
// @Tags         system
// @Produce      json
// @Success      200  {object}  dto.BackupResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /backup-now [post]
func (h *SystemHandler) BackupNow(c *fiber.Ctx) error {
	res, err := h.backups.Now(c.UserContext())
	if err != nil {
		return fail(c, err, nil)
	}
	return c.JSON(dto.BackupResponse{
		Message:   "Manual database backup completed successfully.",
		File:      filepath.Base(res.Path),
		Tables:    res.Tables,
		SizeBytes: res.SizeBytes,
	})
}

// ReportError godoc
// @Summary      Registrar alerta del sistema
// @Tags         system
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SystemAlertRequest  true  "error_message"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /error [post]
func (h *SystemHandler) ReportError(c *fiber.Ctx) error {
	var in dto.SystemAlertRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if strings.TrimSpace(in.ErrorMessage) == "" {
		return badRequest(c, "VALIDATION", "error_message es requerido")
	}
	h.log.Error().
		Str("source_ip", c.IP()).
		Str("alert", in.ErrorMessage).
		Msg("alerta del sistema")
	return c.JSON(dto.MessageResponse{Message: "Error logged"})
}

// ResetDatabase godoc
// @Summary      Reinicializar el esquema
// @Description  Vuelve a aplicar el esquema; los datos existentes se conservan.
// @Tags         system
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.MessageResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /reset-database [post]
func (h *SystemHandler) ResetDatabase(c *fiber.Ctx) error {
	if err := h.migrator.Migrate(c.UserContext()); err != nil {
		return fail(c, err, nil)
	}
	h.log.Warn().Str("username", GetUsername(c)).Msg("esquema reinicializado")
	return c.JSON(dto.MessageResponse{Message: "Database has been reset and reinitialized."})
}
