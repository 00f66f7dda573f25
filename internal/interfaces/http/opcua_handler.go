package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-bridge/internal/application/dto"
	"github.com/jhoicas/almacen-bridge/internal/application/plc"
	"github.com/jhoicas/almacen-bridge/internal/application/processimage"
	"github.com/jhoicas/almacen-bridge/internal/domain"
	"github.com/jhoicas/almacen-bridge/internal/domain/tags"
)

// NodeSetExporter serializa la imagen de proceso como UANodeSet2.
type NodeSetExporter func() ([]byte, error)

// OPCUAHandler expone la imagen de proceso local y el enlace con el PLC.
type OPCUAHandler struct {
	image   *processimage.Image
	link    *plc.LinkManager
	nodeSet NodeSetExporter
}

// NewOPCUAHandler construye el handler. nodeSet puede ser nil (GET /opcua/nodeset responde 404).
func NewOPCUAHandler(image *processimage.Image, link *plc.LinkManager, nodeSet NodeSetExporter) *OPCUAHandler {
	return &OPCUAHandler{image: image, link: link, nodeSet: nodeSet}
}

// GetItemCount godoc
// @Summary      Contador de ítems
// @Tags         opcua
// @Produce      json
// @Success      200  {object}  dto.ItemCountResponse
// @Router       /opcua/get-item-count [get]
func (h *OPCUAHandler) GetItemCount(c *fiber.Ctx) error {
	return c.JSON(dto.ItemCountResponse{ItemCount: h.image.ItemCount()})
}

// SetItemCount godoc
// @Summary      Actualizar contador de ítems
// @Tags         opcua
// @Accept       json
// @Produce      json
// @Param        body  body  object  true  "{\"item_count\": 5}"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /opcua/set-item-count [post]
func (h *OPCUAHandler) SetItemCount(c *fiber.Ctx) error {
	var body map[string]any
	if err := decodeBody(c, &body); err != nil {
		return badRequest(c, "INVALID_BODY", "Invalid item count")
	}
	v, ok := body["item_count"]
	if !ok {
		return badRequest(c, "VALIDATION", "Invalid item count")
	}
	if err := h.image.Set(c.UserContext(), tags.ItemCount, v); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return badRequest(c, "VALIDATION", "Invalid item count")
		}
		return fail(c, err, nil)
	}
	return c.JSON(dto.MessageResponse{Message: "Item count updated successfully"})
}

// GetTrafficLight godoc
// @Summary      Estado del semáforo
// @Tags         opcua
// @Produce      json
// @Success      200  {object}  dto.TrafficLightResponse
// @Router       /opcua/get-traffic-light [get]
func (h *OPCUAHandler) GetTrafficLight(c *fiber.Ctx) error {
	return c.JSON(dto.TrafficLightResponse{TrafficLightStatus: h.image.TrafficLight()})
}

// SetTrafficLight godoc
// @Summary      Actualizar semáforo
// @Description  Acepta traffic_light_status (o status) en RED, YELLOW, GREEN, OFF.
// @Tags         opcua
// @Accept       json
// @Produce      json
// @Param        body  body  object  true  "{\"traffic_light_status\": \"GREEN\"}"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /opcua/set-traffic-light [post]
func (h *OPCUAHandler) SetTrafficLight(c *fiber.Ctx) error {
	var body map[string]any
	if err := decodeBody(c, &body); err != nil {
		return badRequest(c, "INVALID_BODY", "Invalid status")
	}
	v, ok := body["traffic_light_status"]
	if !ok {
		v = body["status"]
	}
	status, _ := v.(string)
	if err := h.image.SetTrafficLight(c.UserContext(), status); err != nil {
		return badRequest(c, "VALIDATION", "Invalid status")
	}
	return c.JSON(dto.MessageResponse{Message: "Traffic light status updated successfully"})
}

// GetHMIStatus godoc
// @Summary      Estado reportado por el HMI
// @Tags         opcua
// @Produce      json
// @Success      200  {object}  dto.HMIStatusResponse
// @Router       /opcua/get-hmi-status [get]
func (h *OPCUAHandler) GetHMIStatus(c *fiber.Ctx) error {
	return c.JSON(dto.HMIStatusResponse{HMIStatus: h.image.HMIStatus()})
}

// GetHMICommand godoc
// @Summary      Último comando HMI
// @Tags         opcua
// @Produce      json
// @Success      200  {object}  dto.HMICommandResponse
// @Router       /opcua/get-hmi-command [get]
func (h *OPCUAHandler) GetHMICommand(c *fiber.Ctx) error {
	return c.JSON(dto.HMICommandResponse{HMICommand: h.image.HMICommand()})
}

// SetHMICommand godoc
// @Summary      Enviar comando HMI
// @Tags         opcua
// @Accept       json
// @Produce      json
// @Param        body  body  object  true  "{\"hmi_command\": \"START\"}"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /opcua/set-hmi-command [post]
func (h *OPCUAHandler) SetHMICommand(c *fiber.Ctx) error {
	var body map[string]any
	if err := decodeBody(c, &body); err != nil {
		return badRequest(c, "INVALID_BODY", "Invalid HMI command")
	}
	cmd, _ := body["hmi_command"].(string)
	if err := h.image.SetHMICommand(c.UserContext(), cmd); err != nil {
		return badRequest(c, "VALIDATION", "Invalid HMI command")
	}
	return c.JSON(dto.MessageResponse{Message: "HMI command updated successfully"})
}

// Status godoc
// @Summary      Salud del enlace con el PLC
// @Tags         opcua
// @Produce      json
// @Success      200  {object}  plc.Health
// @Router       /opcua/status [get]
func (h *OPCUAHandler) Status(c *fiber.Ctx) error {
	return c.JSON(h.link.Status(c.UserContext()))
}

// Read godoc
// @Summary      Leer un nodo del PLC
// @Tags         opcua
// @Accept       json
// @Produce      json
// @Param        body  body  dto.NodeRequest  true  "node_id"
// @Success      200   {object}  dto.NodeValueResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /opcua/read [post]
func (h *OPCUAHandler) Read(c *fiber.Ctx) error {
	var in dto.NodeRequest
	if err := decodeBody(c, &in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if strings.TrimSpace(in.NodeID) == "" {
		return badRequest(c, "VALIDATION", "node_id es requerido")
	}
	v, err := h.link.Read(c.UserContext(), in.NodeID)
	if err != nil {
		return fail(c, err, nil)
	}
	return c.JSON(dto.NodeValueResponse{NodeID: in.NodeID, Value: v})
}

// Write godoc
// @Summary      Escribir un nodo del PLC
// @Tags         opcua
// @Accept       json
// @Produce      json
// @Param        body  body  dto.NodeRequest  true  "node_id y value"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /opcua/write [post]
func (h *OPCUAHandler) Write(c *fiber.Ctx) error {
	return h.write(c, "Value written successfully")
}

// Update godoc
// @Summary      Escribir un nodo del PLC (alias de write)
// @Tags         opcua
// @Accept       json
// @Produce      json
// @Param        body  body  dto.NodeRequest  true  "node_id y value"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /opcua/update [post]
func (h *OPCUAHandler) Update(c *fiber.Ctx) error {
	return h.write(c, "OPC UA updated successfully")
}

func (h *OPCUAHandler) write(c *fiber.Ctx, okMsg string) error {
	var in dto.NodeRequest
	if err := decodeBody(c, &in); err != nil {
		return badRequest(c, "INVALID_BODY", "Invalid node_id or value")
	}
	if strings.TrimSpace(in.NodeID) == "" || in.Value == nil {
		return badRequest(c, "VALIDATION", "Invalid node_id or value")
	}
	if err := h.link.Write(c.UserContext(), in.NodeID, in.Value); err != nil {
		return fail(c, err, nil)
	}
	return c.JSON(dto.MessageResponse{Message: okMsg})
}

// TrafficLight godoc
// @Summary      Semáforo de un armario
// @Description  Escribe el estado en el nodo TrafficLight_{cabinet_id} del PLC.
// @Tags         opcua
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TrafficLightControlRequest  true  "cabinet_id y status"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /traffic-light [post]
func (h *OPCUAHandler) TrafficLight(c *fiber.Ctx) error {
	var in dto.TrafficLightControlRequest
	if err := decodeBody(c, &in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	cabinetID := ""
	if in.CabinetID != nil {
		cabinetID = strings.TrimSpace(fmt.Sprint(in.CabinetID))
	}
	if cabinetID == "" || strings.TrimSpace(in.Status) == "" {
		return badRequest(c, "VALIDATION", "cabinet_id y status son requeridos")
	}
	if err := h.link.WriteTrafficLight(c.UserContext(), cabinetID, in.Status); err != nil {
		return fail(c, err, nil)
	}
	return c.JSON(dto.MessageResponse{
		Message: fmt.Sprintf("Traffic light for cabinet %s set to %s", cabinetID, in.Status),
	})
}

// NodeSet godoc
// @Summary      Modelo de información del almacén
// @Description  UANodeSet2 con los valores actuales de la imagen de proceso.
// @Tags         opcua
// @Produce      xml
// @Success      200
// @Router       /opcua/nodeset [get]
func (h *OPCUAHandler) NodeSet(c *fiber.Ctx) error {
	if h.nodeSet == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "exportación no disponible"})
	}
	out, err := h.nodeSet()
	if err != nil {
		return fail(c, err, nil)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	return c.Send(out)
}
