// Package tags define los puntos direccionables del PLC/HMI y su dirección en el espacio de nodos OPC UA.
package tags

import (
	"fmt"
	"strconv"
)

// Tag identifica un punto de la imagen de proceso.
type Tag string

const (
	ItemCount          Tag = "ItemCount"
	TrafficLightStatus Tag = "TrafficLightStatus"
	HMICommand         Tag = "HMICommand"
	HMIStatus          Tag = "HMIStatus"
)

// Kind tipo de valor fijo por nodo.
type Kind int

const (
	KindInteger Kind = iota
	KindEnum
	KindString
)

// Estados válidos del semáforo.
var TrafficLightStates = []string{"RED", "YELLOW", "GREEN", "OFF"}

// Comandos HMI aceptados.
var HMICommands = []string{"START", "STOP", "RESET", "EMERGENCY_STOP", "LOAD", "UNLOAD", "MAINTENANCE_MODE"}

// Definition describe un punto: tipo, valores permitidos y valor inicial.
type Definition struct {
	Tag      Tag
	Kind     Kind
	Allowed  []string
	Initial  any
	Writable bool
}

var definitions = []Definition{
	{Tag: ItemCount, Kind: KindInteger, Initial: int64(0), Writable: true},
	{Tag: TrafficLightStatus, Kind: KindEnum, Allowed: TrafficLightStates, Initial: "OFF", Writable: true},
	{Tag: HMICommand, Kind: KindEnum, Allowed: HMICommands, Initial: "NONE", Writable: true},
	{Tag: HMIStatus, Kind: KindString, Initial: "IDLE", Writable: true},
}

// Definitions devuelve una copia del registro en orden estable.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Lookup busca la definición de un tag.
func Lookup(tag Tag) (Definition, bool) {
	for _, d := range definitions {
		if d.Tag == tag {
			return d, true
		}
	}
	return Definition{}, false
}

// Allows indica si el valor pertenece al enum del punto.
func (d Definition) Allows(v string) bool {
	for _, a := range d.Allowed {
		if a == v {
			return true
		}
	}
	return false
}

// BrowseName nombre calificado dentro del objeto Warehouse.
func BrowseName(tag Tag) string {
	return "Warehouse." + string(tag)
}

// NodeID dirección OPC UA (string identifier) de un punto de la imagen de proceso.
func NodeID(ns int, tag Tag) string {
	return fmt.Sprintf("ns=%d;s=%s", ns, BrowseName(tag))
}

// TrafficLightName nombre lógico del semáforo de un armario.
func TrafficLightName(cabinetID string) string {
	return "TrafficLight_" + cabinetID
}

// TrafficLightNode dirección OPC UA del semáforo de un armario.
func TrafficLightNode(ns int, cabinetID string) string {
	return "ns=" + strconv.Itoa(ns) + ";s=" + TrafficLightName(cabinetID)
}
