package dto

// ItemCountResponse GET /opcua/get-item-count.
type ItemCountResponse struct {
	ItemCount int64 `json:"item_count"`
}

// TrafficLightResponse GET /opcua/get-traffic-light.
type TrafficLightResponse struct {
	TrafficLightStatus string `json:"traffic_light_status"`
}

// HMIStatusResponse GET /opcua/get-hmi-status.
type HMIStatusResponse struct {
	HMIStatus string `json:"hmi_status"`
}

// HMICommandResponse GET /opcua/get-hmi-command.
type HMICommandResponse struct {
	HMICommand string `json:"hmi_command"`
}

// NodeRequest body de /opcua/read, /opcua/write y /opcua/update.
// Value se decodifica con json.Number para conservar enteros.
type NodeRequest struct {
	NodeID string `json:"node_id"`
	Value  any    `json:"value,omitempty"`
}

// NodeValueResponse valor leído de un nodo del PLC.
type NodeValueResponse struct {
	NodeID string `json:"node_id"`
	Value  any    `json:"value"`
}

// TrafficLightControlRequest body de POST /traffic-light. cabinet_id admite número o texto.
type TrafficLightControlRequest struct {
	CabinetID any    `json:"cabinet_id"`
	Status    string `json:"status"`
}

// SystemAlertRequest body de POST /error.
type SystemAlertRequest struct {
	ErrorMessage string `json:"error_message"`
}

// BackupResponse resultado de POST /backup-now.
type BackupResponse struct {
	Message   string   `json:"message"`
	File      string   `json:"file"`
	Tables    []string `json:"tables"`
	SizeBytes int64    `json:"size_bytes"`
}
