package dto

// FallEventResponse represents a successful fall report ingestion
type FallEventResponse struct {
	Status   string `json:"status" example:"success"`
	Message  string `json:"message" example:"Event logged successfully"`
	SMSAlert string `json:"sms_alert" example:"Yes"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Status  string `json:"status" example:"error"`
	Message string `json:"message" example:"failed to write fallback file"`
}

// StatusResponse represents the service status
type StatusResponse struct {
	Status             string  `json:"status" example:"online"`
	Time               float64 `json:"time" example:"1740803400.123"`
	Timezone           string  `json:"timezone" example:"Asia/Kolkata"`
	RecordsCount       int64   `json:"records_count" example:"42"`
	Database           string  `json:"database" example:"primary"`
	PrimaryStatus      string  `json:"primary_status" example:"connected"`
	NotificationStatus string  `json:"notification_status" example:"connected"`
}

// ConfigResponse tells a device where to send its reports
type ConfigResponse struct {
	ServerIP    string `json:"server_ip" example:"192.168.1.20"`
	APIEndpoint string `json:"api_endpoint" example:"http://192.168.1.20:5000/fall_event"`
}

// HealthResponse represents the liveness probe response
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
