package dto

// HospitalStatsDTO resumen de un hospital para el tablero de gerencia.
type HospitalStatsDTO struct {
	HospitalID       string  `json:"hospital_id"`
	HospitalName     string  `json:"hospital_name"`
	Address          string  `json:"address"`
	TotalFolios      int64   `json:"total_folios"`
	InProcess        int64   `json:"in_process"` // pendiente, aprobado_lider, aprobado_supervisor
	Delivered        int64   `json:"delivered"`
	DeliveredPartial int64   `json:"delivered_partial"`
	Rejected         int64   `json:"rejected"`
	LowStockItems    int64   `json:"low_stock_items"`
	DeliveryRate     float64 `json:"delivery_rate"` // % de folios entregados completos
}

// HospitalStatsResponse respuesta de GET /api/stats/hospitals.
type HospitalStatsResponse struct {
	Total     int                `json:"total"`
	Hospitals []HospitalStatsDTO `json:"hospitals"`
}
