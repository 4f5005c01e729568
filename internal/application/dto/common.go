package dto

// Límites de paginación de folios, movimientos, traspasos y catálogos.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// Response arma los metadatos de la página a partir de las filas devueltas.
// Una página llena indica que puede haber más: el cliente pide NextOffset.
func (p PageRequest) Response(returned int) PageResponse {
	out := PageResponse{Limit: p.Limit, Offset: p.Offset}
	if p.Limit > 0 && returned >= p.Limit {
		out.HasMore = true
		out.NextOffset = p.Offset + returned
	}
	return out
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	HasMore    bool `json:"has_more"`
	NextOffset int  `json:"next_offset,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
