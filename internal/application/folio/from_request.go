package folio

import (
	"context"

	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	domainfolio "github.com/jhoicas/Suministros-api/internal/domain/folio"
)

// CreateFromRequest adapta POST /api/folios al caso de uso Create.
func (uc *CreateFolioUseCase) CreateFromRequest(ctx context.Context, actor entity.Actor, in dto.CreateFolioRequest) (*dto.FolioResponse, error) {
	items := make([]ItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, ItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	res, err := uc.Create(ctx, CreateFolioInput{
		Actor:      actor,
		HospitalID: in.HospitalID,
		Priority:   in.Priority,
		Metadata:   metadataFromDTO(in.Metadata),
		Notes:      in.Notes,
		Items:      items,
	})
	if err != nil {
		return nil, err
	}
	out := ToFolioResponse(res.Folio)
	for _, s := range res.Shortages {
		out.Shortages = append(out.Shortages, dto.StockShortageDTO{
			ProductID: s.ProductID,
			Requested: s.Requested,
			Available: s.Available,
		})
	}
	return out, nil
}

// TransitionFromRequest adapta POST /api/folios/:id/transition.
func (uc *TransitionUseCase) TransitionFromRequest(ctx context.Context, actor entity.Actor, folioID string, in dto.TransitionFolioRequest) (*dto.FolioResponse, error) {
	approved := make([]ApprovedQuantity, 0, len(in.Approved))
	for _, a := range in.Approved {
		approved = append(approved, ApprovedQuantity{ItemID: a.ItemID, Quantity: a.Quantity})
	}
	f, err := uc.Transition(ctx, TransitionInput{
		Actor:    actor,
		FolioID:  folioID,
		Action:   domainfolio.Action(in.Action),
		Reason:   in.Reason,
		Notes:    in.Notes,
		Approved: approved,
	})
	if err != nil {
		return nil, err
	}
	return ToFolioResponse(f), nil
}

// DeliverFromRequest adapta POST /api/folios/:id/deliver.
func (uc *DeliverFolioUseCase) DeliverFromRequest(ctx context.Context, actor entity.Actor, folioID string, in dto.DeliverFolioRequest) (*dto.FolioResponse, error) {
	received := make([]ReceivedQuantity, 0, len(in.Received))
	for _, r := range in.Received {
		received = append(received, ReceivedQuantity{ItemID: r.ItemID, Quantity: r.Quantity})
	}
	f, err := uc.Deliver(ctx, DeliverFolioInput{
		Actor:    actor,
		FolioID:  folioID,
		Notes:    in.Notes,
		Received: received,
	})
	if err != nil {
		return nil, err
	}
	return ToFolioResponse(f), nil
}

// ToFolioResponse convierte el agregado a su DTO.
func ToFolioResponse(f *entity.FolioRequest) *dto.FolioResponse {
	if f == nil {
		return nil
	}
	out := &dto.FolioResponse{
		ID:              f.ID,
		FolioNumber:     f.FolioNumber,
		RequesterID:     f.RequesterID,
		HospitalID:      f.HospitalID,
		Status:          f.Status,
		Priority:        f.Priority,
		Metadata:        metadataToDTO(f.Metadata),
		Notes:           f.Notes,
		RejectedBy:      f.RejectedBy,
		RejectionReason: f.RejectionReason,
		Items:           make([]dto.FolioItemResponse, 0, len(f.Items)),
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
	for _, it := range f.Items {
		out.Items = append(out.Items, dto.FolioItemResponse{
			ID:                it.ID,
			ProductID:         it.ProductID,
			QuantityRequested: it.QuantityRequested,
			QuantityApproved:  it.QuantityApproved,
			QuantityReceived:  it.QuantityReceived,
		})
	}
	return out
}

// ToHistoryResponse convierte la bitácora a DTOs.
func ToHistoryResponse(entries []*entity.FolioHistoryEntry) []dto.FolioHistoryResponse {
	out := make([]dto.FolioHistoryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.FolioHistoryResponse{
			ID:             e.ID,
			ActorID:        e.ActorID,
			Action:         e.Action,
			PreviousStatus: e.PreviousStatus,
			NewStatus:      e.NewStatus,
			Notes:          e.Notes,
			CreatedAt:      e.CreatedAt,
		})
	}
	return out
}

func metadataFromDTO(m dto.FolioMetadataDTO) entity.FolioMetadata {
	return entity.FolioMetadata{
		PatientName:          m.PatientName,
		PatientAge:           m.PatientAge,
		PatientGender:        m.PatientGender,
		PatientNSS:           m.PatientNSS,
		SurgeryType:          m.SurgeryType,
		IsEmergency:          m.IsEmergency,
		AnesthesiaType:       m.AnesthesiaType,
		SurgeonName:          m.SurgeonName,
		AnesthesiologistName: m.AnesthesiologistName,
		ProcedureTime:        m.ProcedureTime,
	}
}

func metadataToDTO(m entity.FolioMetadata) dto.FolioMetadataDTO {
	return dto.FolioMetadataDTO{
		PatientName:          m.PatientName,
		PatientAge:           m.PatientAge,
		PatientGender:        m.PatientGender,
		PatientNSS:           m.PatientNSS,
		SurgeryType:          m.SurgeryType,
		IsEmergency:          m.IsEmergency,
		AnesthesiaType:       m.AnesthesiaType,
		SurgeonName:          m.SurgeonName,
		AnesthesiologistName: m.AnesthesiologistName,
		ProcedureTime:        m.ProcedureTime,
	}
}
