package handlers

import (
	"fmt"
	"net/http"

	"worklog-backend/internal/services"
	"worklog-backend/pkg/utils"
)

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: service}
}

// ExportWorkLogPDF streams the printable PDF for one work log
func (h *ReportHandler) ExportWorkLogPDF(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, err := workLogID(r)
	if err != nil {
		utils.Error(w, err)
		return
	}

	pdf, err := h.Service.WorkLogPDF(r.Context(), actor, id)
	if err != nil {
		utils.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="work-log-%d.pdf"`, id))
	w.Write(pdf)
}
