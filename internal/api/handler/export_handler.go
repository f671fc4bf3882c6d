package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"loanbook/internal/export"
	"loanbook/internal/pkg/apperrors"
)

type ExportHandler struct {
	service export.ExportService
	logger  *slog.Logger
}

func NewExportHandler(s export.ExportService, l *slog.Logger) *ExportHandler {
	if s == nil {
		panic("export service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &ExportHandler{
		service: s,
		logger:  l.With("component", "ExportHandler"),
	}
}

func (h *ExportHandler) sendFile(w http.ResponseWriter, r *http.Request, file *export.File) {
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Data); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to write export body", slog.Any("error", err))
	}
}

// ExportLoans handles GET /exports/loans
func (h *ExportHandler) ExportLoans(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, err)
		return
	}

	file, err := h.service.ExportLoans(r.Context(), format)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to export loans", slog.Any("error", err))
		respondError(w, err)
		return
	}
	h.sendFile(w, r, file)
}

// ExportProfit handles GET /exports/profit
func (h *ExportHandler) ExportProfit(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, err)
		return
	}

	from, to, err := parseDateRange(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	file, err := h.service.ExportProfit(r.Context(), format, from, to)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to export profit report", slog.Any("error", err))
		respondError(w, err)
		return
	}
	h.sendFile(w, r, file)
}

// ExportExpense handles GET /exports/expense
func (h *ExportHandler) ExportExpense(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, err)
		return
	}

	from, to, err := parseDateRange(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	file, err := h.service.ExportExpense(r.Context(), format, from, to)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to export expense report", slog.Any("error", err))
		respondError(w, err)
		return
	}
	h.sendFile(w, r, file)
}
