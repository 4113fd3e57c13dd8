package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"splitshare/internal/calculator"
	"splitshare/internal/middleware"
	"splitshare/internal/models"
	"splitshare/internal/service"
)

// maxUploadBytes caps receipt image uploads at 5MB.
const maxUploadBytes = 5 << 20

type userPercentage struct {
	UserID     string          `json:"userId"`
	Percentage decimal.Decimal `json:"percentage"`
}

type splitPercentageRequest struct {
	Splits []userPercentage `json:"splits"`
}

type splitItemsRequest struct {
	ItemSplits []struct {
		ItemID          string           `json:"itemId"`
		UserPercentages []userPercentage `json:"userPercentages"`
	} `json:"itemSplits"`
}

type splitAssignRequest struct {
	UserItems []struct {
		UserID  string   `json:"userId"`
		ItemIDs []string `json:"itemIds"`
	} `json:"userItems"`
}

func (s *Server) handleSaveReceipt(w http.ResponseWriter, r *http.Request) {
	var receipt models.Receipt
	if err := decodeJSON(r, &receipt); err != nil {
		writeError(w, err)
		return
	}

	saved, err := s.receipts.SaveReceipt(r.Context(), middleware.GetUserID(r.Context()), &receipt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// handleUploadReceipt accepts a multipart image and returns the vision
// model's draft receipt. Nothing is persisted; the client reviews the
// draft and saves it through the regular save endpoint.
func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	if s.extractor == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "receipt extraction is not configured"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "image must be 5MB or smaller"})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, validationErrorf("no image file provided"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, validationErrorf("only image uploads are accepted"))
		return
	}

	image, err := io.ReadAll(file)
	if err != nil {
		writeError(w, err)
		return
	}

	draft, err := s.extractor.Extract(r.Context(), image, contentType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.receipts.GetReceipt(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "receiptID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	if err := s.receipts.DeleteReceipt(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "receiptID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSettleReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.receipts.SettleReceipt(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "receiptID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleSplitByPercentage(w http.ResponseWriter, r *http.Request) {
	var req splitPercentageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	shares := make([]calculator.PercentageShare, len(req.Splits))
	for i, sp := range req.Splits {
		shares[i] = calculator.PercentageShare{UserID: sp.UserID, Percentage: sp.Percentage}
	}

	receipt, err := s.splits.SplitByPercentage(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "receiptID"), shares)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleSplitByItemPercentage(w http.ResponseWriter, r *http.Request) {
	var req splitItemsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	itemShares := make([]calculator.ItemPercentages, len(req.ItemSplits))
	for i, is := range req.ItemSplits {
		shares := make([]calculator.PercentageShare, len(is.UserPercentages))
		for j, up := range is.UserPercentages {
			shares[j] = calculator.PercentageShare{UserID: up.UserID, Percentage: up.Percentage}
		}
		itemShares[i] = calculator.ItemPercentages{ItemID: is.ItemID, Shares: shares}
	}

	receipt, err := s.splits.SplitByItemPercentage(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "receiptID"), itemShares)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleSplitByItemAssignment(w http.ResponseWriter, r *http.Request) {
	var req splitAssignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	assignments := make([]calculator.MemberItems, len(req.UserItems))
	for i, ui := range req.UserItems {
		assignments[i] = calculator.MemberItems{UserID: ui.UserID, ItemIDs: ui.ItemIDs}
	}

	receipt, err := s.splits.SplitByItemAssignment(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "receiptID"), assignments)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func validationErrorf(msg string) error {
	return fmt.Errorf("%w: %s", service.ErrValidation, msg)
}
