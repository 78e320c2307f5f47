package v1

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kurochkinivan/onboarding_ai/internal/domain"
)

type ImportsHandler struct {
	log      *slog.Logger
	importer Importer
}

func NewImportsHandler(log *slog.Logger, importer Importer) *ImportsHandler {
	return &ImportsHandler{
		log:      log,
		importer: importer,
	}
}

type CreateImportRequest struct {
	UserID      string `json:"userId"      validate:"required"`
	FileID      string `json:"fileId"      validate:"required"`
	FileName    string `json:"fileName"`
	MimeType    string `json:"mimeType"`
	AccessToken string `json:"accessToken" validate:"required_unless=Source notion"`
	Source      string `json:"source"      validate:"omitempty,oneof=google_drive notion"`
}

func (h *ImportsHandler) CreateImport(w http.ResponseWriter, r *http.Request) {
	var req CreateImportRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	record := &domain.ImportRecord{
		FileID:      req.FileID,
		FileName:    req.FileName,
		MimeType:    req.MimeType,
		Source:      req.Source,
		OwnerUserID: req.UserID,
		AccessToken: req.AccessToken,
	}

	if err := h.importer.ImportMetadata(r.Context(), record); err != nil {
		logError(r, h.log, "failed to save import", err)
		writeError(w, http.StatusInternalServerError, "Internal server error. Failed to save to DB.", nil)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{
		Success: true,
		Message: fmt.Sprintf("File metadata for %s saved.", req.FileName),
	})
}

type GetImportsResponse struct {
	Imports []*domain.ImportRecord `json:"imports"`
}

func (h *ImportsHandler) GetImports(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameter: user_id", nil)
		return
	}

	records, err := h.importer.UserImports(r.Context(), userID)
	if err != nil {
		logError(r, h.log, "failed to get imports", err)
		writeError(w, http.StatusInternalServerError, "Failed to get imports", err)
		return
	}

	writeJSON(w, http.StatusOK, GetImportsResponse{Imports: records})
}

type PutTokensRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken" validate:"required_without=AccessToken"`
}

func (h *ImportsHandler) PutTokens(w http.ResponseWriter, r *http.Request) {
	var req PutTokensRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	tokens := &domain.UserTokens{
		UserID:            chi.URLParam(r, "user_id"),
		DriveAccessToken:  req.AccessToken,
		DriveRefreshToken: req.RefreshToken,
	}

	if err := h.importer.RegisterTokens(r.Context(), tokens); err != nil {
		logError(r, h.log, "failed to register tokens", err)
		writeError(w, http.StatusInternalServerError, "Failed to save tokens", err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Tokens saved."})
}

type importedItems struct {
	Count int                    `json:"count"`
	Items []*domain.ImportRecord `json:"items"`
}

type DriveImportRequest struct {
	UserID      string `json:"userId"      validate:"required"`
	AccessToken string `json:"accessToken" validate:"required"`
	FolderID    string `json:"folderId"`
}

func (h *ImportsHandler) ImportDrive(w http.ResponseWriter, r *http.Request) {
	var req DriveImportRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	records, err := h.importer.ImportDriveFolder(r.Context(), req.UserID, req.AccessToken, req.FolderID)
	if err != nil {
		logError(r, h.log, "google drive import failed", err)
		writeError(w, http.StatusInternalServerError, "Failed to import from Google Drive", err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{
		Success: true,
		Message: fmt.Sprintf("Successfully imported %d files from Google Drive", len(records)),
		Data:    importedItems{Count: len(records), Items: records},
	})
}

func (h *ImportsHandler) GetDriveFolders(w http.ResponseWriter, r *http.Request) {
	accessToken := r.URL.Query().Get("accessToken")
	if accessToken == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameter: accessToken", nil)
		return
	}

	folders, err := h.importer.DriveFolders(r.Context(), accessToken)
	if err != nil {
		logError(r, h.log, "google drive folders fetch failed", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch Google Drive folders", err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true, Data: folders})
}

type NotionImportRequest struct {
	UserID string `json:"userId" validate:"required"`
}

func (h *ImportsHandler) ImportNotion(w http.ResponseWriter, r *http.Request) {
	var req NotionImportRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	records, err := h.importer.ImportNotionPages(r.Context(), req.UserID)
	if errors.Is(err, domain.ErrNotionNotConfigured) {
		writeError(w, http.StatusServiceUnavailable, "Notion integration token not configured.", nil)
		return
	}
	if err != nil {
		logError(r, h.log, "notion import failed", err)
		writeError(w, http.StatusInternalServerError, "Failed to import from Notion", err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{
		Success: true,
		Message: fmt.Sprintf("Successfully imported %d items from Notion", len(records)),
		Data:    importedItems{Count: len(records), Items: records},
	})
}

type NotionStatusResponse struct {
	Connected bool `json:"connected"`
}

func (h *ImportsHandler) GetNotionStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, NotionStatusResponse{Connected: h.importer.NotionConfigured()})
}
