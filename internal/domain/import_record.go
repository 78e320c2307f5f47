package domain

import "time"

type ImportStatus string

const (
	StatusPendingAI  ImportStatus = "PENDING_AI"
	StatusReadyForAI ImportStatus = "READY_FOR_AI"
	StatusProcessing ImportStatus = "PROCESSING"
	StatusCompleted  ImportStatus = "COMPLETED"
	StatusError      ImportStatus = "ERROR"
)

// PendingStatuses is the set of statuses picked up by a generation run.
var PendingStatuses = []ImportStatus{StatusPendingAI, StatusReadyForAI}

func (s ImportStatus) IsPending() bool {
	for _, p := range PendingStatuses {
		if s == p {
			return true
		}
	}
	return false
}

func (s ImportStatus) Valid() bool {
	switch s {
	case StatusPendingAI, StatusReadyForAI, StatusProcessing, StatusCompleted, StatusError:
		return true
	default:
		return false
	}
}

const (
	SourceGoogleDrive = "google_drive"
	SourceNotion      = "notion"
)

// MimeTypeNotionPage is assigned to imported Notion pages, which have no MIME type upstream.
const MimeTypeNotionPage = "application/vnd.notion.page"

type ImportRecord struct {
	ID           string       `db:"id"            json:"id"`
	FileID       string       `db:"file_id"       json:"file_id"`
	FileName     string       `db:"file_name"     json:"file_name"`
	MimeType     string       `db:"mime_type"     json:"mime_type"`
	Source       string       `db:"source"        json:"source"`
	OwnerUserID  string       `db:"owner_user_id" json:"owner_user_id"`
	AccessToken  string       `db:"access_token"  json:"-"`
	Status       ImportStatus `db:"status"        json:"status"`
	Timestamp    time.Time    `db:"imported_at"   json:"timestamp"`
	ProcessedAt  *time.Time   `db:"processed_at"  json:"processed_at,omitempty"`
	CompletedAt  *time.Time   `db:"completed_at"  json:"completed_at,omitempty"`
	ErrorMessage string       `db:"error_message" json:"error,omitempty"`
}

// Descriptor is what the extractor needs to fetch one file.
func (r *ImportRecord) Descriptor() FileDescriptor {
	return FileDescriptor{
		FileID:      r.FileID,
		Name:        r.FileName,
		MimeType:    r.MimeType,
		Source:      r.Source,
		AccessToken: r.AccessToken,
	}
}

type FileDescriptor struct {
	FileID      string
	Name        string
	MimeType    string
	Source      string
	AccessToken string
}

// SourceFile is a file or page listed by an upstream content source.
type SourceFile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mime_type"`
	URL          string    `json:"url,omitempty"`
	ModifiedTime time.Time `json:"modified_time,omitzero"`
}

const (
	MimeTypePDF              = "application/pdf"
	MimeTypePlainText        = "text/plain"
	MimeTypeMarkdown         = "text/markdown"
	MimeTypeGoogleDocument   = "application/vnd.google-apps.document"
	MimeTypeGoogleSlides     = "application/vnd.google-apps.presentation"
	MimeTypeGoogleFolder     = "application/vnd.google-apps.folder"
	MimeTypeWordDocument     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeTypePowerPointSlides = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// ImportableMimeTypes lists the Drive file types a folder import picks up.
var ImportableMimeTypes = []string{
	MimeTypePDF,
	MimeTypePlainText,
	MimeTypeMarkdown,
	MimeTypeGoogleDocument,
	MimeTypeGoogleSlides,
	MimeTypeWordDocument,
	MimeTypePowerPointSlides,
}

func IsImportableMimeType(mimeType string) bool {
	for _, m := range ImportableMimeTypes {
		if m == mimeType {
			return true
		}
	}
	return false
}
