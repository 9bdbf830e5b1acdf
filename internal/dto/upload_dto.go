package dto

import "github.com/edubridge-kr/lms-api/internal/models"

// UploadResponse describes a stored attachment.
type UploadResponse struct {
	URL       string `json:"url"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// NewUploadResponse converts a model into a DTO.
func NewUploadResponse(model models.Attachment) UploadResponse {
	return UploadResponse{
		URL:       model.URL,
		FileName:  model.FileName,
		MimeType:  model.MimeType,
		SizeBytes: model.SizeBytes,
		Checksum:  model.Checksum,
	}
}
