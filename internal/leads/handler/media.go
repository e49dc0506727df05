package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/transport"
	"leadportal_backend/platform/apperr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MaxMediaFiles bounds the attachments of a single submission.
const MaxMediaFiles = 2

const formFieldMedia = "media"

// MediaUploader stores one attachment and returns its public URL.
type MediaUploader interface {
	UploadMedia(ctx context.Context, folder, fileName, contentType string, reader io.Reader, size int64) (string, error)
}

// bindCreate accepts either a JSON body or a multipart form whose responses
// field holds a JSON array or one JSON object per value.
func (h *Handler) bindCreate(c *gin.Context) (transport.CreateLeadRequest, []*multipart.FileHeader, error) {
	var req transport.CreateLeadRequest
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBindJSON(&req); err != nil {
			return req, nil, apperr.Validation(msgInvalidRequest)
		}
		return req, nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return req, nil, apperr.Validation(msgInvalidRequest)
	}

	if raw := firstValue(form, "campaignId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return req, nil, apperr.Validation("invalid campaignId")
		}
		req.CampaignID = id
	}
	req.Remark = firstValue(form, "remark")
	if tz := firstValue(form, "timeZone"); tz != "" {
		req.TimeZone = &tz
	}

	req.Responses, err = parseFormResponses(form.Value["responses"])
	if err != nil {
		return req, nil, err
	}

	files := form.File[formFieldMedia]
	if len(files) > MaxMediaFiles {
		return req, nil, apperr.Validation(fmt.Sprintf("at most %d media files are allowed", MaxMediaFiles))
	}
	return req, files, nil
}

func parseFormResponses(values []string) ([]transport.ResponseRequest, error) {
	out := make([]transport.ResponseRequest, 0, len(values))
	for _, raw := range values {
		raw = strings.TrimSpace(raw)
		if strings.HasPrefix(raw, "[") {
			var batch []transport.ResponseRequest
			if err := json.Unmarshal([]byte(raw), &batch); err != nil {
				return nil, apperr.Validation("invalid responses format")
			}
			out = append(out, batch...)
			continue
		}
		var one transport.ResponseRequest
		if err := json.Unmarshal([]byte(raw), &one); err != nil {
			return nil, apperr.Validation("invalid responses format")
		}
		out = append(out, one)
	}
	return out, nil
}

func (h *Handler) uploadMedia(c *gin.Context, submitterID uuid.UUID, files []*multipart.FileHeader) ([]domain.Media, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if h.uploader == nil {
		return nil, apperr.Validation("media uploads are not configured")
	}

	folder := "submissions/" + submitterID.String()
	media := make([]domain.Media, 0, len(files))
	for _, fh := range files {
		contentType := fh.Header.Get("Content-Type")
		url, err := h.uploadOne(c.Request.Context(), folder, fh, contentType)
		if err != nil {
			return nil, err
		}
		media = append(media, domain.Media{Type: domain.MediaTypeFor(contentType), URL: url})
	}
	return media, nil
}

func (h *Handler) uploadOne(ctx context.Context, folder string, fh *multipart.FileHeader, contentType string) (string, error) {
	file, err := fh.Open()
	if err != nil {
		return "", apperr.Validation("unreadable media file")
	}
	defer file.Close()
	return h.uploader.UploadMedia(ctx, folder, fh.Filename, contentType, file, fh.Size)
}

func firstValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}
