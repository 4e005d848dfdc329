package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/itchan-dev/parley/backend/internal/service"
	"github.com/itchan-dev/parley/shared/api"
	"github.com/itchan-dev/parley/shared/domain"
	internal_errors "github.com/itchan-dev/parley/shared/errors"
	"github.com/itchan-dev/parley/shared/logger"
	"github.com/itchan-dev/parley/shared/utils"
	"github.com/itchan-dev/parley/shared/validation"
)

// parseChatRequest reads the multipart chat form. The cleanup func closes
// uploaded files and removes any temp files of the form.
func (h *Handler) parseChatRequest(w http.ResponseWriter, r *http.Request) (in service.ChatInput, cleanup func(), err error) {
	cleanup = func() {}

	maxRequestSize := validation.CalculateMaxRequestSize(h.policy.MaxTotalSize())
	if err = validation.ValidateAndParseMultipart(r, w, maxRequestSize); err != nil {
		if errors.Is(err, validation.ErrPayloadTooLarge) {
			err = internal_errors.New(http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Total size would exceed %s", validation.FormatSizeMB(h.policy.MaxTotalSize())))
			return
		}
		logger.Log.Debug("parse chat form", "error", err)
		err = internal_errors.New(http.StatusBadRequest, "Body is not a valid multipart form")
		return
	}
	form := r.MultipartForm

	headers := form.File[api.ChatFieldFiles]
	names := make([]string, len(headers))
	sizes := make([]int64, len(headers))
	for i, fh := range headers {
		names[i], sizes[i] = fh.Filename, fh.Size
	}
	if err = h.policy.CheckSizes(names, sizes); err != nil {
		form.RemoveAll()
		err = internal_errors.New(http.StatusRequestEntityTooLarge, sizeMessage(err, h.policy))
		return
	}

	var opened []multipart.File
	cleanup = func() {
		for _, f := range opened {
			f.Close()
		}
		form.RemoveAll()
	}

	for _, fh := range headers {
		mimeType := validation.DetectFileHeaderMimeType(fh)
		file, openErr := fh.Open()
		if openErr != nil {
			logger.Log.Error("open uploaded file", "file", fh.Filename, "error", openErr)
			err = openErr
			return
		}
		opened = append(opened, file)
		in.Files = append(in.Files, &domain.PendingFile{
			FileCommonMetadata: domain.FileCommonMetadata{Filename: fh.Filename, SizeBytes: fh.Size, MimeType: mimeType},
			Data:               file,
		})
	}

	in.Prompt = r.FormValue(api.ChatFieldPrompt)

	if raw := r.FormValue(api.ChatFieldHistory); raw != "" && h.cfg.Public.Chat.IncludeHistory {
		in.History, err = decodeHistory(raw)
	}
	return
}

var errBadHistory = internal_errors.New(http.StatusBadRequest, "History is invalid")

func decodeHistory(raw string) ([]domain.Message, error) {
	var history []domain.Message
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		logger.Log.Debug("decode history", "error", err)
		return nil, errBadHistory
	}
	for i := range history {
		if err := utils.Validate(&history[i]); err != nil {
			logger.Log.Debug("validate history", "index", i, "error", err)
			return nil, errBadHistory
		}
	}
	return history, nil
}

func sizeMessage(err error, policy *validation.Policy) string {
	if errors.Is(err, validation.ErrFileTooLarge) {
		return fmt.Sprintf("Too large (> %s)", validation.FormatSizeMB(policy.MaxFileSize()))
	}
	return fmt.Sprintf("Total size would exceed %s", validation.FormatSizeMB(policy.MaxTotalSize()))
}
