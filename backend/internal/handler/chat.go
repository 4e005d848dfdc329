package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/itchan-dev/parley/backend/internal/service"
	"github.com/itchan-dev/parley/shared/logger"
	"github.com/itchan-dev/parley/shared/middleware"
	"github.com/itchan-dev/parley/shared/utils"
)

// Chat streams the model answer as plain text chunks. Errors found before
// the first chunk get the JSON envelope. A failure after that aborts the
// connection so the client never takes a cut answer for a complete one.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	in, cleanup, err := h.parseChatRequest(w, r)
	defer cleanup()
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	stream, err := h.chat.Stream(r.Context(), in)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	defer stream.Close()

	ok := stream.Next()
	if !ok {
		if err := stream.Err(); err != nil {
			if r.Context().Err() != nil {
				logger.Log.Info("client left before first chunk")
				return
			}
			utils.WriteErrorAndStatusCode(w, service.ProviderFailed(err))
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	var written int
	for ; ok; ok = stream.Next() {
		n, err := io.WriteString(w, stream.Text())
		written += n
		if err != nil {
			logger.Log.Info("client went away mid-stream", "written", written, "error", err)
			return
		}
		if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
			logger.Log.Info("flush failed", "error", err)
			return
		}
	}

	if err := stream.Err(); err != nil {
		if r.Context().Err() != nil {
			return
		}
		user := middleware.GetUserFromContext(r)
		var email string
		if user != nil {
			email = user.Email
		}
		logger.Log.Error("model stream failed mid-response", "user", email, "written", written, "error", err)
		panic(http.ErrAbortHandler)
	}
}
