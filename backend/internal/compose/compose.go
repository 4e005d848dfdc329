// Package compose builds the ordered model payload for one submission.
package compose

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/itchan-dev/parley/backend/internal/extract"
	"github.com/itchan-dev/parley/shared/config"
	"github.com/itchan-dev/parley/shared/domain"
	"github.com/itchan-dev/parley/shared/logger"
	"github.com/itchan-dev/parley/shared/validation"
	"github.com/panjf2000/ants/v2"
)

// ErrEmptyPayload means there was no prompt and no file produced content.
var ErrEmptyPayload = errors.New("nothing to send")

type Composer struct {
	classifier    *validation.Classifier
	extractors    *extract.Set
	defaultPrompt string
	pool          *ants.Pool
}

func New(uploads config.Uploads, defaultPrompt string) (*Composer, error) {
	workers := uploads.ExtractWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(p any) {
		logger.Log.Error("extractor panicked", "panic", p)
	}))
	if err != nil {
		return nil, fmt.Errorf("create extraction pool: %w", err)
	}
	if defaultPrompt == "" {
		defaultPrompt = config.DefaultPrompt
	}
	return &Composer{
		classifier:    validation.NewClassifier(uploads),
		extractors:    extract.NewSet(uploads),
		defaultPrompt: defaultPrompt,
		pool:          pool,
	}, nil
}

// Close stops the extraction workers.
func (c *Composer) Close() {
	c.pool.Release()
}

// Compose orders the payload as: prompt (or the default instruction when
// only files carry content), one part per file in selection order, the
// unsupported files warning, then one part per note.
func (c *Composer) Compose(ctx context.Context, prompt string, files []*domain.PendingFile) (domain.Payload, error) {
	results := make([]extract.Result, len(files))
	var unsupported []string

	var wg sync.WaitGroup
	for i, f := range files {
		extractor, ok := c.extractors.For(c.classifier.Classify(f.MimeType))
		if !ok {
			unsupported = append(unsupported, fmt.Sprintf("%s (%s)", f.Filename, orUnknown(f.MimeType)))
			continue
		}

		wg.Add(1)
		task := func() {
			defer wg.Done()
			results[i] = extractOne(ctx, extractor, f)
		}
		if err := c.pool.Submit(task); err != nil {
			logger.Log.Warn("extraction pool refused task, running inline", "error", err)
			task()
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var fileParts domain.Payload
	var notes []domain.Note
	for _, res := range results {
		if res.Part != nil {
			fileParts = append(fileParts, *res.Part)
		}
		notes = append(notes, res.Notes...)
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" && len(fileParts) == 0 {
		return nil, ErrEmptyPayload
	}
	if prompt == "" {
		prompt = c.defaultPrompt
	}

	payload := make(domain.Payload, 0, 2+len(fileParts)+len(notes))
	payload = append(payload, domain.TextPart(prompt))
	payload = append(payload, fileParts...)
	if len(unsupported) > 0 {
		payload = append(payload, domain.TextPart(
			"⚠️ Note: The following files were ignored because they are not supported: "+strings.Join(unsupported, ", ")+"."))
	}
	for _, note := range notes {
		payload = append(payload, domain.TextPart("Note: "+note))
	}
	return payload, nil
}

func extractOne(ctx context.Context, extractor extract.Extractor, f *domain.PendingFile) extract.Result {
	if f.Data == nil {
		return extract.Result{Notes: []string{fmt.Sprintf("File \"%s\" could not be read.", f.Filename)}}
	}
	data, err := io.ReadAll(f.Data)
	if err != nil {
		logger.Log.Warn("read upload", "file", f.Filename, "error", err)
		return extract.Result{Notes: []string{fmt.Sprintf("File \"%s\" could not be read.", f.Filename)}}
	}
	return extractor.Extract(ctx, extract.Input{Name: f.Filename, MimeType: f.MimeType, Data: data})
}

func orUnknown(mimeType string) string {
	if mimeType == "" {
		return "unknown"
	}
	return mimeType
}

var errPoolClosed = errors.New("extraction pool is closed")

// Ping reports whether the composer still accepts work.
func (c *Composer) Ping(ctx context.Context) error {
	if c.pool.IsClosed() {
		return errPoolClosed
	}
	return ctx.Err()
}
