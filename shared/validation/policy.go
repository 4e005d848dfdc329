package validation

import (
	"fmt"
	"strings"

	"github.com/itchan-dev/parley/shared/config"
)

// Verdict is the outcome of checking one file against the upload rules.
type Verdict struct {
	Accepted bool
	Kind     Kind
	Reason   string
}

// Policy decides whether a file may join a batch. Rules are checked in
// order type, per-file size, cumulative size and the first failure wins.
type Policy struct {
	classifier   *Classifier
	maxFileSize  int64
	maxTotalSize int64
}

func NewPolicy(cfg config.Uploads) *Policy {
	return &Policy{
		classifier:   NewClassifier(cfg),
		maxFileSize:  cfg.MaxFileSizeBytes,
		maxTotalSize: cfg.MaxTotalSizeBytes,
	}
}

func (p *Policy) Classifier() *Classifier { return p.classifier }
func (p *Policy) MaxFileSize() int64      { return p.maxFileSize }
func (p *Policy) MaxTotalSize() int64     { return p.maxTotalSize }

// Evaluate checks a file of the given type and size, queued is the byte
// total already accepted into the batch.
func (p *Policy) Evaluate(mimeType string, size, queued int64) Verdict {
	kind := p.classifier.Classify(mimeType)
	if kind == KindUnsupported {
		shown := strings.TrimSpace(mimeType)
		if shown == "" {
			shown = "unknown"
		}
		return Verdict{Kind: kind, Reason: "Unsupported type: " + shown}
	}
	if size > p.maxFileSize {
		return Verdict{Kind: kind, Reason: fmt.Sprintf("Too large (> %s)", FormatSizeMB(p.maxFileSize))}
	}
	if queued+size > p.maxTotalSize {
		return Verdict{Kind: kind, Reason: fmt.Sprintf("Total size would exceed %s", FormatSizeMB(p.maxTotalSize))}
	}
	return Verdict{Accepted: true, Kind: kind}
}

// CheckSizes applies only the size rules, in order, to an upload that
// reached the server. Type is left to the composer which turns unsupported
// files into a warning instead of refusing the request.
func (p *Policy) CheckSizes(names []string, sizes []int64) error {
	var total int64
	for i, size := range sizes {
		if size > p.maxFileSize {
			return fmt.Errorf("%w: %q is larger than %s", ErrFileTooLarge, names[i], FormatSizeMB(p.maxFileSize))
		}
		total += size
		if total > p.maxTotalSize {
			return fmt.Errorf("%w: files exceed %s together", ErrBatchTooLarge, FormatSizeMB(p.maxTotalSize))
		}
	}
	return nil
}
