package chat

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/itchan-dev/parley/shared/logger"
	"github.com/itchan-dev/parley/shared/validation"
)

// maxReasonsShown caps the reasons listed in a skip summary.
const maxReasonsShown = 3

// Attachment is a selected file waiting to be sent.
type Attachment struct {
	ID      string
	File    File
	Kind    validation.Kind
	Preview *PreviewRef // images only
}

type Skip struct {
	Name   string
	Reason string
}

type Result struct {
	Accepted []*Attachment
	Skipped  []Skip
}

// Summary is the message shown to the user when files were skipped, "" otherwise.
func (r Result) Summary() string {
	if len(r.Skipped) == 0 {
		return ""
	}
	names := make([]string, len(r.Skipped))
	reasons := make([]string, 0, maxReasonsShown)
	for i, s := range r.Skipped {
		names[i] = s.Name
		if len(reasons) < maxReasonsShown && !slices.Contains(reasons, s.Reason) {
			reasons = append(reasons, s.Reason)
		}
	}
	return "Some files were skipped:\n- " + strings.Join(names, "\n- ") +
		"\n\nReasons (first few):\n" + strings.Join(reasons, "\n")
}

// Intake applies the upload policy to newly selected files.
type Intake struct {
	policy   *validation.Policy
	previews *Previews
}

func NewIntake(policy *validation.Policy, previews *Previews) *Intake {
	return &Intake{policy: policy, previews: previews}
}

// Add checks files in order against the policy. The size budget is shared
// with the pending attachments, so the first files that fit win.
func (in *Intake) Add(pending []*Attachment, files []File) Result {
	var queued int64
	for _, a := range pending {
		queued += a.File.Size()
	}

	var res Result
	for _, f := range files {
		verdict := in.policy.Evaluate(f.MimeType(), f.Size(), queued)
		if !verdict.Accepted {
			res.Skipped = append(res.Skipped, Skip{Name: f.Name(), Reason: verdict.Reason})
			continue
		}
		queued += f.Size()

		a := &Attachment{ID: uuid.NewString(), File: f, Kind: verdict.Kind}
		if verdict.Kind == validation.KindImage && in.previews != nil {
			preview, err := in.previews.Acquire(f)
			if err != nil {
				// the file is still sent, only the thumbnail is missing
				logger.Log.Warn("preview failed", "file", f.Name(), "error", err)
			}
			a.Preview = preview
		}
		res.Accepted = append(res.Accepted, a)
	}
	return res
}
