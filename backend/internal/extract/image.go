package extract

import (
	"context"

	"github.com/itchan-dev/parley/shared/domain"
)

// Image passes the bytes through untouched with their media type.
type Image struct{}

func (Image) Extract(_ context.Context, in Input) Result {
	part := domain.FilePart(in.Data, in.MimeType)
	return Result{Part: &part}
}
