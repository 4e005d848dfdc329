package domain

import "io"

type FileCommonMetadata struct {
	Filename  string
	SizeBytes int64
	MimeType  MimeType
}

// PendingFile is an uploaded file that has passed the size rules and waits
// to be turned into content.
type PendingFile struct {
	FileCommonMetadata
	Data io.Reader
}
