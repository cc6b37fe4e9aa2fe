package storage

import (
	"io"
)

type FileInfo struct {
	Filename    string
	ContentType string
	Size        int64
}

// Storage keeps image blobs that have not been submitted yet.
type Storage interface {
	SaveFile(r io.Reader, info FileInfo) (string, error)
	OpenFile(name string) (io.ReadSeekCloser, error)
	DeleteFile(name string) error
}
