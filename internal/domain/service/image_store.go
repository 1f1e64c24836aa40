package service

import (
	"context"
)

// ImageStore keeps uploaded report pictures.
type ImageStore interface {
	// Store writes the image under name and returns the reference saved on the report.
	Store(ctx context.Context, name, contentType string, data []byte) (string, error)
	// Remove deletes a previously stored image by its reference.
	Remove(ctx context.Context, ref string) error
}
