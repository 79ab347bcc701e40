package chat

import (
	"context"
	"time"

	"github.com/emsi-platform/studyhub/internal/apperr"
	"github.com/emsi-platform/studyhub/internal/models"
)

const DefaultSignedURLTTL = time.Hour

type FileFinder interface {
	// FindFileByName returns nil, nil when no file matches.
	FindFileByName(ctx context.Context, ownerID, name string) (*models.FileRecord, error)
}

type URLSigner interface {
	SignedDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Resolver turns a file name mentioned in chat into a downloadable reference.
type Resolver struct {
	files  FileFinder
	signer URLSigner
	ttl    time.Duration
}

func NewResolver(files FileFinder, signer URLSigner, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = DefaultSignedURLTTL
	}
	return &Resolver{files: files, signer: signer, ttl: ttl}
}

type Resolved struct {
	File *models.FileRecord
	URL  string
}

// Resolve looks name up for the caller in ctx. A nil result with a nil error
// means no such file, which callers treat as ordinary chat.
func (r *Resolver) Resolve(ctx context.Context, name string) (*Resolved, error) {
	f, err := r.files.FindFileByName(ctx, UserFromContext(ctx), name)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalid, err, "file lookup failed")
	}
	if f == nil {
		return nil, nil
	}

	url, err := r.signer.SignedDownloadURL(ctx, f.FilePath, r.ttl)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalid, err, "could not create download URL")
	}
	return &Resolved{File: f, URL: url}, nil
}
