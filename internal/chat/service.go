// Package chat answers chat turns, pulling uploaded documents into the prompt
// when the latest message names one.
package chat

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/emsi-platform/studyhub/internal/apperr"
	"github.com/emsi-platform/studyhub/internal/extract"
	"github.com/emsi-platform/studyhub/internal/fetch"
	"github.com/emsi-platform/studyhub/internal/metrics"
	"github.com/emsi-platform/studyhub/internal/models"
)

const (
	DefaultCompletionTimeout = 60 * time.Second

	routeGeneric  = "generic"
	routeDocument = "document"
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type Completer interface {
	Complete(ctx context.Context, msgs []models.ChatMessage) (string, error)
}

type Deps struct {
	Files             FileFinder
	Signer            URLSigner
	Fetcher           Fetcher
	Completer         Completer
	Limiter           Limiter
	Metrics           *metrics.Metrics
	Logger            *zap.Logger
	SignedURLTTL      time.Duration
	CompletionTimeout time.Duration
}

type Service struct {
	resolver  *Resolver
	fetcher   Fetcher
	completer Completer
	limiter   Limiter
	metrics   *metrics.Metrics
	logger    *zap.Logger
	timeout   time.Duration
}

func NewService(d Deps) *Service {
	s := &Service{
		resolver:  NewResolver(d.Files, d.Signer, d.SignedURLTTL),
		fetcher:   d.Fetcher,
		completer: d.Completer,
		limiter:   d.Limiter,
		metrics:   d.Metrics,
		logger:    d.Logger,
		timeout:   d.CompletionTimeout,
	}
	if s.limiter == nil {
		s.limiter = noLimit{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.timeout <= 0 {
		s.timeout = DefaultCompletionTimeout
	}
	return s
}

// Complete answers one chat turn. If the last message names an uploaded file
// the reply explains that file; otherwise msgs go to the model unchanged.
func (s *Service) Complete(ctx context.Context, msgs []models.ChatMessage) (reply string, err error) {
	route := routeGeneric
	defer func() { s.metrics.ObserveTurn(route, err) }()

	if err := models.ValidateChat(msgs); err != nil {
		return "", apperr.Wrap(apperr.KindInvalid, err, "invalid chat request")
	}

	last := strings.ToLower(msgs[len(msgs)-1].Content)
	if name, ok := DetectFileName(last); ok {
		text, found, err := s.loadDocument(ctx, name)
		if found || err != nil {
			route = routeDocument
		}
		if err != nil {
			return "", err
		}
		if found {
			return s.answerAboutDocument(ctx, text)
		}
		s.logger.Debug("referenced file not found, answering as chat", zap.String("file", name))
	}
	return s.answerGeneric(ctx, msgs)
}

// ExplainFile answers with an explanation of the named file.
func (s *Service) ExplainFile(ctx context.Context, name string) (reply string, err error) {
	defer func() { s.metrics.ObserveTurn(routeDocument, err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Invalid("file_name is required")
	}
	text, found, err := s.loadDocument(ctx, name)
	if err != nil {
		return "", err
	}
	if !found {
		return "", apperr.NotFound("file %q not found", name)
	}
	return s.answerAboutDocument(ctx, text)
}

func (s *Service) answerGeneric(ctx context.Context, msgs []models.ChatMessage) (string, error) {
	return s.callCompletion(ctx, msgs)
}

// answerAboutDocument builds a one-message context from text. The synthetic
// message is never scanned for file names.
func (s *Service) answerAboutDocument(ctx context.Context, text string) (string, error) {
	prompt := explainPrefix + s.limiter.Limit(text)
	return s.callCompletion(ctx, []models.ChatMessage{{Role: models.RoleUser, Content: prompt}})
}

func (s *Service) callCompletion(ctx context.Context, msgs []models.ChatMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	reply, err := s.completer.Complete(ctx, msgs)
	s.metrics.ObserveCompletion(time.Since(start))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", apperr.Wrap(apperr.KindUnavailable, err, "AI request timed out")
		}
		return "", apperr.Wrap(apperr.KindUpstream, err, "AI request failed")
	}
	return reply, nil
}

// loadDocument resolves, downloads and extracts name. found is false only when
// no file record matches.
func (s *Service) loadDocument(ctx context.Context, name string) (text string, found bool, err error) {
	res, err := s.resolver.Resolve(ctx, name)
	if err != nil {
		return "", false, err
	}
	if res == nil {
		return "", false, nil
	}

	data, err := s.fetcher.Fetch(ctx, res.URL)
	if err != nil {
		return "", true, classifyFetch(err)
	}

	start := time.Now()
	text, err = extract.Text(res.File.FileName, data)
	s.metrics.ObserveExtraction(extract.Detect(res.File.FileName).String(), time.Since(start), err)
	if err != nil {
		return "", true, classifyExtract(err)
	}

	s.logger.Info("answering from document",
		zap.String("file", res.File.FileName),
		zap.Int("bytes", len(data)),
		zap.Int("chars", len(text)))
	return text, true, nil
}

func classifyFetch(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, fetch.ErrTooLarge):
		return apperr.Wrap(apperr.KindInvalid, err, "file is too large")
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return apperr.Wrap(apperr.KindUnavailable, err, "file download timed out")
	default:
		return apperr.Wrap(apperr.KindUpstream, err, "file download failed")
	}
}

func classifyExtract(err error) error {
	var perr *extract.ParseError
	switch {
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return apperr.Wrap(apperr.KindUnsupported, err, "unsupported file format")
	case errors.As(err, &perr):
		return apperr.Wrap(apperr.KindInternal, err, fmt.Sprintf("could not read %s file", perr.Format))
	default:
		return apperr.Wrap(apperr.KindInternal, err, "text extraction failed")
	}
}
