// Package worker processes certificate render jobs: draw the PDF and QR
// image for an issued certificate and upload both to S3.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/certivault/backend/internal/pdfrender"
	"github.com/certivault/backend/internal/qrlink"
	"github.com/certivault/backend/internal/store"
	"github.com/certivault/backend/pkg/queue"
	"github.com/certivault/backend/pkg/storage"
)

// RenderProcessor renders issued certificates in the background. Rendering
// is fire-and-forget relative to issuance: a failed render never unwinds an
// issued certificate.
type RenderProcessor struct {
	store           *store.Store
	renderer        *pdfrender.Renderer
	s3              *storage.S3
	queue           *queue.Queue
	verificationURL string
	logger          *zap.Logger
}

// NewRenderProcessor creates a render processor.
func NewRenderProcessor(st *store.Store, renderer *pdfrender.Renderer, s3 *storage.S3, q *queue.Queue, verificationURL string, logger *zap.Logger) *RenderProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RenderProcessor{
		store:           st,
		renderer:        renderer,
		s3:              s3,
		queue:           q,
		verificationURL: verificationURL,
		logger:          logger,
	}
}

// Process executes one render job.
func (p *RenderProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeRenderCertificate {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.RenderPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	cert, ok := p.store.CertificateByPublicID(payload.CertificateID)
	if !ok {
		// a standalone worker may hold a snapshot older than the job
		if err := p.store.Load(ctx); err != nil {
			return fmt.Errorf("reload store: %w", err)
		}
		if cert, ok = p.store.CertificateByPublicID(payload.CertificateID); !ok {
			return fmt.Errorf("certificate not found: %s", payload.CertificateID)
		}
	}
	tpl, ok := p.store.TemplateByID(cert.TemplateID)
	if !ok {
		return fmt.Errorf("template not found: %s", cert.TemplateID)
	}

	pdfBytes, err := p.renderer.Render(&cert, &tpl)
	if err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	pdfKey := storage.CertificatePDFKey(cert.CertificateID)
	if _, err := p.s3.Upload(ctx, pdfKey, "application/pdf", bytes.NewReader(pdfBytes), int64(len(pdfBytes))); err != nil {
		return fmt.Errorf("upload pdf: %w", err)
	}

	qrBytes, err := qrlink.PNG(p.verificationURL, cert.CertificateID)
	if err != nil {
		return fmt.Errorf("render qr: %w", err)
	}
	qrKey := storage.CertificateQRKey(cert.CertificateID)
	if _, err := p.s3.Upload(ctx, qrKey, "image/png", bytes.NewReader(qrBytes), int64(len(qrBytes))); err != nil {
		return fmt.Errorf("upload qr: %w", err)
	}

	p.logger.Info("certificate rendered",
		zap.String("certificate_id", cert.CertificateID),
		zap.String("pdf_key", pdfKey),
		zap.String("qr_key", qrKey),
	)
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *RenderProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("render worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
