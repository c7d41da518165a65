package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/user/riskcore/pkg/extract"
	"github.com/user/riskcore/pkg/model"
	"github.com/user/riskcore/pkg/store"
)

// File is one uploaded artifact
type File struct {
	Name    string
	Content []byte
}

// Result reports the outcome of a single file. Failures are per-file;
// inspect Err when Status is "failed".
type Result struct {
	File                   string
	Format                 Format
	Status                 string // "ok" or "failed"
	AssetsCreated          int
	VulnerabilitiesCreated int
	FindingsCreated        int
	Dropped                int // vulnerabilities with no matching asset
	CriticalVulns          int
	HighVulns              int
	Confidence             float64 // extraction confidence, AI path only
	Err                    error
}

// Pipeline runs file ingestion with bounded parallelism. Extraction calls
// are the critical path and run outside any lock; canonical-store writes
// for one organization are serialized so the writer's fallback matching
// stays deterministic.
type Pipeline struct {
	writer      *Writer
	extractor   extract.Extractor
	concurrency int
	timeout     time.Duration

	mu       sync.Mutex
	orgLocks map[string]*sync.Mutex
}

// NewPipeline builds a pipeline. The extractor may be nil when no provider
// is configured; AI-extractable files then fail with ErrExtractionFailed.
func NewPipeline(st *store.Store, extractor extract.Extractor, concurrency int, extractionTimeout time.Duration) *Pipeline {
	if concurrency <= 0 {
		concurrency = 4
	}
	if extractionTimeout <= 0 {
		extractionTimeout = 2 * time.Minute
	}
	return &Pipeline{
		writer:      NewWriter(st),
		extractor:   extractor,
		concurrency: concurrency,
		timeout:     extractionTimeout,
		orgLocks:    make(map[string]*sync.Mutex),
	}
}

// ProcessFiles ingests a batch with one worker per file, capped at the
// configured concurrency. One bad file never aborts its siblings; each
// slot of the returned slice matches the input file at the same index.
func (p *Pipeline) ProcessFiles(ctx context.Context, organizationID string, files []File) []Result {
	results := make([]Result, len(files))

	g := new(errgroup.Group)
	g.SetLimit(p.concurrency)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{File: f.Name, Status: "failed", Err: err}
				return nil
			}
			results[i] = p.ProcessFile(ctx, organizationID, f)
			return nil
		})
	}
	g.Wait()
	return results
}

// ProcessFile runs one file through detection, decoding or extraction,
// classification and commit.
func (p *Pipeline) ProcessFile(ctx context.Context, organizationID string, f File) Result {
	res := Result{File: f.Name, Status: "failed"}

	format, err := DetectFormat(f.Name, f.Content)
	if err != nil {
		res.Err = err
		return res
	}
	res.Format = format

	log := logrus.WithFields(logrus.Fields{
		"file":         f.Name,
		"format":       format,
		"organization": organizationID,
	})
	log.Debug("processing file")

	switch format {
	case FormatNmapXML:
		err = p.ingestAssets(ctx, organizationID, f, &res, DecodeNmap)
	case FormatNessusXML, FormatNessusNative:
		err = p.ingestVulnerabilities(ctx, organizationID, f, &res, DecodeNessus)
	case FormatOpenVASXML:
		err = p.ingestVulnerabilities(ctx, organizationID, f, &res, DecodeOpenVAS)
	case FormatAIExtractable:
		err = p.ingestExtracted(ctx, organizationID, f, &res)
	}

	if err != nil {
		res.Err = err
		log.WithError(err).Warn("file ingestion failed")
		return res
	}

	res.Status = "ok"
	log.WithFields(logrus.Fields{
		"assets":          res.AssetsCreated,
		"vulnerabilities": res.VulnerabilitiesCreated,
		"findings":        res.FindingsCreated,
		"dropped":         res.Dropped,
	}).Info("file ingested")
	return res
}

func (p *Pipeline) ingestAssets(ctx context.Context, organizationID string, f File, res *Result, decode func([]byte) ([]model.AssetDraft, error)) error {
	drafts, err := decode(f.Content)
	if err != nil {
		return err
	}

	unlock := p.lockOrganization(organizationID)
	defer unlock()

	created, err := p.writer.CommitAssets(ctx, organizationID, drafts)
	res.AssetsCreated = len(created)
	return err
}

func (p *Pipeline) ingestVulnerabilities(ctx context.Context, organizationID string, f File, res *Result, decode func([]byte) ([]model.VulnerabilityDraft, error)) error {
	drafts, err := decode(f.Content)
	if err != nil {
		return err
	}

	unlock := p.lockOrganization(organizationID)
	defer unlock()

	created, dropped, err := p.writer.CommitVulnerabilities(ctx, organizationID, drafts)
	res.VulnerabilitiesCreated = len(created)
	res.Dropped = dropped
	res.CriticalVulns, res.HighVulns = countSeverities(created)
	return err
}

func (p *Pipeline) ingestExtracted(ctx context.Context, organizationID string, f File, res *Result) error {
	if p.extractor == nil {
		return fmt.Errorf("%w: no extraction provider configured", extract.ErrExtractionFailed)
	}

	mediaType, isImage := MediaType(f.Name)
	kind := extract.KindText
	if isImage {
		kind = extract.KindImage
	}

	// Extraction runs to completion before anything is committed, so a
	// failure here leaves no partial rows for this file.
	extractCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	payload, err := p.extractor.Extract(extractCtx, extract.Request{
		Content:   f.Content,
		Kind:      kind,
		MediaType: mediaType,
	})
	if err != nil {
		return err
	}
	res.Confidence = payload.Summary.Confidence

	unlock := p.lockOrganization(organizationID)
	defer unlock()

	assets, err := p.writer.CommitAssets(ctx, organizationID, payload.Assets)
	res.AssetsCreated = len(assets)
	if err != nil {
		return err
	}

	vulns, dropped, err := p.writer.CommitVulnerabilities(ctx, organizationID, payload.Vulnerabilities)
	res.VulnerabilitiesCreated = len(vulns)
	res.Dropped = dropped
	res.CriticalVulns, res.HighVulns = countSeverities(vulns)
	if err != nil {
		return err
	}

	findings, err := p.writer.CommitPentestFindings(ctx, organizationID, payload.PentestFindings)
	res.FindingsCreated = len(findings)
	return err
}

func (p *Pipeline) lockOrganization(organizationID string) func() {
	p.mu.Lock()
	lock, ok := p.orgLocks[organizationID]
	if !ok {
		lock = &sync.Mutex{}
		p.orgLocks[organizationID] = lock
	}
	p.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func countSeverities(vulns []model.Vulnerability) (critical, high int) {
	for _, v := range vulns {
		switch v.Severity {
		case model.SeverityCritical:
			critical++
		case model.SeverityHigh:
			high++
		}
	}
	return critical, high
}
