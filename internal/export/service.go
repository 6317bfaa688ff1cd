package export

import (
	"context"

	"go.uber.org/zap"

	"cvstudio/api/internal/store"
	"cvstudio/api/internal/template"
)

// Service runs the export pipeline: render the document to HTML, rasterize
// it in headless Chrome, plan the page slices, print the assembled pages
// to PDF. Any failure aborts the pipeline without a partial download.
type Service struct {
	registry *template.Registry
	log      *zap.Logger
}

func NewService(registry *template.Registry, log *zap.Logger) *Service {
	return &Service{registry: registry, log: log}
}

// Export produces the PDF for one document. onStage, when non-nil, is
// called as the pipeline advances so callers can expose progress.
func (s *Service) Export(ctx context.Context, r store.Resume, onStage func(Stage)) (*Result, error) {
	advance := func(st Stage) {
		if onStage != nil {
			onStage(st)
		}
	}

	if err := chromeAvailable(); err != nil {
		return nil, err
	}

	advance(StageRendering)
	html, err := s.registry.Get(r.TemplateID).Render(r)
	if err != nil {
		return nil, err
	}

	chromeCtx, cancel := newChromeContext(ctx)
	defer cancel()

	advance(StageRasterizing)
	bm, err := rasterize(chromeCtx, html)
	if err != nil {
		return nil, err
	}

	advance(StagePaginating)
	plan, err := Paginate(bm.width, bm.height)
	if err != nil {
		return nil, err
	}

	pdfData, err := printPDF(chromeCtx, buildPageHTML(bm, plan))
	if err != nil {
		return nil, err
	}

	advance(StageSaved)
	s.log.Info("export finished",
		zap.String("resume_id", r.ID),
		zap.Int("pages", len(plan.Pages)),
		zap.Int("bytes", len(pdfData)))

	return &Result{
		Data:     pdfData,
		Filename: sanitizeFilename(r.Title) + ".pdf",
		MimeType: "application/pdf",
		Pages:    len(plan.Pages),
	}, nil
}
