// Package export turns rendered resumes into paginated PDF downloads.
package export

import "errors"

// Stage tracks where an export currently is. Status polls surface it while
// the pipeline runs.
type Stage string

const (
	StageIdle        Stage = "idle"
	StageRendering   Stage = "rendering"
	StageRasterizing Stage = "rasterizing"
	StagePaginating  Stage = "paginating"
	StageSaved       Stage = "saved"
)

// Result contains the export output
type Result struct {
	Data     []byte
	Filename string
	MimeType string
	Pages    int
}

var (
	// ErrBadGeometry indicates the rasterized bitmap has a non-positive
	// page height. The export aborts before emitting any page.
	ErrBadGeometry = errors.New("export bad page geometry")
	// ErrPDFDependencyMissing indicates PDF export runtime dependencies are unavailable.
	ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
)
