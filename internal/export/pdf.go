package export

import (
	"context"
	"encoding/base64"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// percentEncodeForDataURL encodes a string for use in a data URL.
// Unlike url.QueryEscape, this properly encodes spaces as %20 for data URLs.
func percentEncodeForDataURL(s string) string {
	var result strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '-', r == '_', r == '.', r == '~':
			result.WriteRune(r)
		case r == ' ':
			result.WriteString("%20")
		default:
			for _, b := range string(r) {
				result.WriteString(fmt.Sprintf("%%%02X", b))
			}
		}
	}
	return result.String()
}

func chromeAvailable() error {
	if _, err := exec.LookPath("chromium-browser"); err != nil {
		if _, fallbackErr := exec.LookPath("chromium"); fallbackErr != nil {
			return fmt.Errorf("%w: chromium not installed", ErrPDFDependencyMissing)
		}
	}
	return nil
}

func newChromeContext(parent context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		// Avatar images may live on another origin; the capture still works
		// without them, but this lets Chrome fetch what it can.
		chromedp.Flag("disable-web-security", true),
	)

	ctx, cancelTimeout := context.WithTimeout(parent, 60*time.Second)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	taskCtx, cancelTask := chromedp.NewContext(allocCtx)

	cancel := func() {
		cancelTask()
		cancelAlloc()
		cancelTimeout()
	}
	return taskCtx, cancel
}

// buildPageHTML lays every planned page out as an A4-sized clipping box
// holding the full bitmap shifted up by the page offset. Chrome then prints
// one box per page.
func buildPageHTML(bm bitmap, plan Pagination) string {
	cssHeight := float64(plan.PageHeightPx) / rasterScale
	imgSrc := "data:image/png;base64," + base64.StdEncoding.EncodeToString(bm.png)

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><style>`)
	b.WriteString(`* { margin: 0; padding: 0; }`)
	b.WriteString(fmt.Sprintf(`.sheet { position: relative; width: %dpx; height: %.2fpx; overflow: hidden; page-break-after: always; background: #fff; }`, renderWidth, cssHeight))
	b.WriteString(`.sheet:last-child { page-break-after: auto; }`)
	b.WriteString(fmt.Sprintf(`.sheet img { position: absolute; left: 0; width: %dpx; }`, renderWidth))
	b.WriteString(`</style></head><body>`)
	for _, slice := range plan.Pages {
		b.WriteString(fmt.Sprintf(`<div class="sheet"><img style="top:%.2fpx" src="%s"></div>`, float64(slice.OffsetPx)/rasterScale, imgSrc))
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

// printPDF converts the assembled page HTML to an A4 PDF with no margins.
func printPDF(ctx context.Context, html string) ([]byte, error) {
	dataURL := "data:text/html;charset=utf-8," + percentEncodeForDataURL(html)

	var pdfData []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfData, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27). // A4
				WithPaperHeight(11.69).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithPreferCSSPageSize(false).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome pdf generation failed: %w", err)
	}
	return pdfData, nil
}

// sanitizeFilename creates a safe filename from a title
func sanitizeFilename(title string) string {
	result := ""
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			result += string(r)
		case r == ' ':
			result += "-"
		case r == '-', r == '_':
			result += string(r)
		default:
			// Skip other characters
		}
	}

	if len(result) > 50 {
		result = result[:50]
	}

	if result == "" {
		result = "resume"
	}

	return result
}
