package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	// renderWidth is the CSS width the templates lay out against.
	renderWidth = 794
	// rasterScale oversamples the bitmap so text stays crisp in the PDF.
	rasterScale = 3
	// settleDelay lets web fonts and layout settle before the capture.
	settleDelay = 500 * time.Millisecond
)

// bitmap is a captured page image plus its pixel dimensions.
type bitmap struct {
	png    []byte
	width  int
	height int
}

// rasterize loads the rendered HTML in headless Chrome and captures a
// full-height screenshot. The background is forced white for the capture so
// transparent regions do not come out dark in the PDF.
func rasterize(ctx context.Context, html string) (bitmap, error) {
	dataURL := "data:text/html;charset=utf-8," + percentEncodeForDataURL(html)

	var png []byte
	err := chromedp.Run(ctx,
		chromedp.EmulateViewport(renderWidth, 0, chromedp.EmulateScale(rasterScale)),
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(settleDelay),
		chromedp.Evaluate(`document.body.style.background = "#ffffff"; undefined`, nil),
		chromedp.FullScreenshot(&png, 100),
	)
	if err != nil {
		return bitmap{}, fmt.Errorf("chrome screenshot failed: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(png))
	if err != nil {
		return bitmap{}, fmt.Errorf("decode screenshot: %w", err)
	}
	return bitmap{png: png, width: cfg.Width, height: cfg.Height}, nil
}
