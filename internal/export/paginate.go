package export

// A4 proportions. The bitmap width maps onto the page width; the page
// height in bitmap pixels follows from the aspect ratio.
const (
	a4WidthMM  = 210.0
	a4HeightMM = 297.0
)

// PageSlice is one output page: the full bitmap shifted up so this page's
// band lands inside the viewport.
type PageSlice struct {
	Index    int
	OffsetPx int
}

// Pagination is the pure slicing plan for one bitmap.
type Pagination struct {
	PageHeightPx int
	Pages        []PageSlice
}

// pageHeightFor returns how many bitmap pixels fit one A4 page at the
// given bitmap width.
func pageHeightFor(canvasWidth int) int {
	return int(float64(canvasWidth) * a4HeightMM / a4WidthMM)
}

// Paginate plans the page slices for a bitmap. Every page after the first
// shows the same bitmap shifted up by a whole number of page heights, so a
// 2000px bitmap on 800px pages yields offsets 0, -800 and -1600.
func Paginate(canvasWidth, canvasHeight int) (Pagination, error) {
	return paginate(canvasHeight, pageHeightFor(canvasWidth))
}

func paginate(canvasHeight, pageHeight int) (Pagination, error) {
	if pageHeight <= 0 {
		return Pagination{}, ErrBadGeometry
	}
	if canvasHeight < 0 {
		canvasHeight = 0
	}

	count := canvasHeight / pageHeight
	if canvasHeight%pageHeight != 0 {
		count++
	}
	if count == 0 && canvasHeight >= 0 {
		count = 1
	}

	p := Pagination{PageHeightPx: pageHeight}
	for i := 0; i < count; i++ {
		p.Pages = append(p.Pages, PageSlice{Index: i, OffsetPx: -i * pageHeight})
	}
	return p, nil
}
