package export

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/go-pdf/fpdf"
)

// BuildPDF 把渲染快照（PNG 位图）铺进多页 A4 PDF。
// 位图按 210mm 宽等比缩放；每一页以 PageOffsets 给出的偏移重绘同一张完整位图。
// 返回文档字节与页数。任何写入失败都不产生部分文件。
func BuildPDF(pngData []byte) (data []byte, pages int, err error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(pngData))
	if err != nil {
		return nil, 0, fmt.Errorf("decode snapshot png: %w", err)
	}

	imgHeight := ScaledHeightMM(cfg.Width, cfg.Height)
	if imgHeight <= 0 {
		return nil, 0, fmt.Errorf("invalid snapshot dimensions %dx%d", cfg.Width, cfg.Height)
	}

	doc := fpdf.New("P", "mm", "A4", "")
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader("snapshot", opts, bytes.NewReader(pngData))

	offsets := PageOffsets(imgHeight, PageHeightMM)
	for _, offset := range offsets {
		doc.AddPage()
		doc.ImageOptions("snapshot", 0, offset, PageWidthMM, imgHeight, false, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, 0, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), len(offsets), nil
}
