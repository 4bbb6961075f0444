package export

// A4 纵向页面尺寸，单位毫米。
const (
	PageWidthMM  = 210.0
	PageHeightMM = 297.0
)

// ScaledHeightMM 把位图像素高度换算为固定 210mm 宽度下的毫米高度，保持纵横比。
func ScaledHeightMM(widthPx, heightPx int) float64 {
	if widthPx <= 0 {
		return 0
	}
	return float64(heightPx) * PageWidthMM / float64(widthPx)
}

// 整数像素比例换算出的毫米高度带亚像素误差：794x1123 视口算出 297.015mm，
// 比一页高 0.015mm。低于该阈值的余量视为已被当前页消化，不再另起一页。
const remainderEpsilonMM = 0.1

// PageOffsets 计算 "shift-and-clip" 分页：整张位图在每一页以递减的纵向偏移重绘，
// 页面视口裁剪出各自的 297mm 切片。返回值即每页的绘制偏移（第一页恒为 0）。
//
// 刚好等于一页高度的位图产生且仅产生一页；只有剩余高度超过亚像素阈值才追加新页。
func PageOffsets(imgHeightMM, pageHeightMM float64) []float64 {
	offsets := []float64{0}
	heightLeft := imgHeightMM - pageHeightMM
	for heightLeft > remainderEpsilonMM {
		offsets = append(offsets, heightLeft-imgHeightMM)
		heightLeft -= pageHeightMM
	}
	return offsets
}
