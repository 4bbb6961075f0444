package resume

import "time"

// presentLabel 是缺失/进行中日期的展示文案。
const presentLabel = "Present"

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01",
}

// FormatDate 将 ISO-8601 日期串格式化为 "Jan 2006"；空串表示日期缺失，返回 "Present"。
// 预览与两种导出路径共用此函数，保证同一输入得到同一输出。
// 无法解析的输入原样返回（与源数据一致，不做兜底猜测）。
func FormatDate(dateString string) string {
	if dateString == "" {
		return presentLabel
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, dateString); err == nil {
			return t.Format("Jan 2006")
		}
	}
	return dateString
}

// FormatDateRange 渲染 "起 - 止" 区间；isCurrent 为 true 时结束侧强制显示 "Present"，
// 无论存储中是否残留 endDate。
func FormatDateRange(start, end string, isCurrent bool) string {
	to := presentLabel
	if !isCurrent {
		to = FormatDate(end)
	}
	return FormatDate(start) + " - " + to
}
