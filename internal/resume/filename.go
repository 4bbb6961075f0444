package resume

import "regexp"

var whitespaceRuns = regexp.MustCompile(`\s+`)

// ExportFilename 由简历标题派生下载文件名：每段连续空白折叠为一个下划线，再追加扩展名。
// 例如 "My Resume 2024" + "pdf" => "My_Resume_2024.pdf"。
func ExportFilename(title, ext string) string {
	return whitespaceRuns.ReplaceAllString(title, "_") + "." + ext
}
