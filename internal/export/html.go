package export

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/chiranjibts89/Blu-Ko-AI/internal/resume"
)

// ErrEmptyTitle 表示简历标题为空，无法生成文档与文件名。
var ErrEmptyTitle = errors.New("resume title is empty")

// htmlTemplateString 是自包含的简历 HTML 文档模板。
// 样式全部内联，离线打开也能正确渲染；预览、HTML 下载与 PDF 光栅化共用同一份输出，
// 因此空 section 的抑制行为在三条路径上天然一致。
const htmlTemplateString = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            line-height: 1.6;
            max-width: 800px;
            margin: 0 auto;
            padding: 40px;
            color: #333;
            background: white;
        }
        h1 {
            font-size: 2.5em;
            margin-bottom: 10px;
            color: #1a1a1a;
        }
        h2 {
            font-size: 1.5em;
            margin-top: 30px;
            margin-bottom: 15px;
            color: #2563eb;
            border-bottom: 2px solid #2563eb;
            padding-bottom: 5px;
        }
        .contact-info {
            margin-bottom: 30px;
            color: #666;
        }
        .contact-info span {
            margin-right: 20px;
        }
        .experience-item, .education-item {
            margin-bottom: 20px;
            padding-left: 15px;
            border-left: 3px solid #2563eb;
        }
        .job-title, .degree {
            font-size: 1.2em;
            font-weight: bold;
            color: #1a1a1a;
        }
        .company, .institution {
            font-weight: 600;
            color: #444;
        }
        .date-range {
            color: #666;
            font-size: 0.9em;
        }
        .skills {
            display: flex;
            flex-wrap: wrap;
            gap: 10px;
        }
        .skill-tag {
            background-color: #e0f2fe;
            color: #0369a1;
            padding: 5px 15px;
            border-radius: 20px;
            font-size: 0.9em;
        }
    </style>
</head>
<body>
<div id="resume-preview">
    <h1>{{.PersonalInfo.Name}}</h1>
    <div class="contact-info">
        {{- if .PersonalInfo.Email}}
        <span>&#128231; {{.PersonalInfo.Email}}</span>
        {{- end}}
        {{- if .PersonalInfo.Phone}}
        <span>&#128222; {{.PersonalInfo.Phone}}</span>
        {{- end}}
        {{- if .PersonalInfo.Location}}
        <span>&#128205; {{.PersonalInfo.Location}}</span>
        {{- end}}
    </div>
{{- if .WorkExperience}}
    <h2>Work Experience</h2>
    {{- range .WorkExperience}}
    <div class="experience-item">
        <div class="job-title">{{.JobTitle}}</div>
        <div class="company">{{.CompanyName}}</div>
        <div class="date-range">
            {{- if .Location}}{{.Location}} | {{end -}}
            {{dateRange .StartDate .EndDate .IsCurrent}}
        </div>
        {{- if .Description}}
        <p>{{.Description}}</p>
        {{- end}}
    </div>
    {{- end}}
{{- end}}
{{- if .Skills}}
    <h2>Skills</h2>
    <div class="skills">
        {{- range .Skills}}
        <span class="skill-tag">{{.}}</span>
        {{- end}}
    </div>
{{- end}}
{{- if .Education}}
    <h2>Education</h2>
    {{- range .Education}}
    <div class="education-item">
        <div class="degree">{{.DegreeOrProgram}}</div>
        <div class="institution">{{.InstitutionName}}</div>
        {{- if .FieldOfStudy}}
        <div>{{.FieldOfStudy}}</div>
        {{- end}}
        {{- if or .StartDate .EndDate}}
        <div class="date-range">{{dateRange .StartDate .EndDate .IsCurrent}}</div>
        {{- end}}
    </div>
    {{- end}}
{{- end}}
</div>
</body>
</html>
`

var htmlTemplate = template.Must(
	template.New("resume").Funcs(template.FuncMap{
		"formatDate": resume.FormatDate,
		"dateRange":  resume.FormatDateRange,
	}).Parse(htmlTemplateString),
)

// RenderHTML 将简历快照序列化为完整的独立 HTML 文档。
// 标题为空时返回 ErrEmptyTitle：标题既是 <title> 又是下载文件名的来源。
func RenderHTML(doc resume.Document) (string, error) {
	if strings.TrimSpace(doc.Title) == "" {
		return "", ErrEmptyTitle
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("execute resume template: %w", err)
	}
	return buf.String(), nil
}
