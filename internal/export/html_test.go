package export

import (
	"errors"
	"strings"
	"testing"

	"github.com/chiranjibts89/Blu-Ko-AI/internal/resume"
)

func sampleDocument() resume.Document {
	return resume.Document{
		Title: "Backend Engineer Resume",
		PersonalInfo: resume.PersonalInfo{
			Name:     "Jane Doe",
			Email:    "jane@example.com",
			Phone:    "+1 555 0100",
			Location: "Berlin",
		},
		WorkExperience: []resume.WorkExperience{
			{
				JobTitle:    "Senior Engineer",
				CompanyName: "Acme Corp",
				Location:    "Remote",
				StartDate:   "2021-04-01",
				IsCurrent:   true,
				Description: "Builds data plumbing.",
			},
			{
				JobTitle:    "Engineer",
				CompanyName: "Initech",
				StartDate:   "2018-01-01",
				EndDate:     "2021-03-01",
			},
		},
		Skills: []string{"Go", "PostgreSQL", "Redis"},
		Education: []resume.Education{
			{
				InstitutionName: "TU Berlin",
				DegreeOrProgram: "B.Sc.",
				FieldOfStudy:    "Computer Science",
				StartDate:       "2014-10-01",
				EndDate:         "2017-09-01",
			},
		},
	}
}

func TestRenderHTMLFullDocument(t *testing.T) {
	html, err := RenderHTML(sampleDocument())
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}

	for _, want := range []string{
		`<div id="resume-preview">`,
		"<title>Backend Engineer Resume</title>",
		"<h1>Jane Doe</h1>",
		"jane@example.com",
		"<h2>Work Experience</h2>",
		"Remote | Apr 2021 - Present",
		"Jan 2018 - Mar 2021",
		"<h2>Skills</h2>",
		"<h2>Education</h2>",
		"Oct 2014 - Sep 2017",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered html missing %q", want)
		}
	}

	// 每个技能渲染且只渲染一次。
	for _, skill := range []string{"Go", "PostgreSQL", "Redis"} {
		tag := `<span class="skill-tag">` + skill + `</span>`
		if strings.Count(html, tag) != 1 {
			t.Errorf("skill %q rendered %d times, want 1", skill, strings.Count(html, tag))
		}
	}
}

func TestRenderHTMLSuppressesEmptySections(t *testing.T) {
	doc := sampleDocument()
	doc.WorkExperience = nil
	doc.Skills = nil
	doc.Education = nil
	doc.PersonalInfo.Phone = ""
	doc.PersonalInfo.Location = ""

	html, err := RenderHTML(doc)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}

	for _, absent := range []string{
		"<h2>Work Experience</h2>",
		"<h2>Skills</h2>",
		"<h2>Education</h2>",
		"&#128222;",
		"&#128205;",
	} {
		if strings.Contains(html, absent) {
			t.Errorf("rendered html should not contain %q", absent)
		}
	}

	// Email 仍然渲染。
	if !strings.Contains(html, "&#128231; jane@example.com") {
		t.Errorf("email should still be rendered")
	}
}

func TestRenderHTMLCurrentOverridesEndDate(t *testing.T) {
	doc := sampleDocument()
	doc.WorkExperience = []resume.WorkExperience{{
		JobTitle:    "Engineer",
		CompanyName: "Acme Corp",
		StartDate:   "2020-02-01",
		EndDate:     "2023-08-01",
		IsCurrent:   true,
	}}

	html, err := RenderHTML(doc)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if !strings.Contains(html, "Feb 2020 - Present") {
		t.Errorf("isCurrent should render Present regardless of end date")
	}
	if strings.Contains(html, "Aug 2023") {
		t.Errorf("stale end date leaked into output")
	}
}

func TestRenderHTMLEmptyTitle(t *testing.T) {
	doc := sampleDocument()
	doc.Title = "   "
	if _, err := RenderHTML(doc); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("want ErrEmptyTitle, got %v", err)
	}
}
