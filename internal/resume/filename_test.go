package resume

import "testing"

func TestExportFilename(t *testing.T) {
	cases := []struct {
		title string
		ext   string
		want  string
	}{
		{title: "My Resume 2024", ext: "pdf", want: "My_Resume_2024.pdf"},
		{title: "My Resume 2024", ext: "html", want: "My_Resume_2024.html"},
		{title: "Resume  -  Backend\tEngineer", ext: "pdf", want: "Resume_-_Backend_Engineer.pdf"},
		{title: "NoSpaces", ext: "html", want: "NoSpaces.html"},
	}

	for _, tc := range cases {
		if got := ExportFilename(tc.title, tc.ext); got != tc.want {
			t.Errorf("ExportFilename(%q, %q) = %q, want %q", tc.title, tc.ext, got, tc.want)
		}
	}
}
