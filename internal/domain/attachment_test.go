package domain

import "testing"

func TestKindForFilename(t *testing.T) {
	cases := []struct {
		name string
		want MediaKind
	}{
		{"workout.pdf", MediaPDF},
		{"WORKOUT.PDF", MediaPDF},
		{"photo.png", MediaImage},
		{"photo.jpg", MediaImage},
		{"photo.JPEG", MediaImage},
		{"contract.docx", MediaDocx},
		{"notes.txt", MediaOther},
		{"noextension", MediaOther},
		{"archive.docx.zip", MediaOther},
	}
	for _, c := range cases {
		if got := KindForFilename(c.name); got != c.want {
			t.Errorf("KindForFilename(%q) = %q, want %q", c.name, got, c.want)
		}
	}
}
