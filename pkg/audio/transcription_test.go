package audio

import "testing"

func TestSupportedFile(t *testing.T) {
	for name, want := range map[string]bool{
		"note.ogg":   true,
		"NOTE.M4A":   true,
		"call.wav":   true,
		"notes.txt":  false,
		"noext":      false,
		"photo.jpeg": false,
	} {
		if got := SupportedFile(name); got != want {
			t.Errorf("SupportedFile(%q) = %v, want %v", name, got, want)
		}
	}
}
