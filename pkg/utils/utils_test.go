package utils

import "testing"

func TestIsValidURL(t *testing.T) {
	h := NewHTTPHelper()

	tests := []struct {
		input string
		want  bool
	}{
		{"https://prostoprosport.ru", true},
		{"http://api.prostoprosport.ru/api/news/", true},
		{"ftp://example.com", false},
		{"/relative/path", false},
		{"https://", false},
		{"::bad", false},
	}

	for _, tt := range tests {
		if got := h.IsValidURL(tt.input); got != tt.want {
			t.Errorf("IsValidURL(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestBuildHeaders(t *testing.T) {
	headers := NewHTTPHelper().BuildHeaders(map[string]string{
		"User-Agent": "ArchiveBot/2.0",
		"X-Empty":    "",
	})

	if got := headers.Values("User-Agent"); len(got) != 1 || got[0] != "ArchiveBot/2.0" {
		t.Errorf("Expected single custom User-Agent, got %v", got)
	}

	if headers.Get("Accept") == "" {
		t.Error("Expected default Accept header")
	}

	if _, ok := headers["X-Empty"]; ok {
		t.Error("Expected empty header to be skipped")
	}
}

func TestTruncateString(t *testing.T) {
	s := NewStringHelper()

	if got := s.TruncateString("Спартак", 20); got != "Спартак" {
		t.Errorf("Expected short string unchanged, got %q", got)
	}

	if got := s.TruncateString("Спартак победил Зенит", 10); got != "Спартак..." {
		t.Errorf("Expected truncated string, got %q", got)
	}

	if got := s.NormalizeWhitespace("  Иван \n\t Петров "); got != "Иван Петров" {
		t.Errorf("Expected normalized whitespace, got %q", got)
	}
}
