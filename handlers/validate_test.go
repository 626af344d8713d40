package handlers

import (
	"testing"
)

func TestValidateSubmission(t *testing.T) {
	testCases := []struct {
		name string

		messageContent string
		provider       string
		category       string
		description    string
		email          string

		wantOK     bool
		wantReason string
	}{
		{
			name:           "valid",
			messageContent: "hi",
			provider:       "gemini",
			category:       "quality",
			description:    "bad answer",
			email:          "a@b.com",
			wantOK:         true,
		},
		{
			name:        "missing message content",
			provider:    "gemini",
			category:    "quality",
			description: "bad answer",
			email:       "a@b.com",
			wantOK:      false,
			wantReason:  "Missing required fields",
		},
		{
			name:           "missing email",
			messageContent: "hi",
			provider:       "gemini",
			category:       "quality",
			description:    "bad answer",
			wantOK:         false,
			wantReason:     "Missing required fields",
		},
		{
			name:           "missing description",
			messageContent: "hi",
			provider:       "gemini",
			category:       "quality",
			email:          "a@b.com",
			wantOK:         false,
			wantReason:     "Missing required fields",
		},
		{
			name:           "email without domain dot",
			messageContent: "hi",
			provider:       "gemini",
			category:       "quality",
			description:    "bad answer",
			email:          "a@b",
			wantOK:         false,
			wantReason:     "Invalid email format",
		},
		{
			name:           "email with spaces",
			messageContent: "hi",
			provider:       "gemini",
			category:       "quality",
			description:    "bad answer",
			email:          "a b@c.com",
			wantOK:         false,
			wantReason:     "Invalid email format",
		},
		{
			name:           "email without local part",
			messageContent: "hi",
			provider:       "gemini",
			category:       "quality",
			description:    "bad answer",
			email:          "@b.com",
			wantOK:         false,
			wantReason:     "Invalid email format",
		},
		{
			name:           "unknown category",
			messageContent: "hi",
			provider:       "gemini",
			category:       "spam",
			description:    "bad answer",
			email:          "a@b.com",
			wantOK:         false,
			wantReason:     "Invalid category spam",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reason, ok := validateSubmission(tc.messageContent, tc.provider, tc.category, tc.description, tc.email)
			if ok != tc.wantOK {
				t.Fatalf("got ok=%v, want %v (reason %q)", ok, tc.wantOK, reason)
			}
			if !ok && reason != tc.wantReason {
				t.Errorf("got reason %q, want %q", reason, tc.wantReason)
			}
		})
	}
}

func TestStoredFileName(t *testing.T) {
	got := storedFileName(1700000000123, 0, "photo.png")
	want := "report_1700000000123_0.png"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got = storedFileName(1700000000123, 2, "clip.MOV")
	want = "report_1700000000123_2.MOV"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStoredFileNameUniqueWithinSubmission(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		name := storedFileName(1700000000123, i, "a.jpg")
		if seen[name] {
			t.Fatalf("duplicate stored filename %q", name)
		}
		seen[name] = true
	}
}

func TestFileExtension(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"photo.png", "png"},
		{"archive.tar.gz", "gz"},
		{"noextension", "bin"},
		{"trailingdot.", "bin"},
		{"", "bin"},
	}
	for _, tc := range testCases {
		if got := fileExtension(tc.in); got != tc.want {
			t.Errorf("fileExtension(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAttachmentAllowList(t *testing.T) {
	allowed := []string{"image/jpeg", "image/png", "image/gif", "image/webp", "video/mp4", "video/quicktime", "video/mov"}
	for _, mime := range allowed {
		if !allowedFileTypes[mime] {
			t.Errorf("%s should be allowed", mime)
		}
	}
	for _, mime := range []string{"text/plain", "application/pdf", "image/svg+xml", "video/webm", ""} {
		if allowedFileTypes[mime] {
			t.Errorf("%s should not be allowed", mime)
		}
	}
}

func TestMaxFileSize(t *testing.T) {
	if MaxFileSize != 40*1024*1024 {
		t.Errorf("MaxFileSize = %d, want %d", MaxFileSize, 40*1024*1024)
	}
}
