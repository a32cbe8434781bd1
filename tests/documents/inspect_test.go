package documents_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/chronicle-ai/chronicle/internal/documents"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		data     []byte
		expected string
	}{
		{
			name:     "declared type trusted",
			declared: "application/pdf",
			data:     []byte("not actually pdf"),
			expected: "application/pdf",
		},
		{
			name:     "empty declaration sniffs pdf",
			declared: "",
			data:     []byte("%PDF-1.7 rest of file"),
			expected: "application/pdf",
		},
		{
			name:     "octet-stream declaration sniffs html",
			declared: "application/octet-stream",
			data:     []byte("<html><body>hi</body></html>"),
			expected: "text/html; charset=utf-8",
		},
		{
			name:     "whitespace declaration sniffs text",
			declared: "  ",
			data:     []byte("plain words here"),
			expected: "text/plain; charset=utf-8",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := documents.DetectContentType(tc.declared, tc.data); got != tc.expected {
				t.Errorf("got %s, want %s", got, tc.expected)
			}
		})
	}
}

func TestExtractPDFPageCountNonPDF(t *testing.T) {
	count := documents.ExtractPDFPageCount(discard(), []byte("plain text"), "text/plain")
	if count != nil {
		t.Errorf("got %v, want nil for non-PDF content", *count)
	}
}

func TestExtractPDFPageCountUnreadable(t *testing.T) {
	count := documents.ExtractPDFPageCount(discard(), []byte("%PDF-broken"), "application/pdf")
	if count != nil {
		t.Errorf("got %v, want nil for unreadable PDF", *count)
	}
}
