package ocr

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultMinTextChars is the threshold under which an extracted text layer is
// considered unusable (scanned PDF, decorative text only).
const DefaultMinTextChars = 60

// TextExtractor pulls the embedded text layer out of a PDF with pdftotext.
// Digital invoices from French suppliers almost always carry one, which makes
// extraction much cheaper and more reliable than vision on the rendered page.
type TextExtractor struct {
	bin      string
	minChars int
}

// NewTextExtractor creates an extractor. bin defaults to "pdftotext" and
// minChars to DefaultMinTextChars when zero.
func NewTextExtractor(bin string, minChars int) *TextExtractor {
	if bin == "" {
		bin = "pdftotext"
	}
	if minChars <= 0 {
		minChars = DefaultMinTextChars
	}
	return &TextExtractor{bin: bin, minChars: minChars}
}

// ExtractText runs pdftotext in layout mode and returns the text and the
// extraction duration in seconds.
func (t *TextExtractor) ExtractText(pdfData []byte) (string, float64, error) {
	startTime := time.Now()

	tmpDir := os.TempDir()
	inputFile := filepath.Join(tmpDir, fmt.Sprintf("text_in_%d.pdf", os.Getpid()))

	if err := os.WriteFile(inputFile, pdfData, 0644); err != nil {
		return "", 0, fmt.Errorf("failed to write temp pdf: %w", err)
	}
	defer os.Remove(inputFile)

	// -layout keeps the table columns aligned, which the consumption
	// regexes depend on.
	cmd := exec.Command(t.bin, "-layout", "-enc", "UTF-8", inputFile, "-")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", time.Since(startTime).Seconds(),
			fmt.Errorf("pdftotext failed: %v - %s", err, stderr.String())
	}

	return stdout.String(), time.Since(startTime).Seconds(), nil
}

// Usable reports whether the extracted text is substantial enough to skip the
// vision model.
func (t *TextExtractor) Usable(text string) bool {
	return len(strings.TrimSpace(text)) >= t.minChars
}
