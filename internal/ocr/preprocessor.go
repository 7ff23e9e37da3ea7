package ocr

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Preprocessor prepares invoice scans for the vision model. Enhancement and
// PDF rasterization both go through ImageMagick; when it is unavailable the
// original bytes are used as-is rather than failing the request.
type Preprocessor struct {
	convertBin string
}

// NewPreprocessor creates a preprocessor. convertBin overrides the ImageMagick
// binary; empty means autodetect ("magick" first, then "convert").
func NewPreprocessor(convertBin string) *Preprocessor {
	return &Preprocessor{convertBin: convertBin}
}

func (p *Preprocessor) command(args []string) *exec.Cmd {
	if p.convertBin != "" {
		return exec.Command(p.convertBin, args...)
	}
	// 'magick' is ImageMagick 7, 'convert' the v6 fallback.
	if _, err := exec.LookPath("magick"); err == nil {
		return exec.Command("magick", args...)
	}
	return exec.Command("convert", args...)
}

// EnhanceScan applies enhancement filters to a photographed or scanned
// invoice. Pipeline: resize -> grayscale -> contrast -> denoise -> sharpen.
func (p *Preprocessor) EnhanceScan(imageData []byte) ([]byte, error) {
	tmpDir := os.TempDir()
	inputFile := filepath.Join(tmpDir, fmt.Sprintf("scan_in_%d.jpg", os.Getpid()))
	outputFile := filepath.Join(tmpDir, fmt.Sprintf("scan_out_%d.jpg", os.Getpid()))

	if err := os.WriteFile(inputFile, imageData, 0644); err != nil {
		return imageData, nil // Fallback to original
	}
	defer os.Remove(inputFile)
	defer os.Remove(outputFile)

	args := []string{
		inputFile,
		// Resize if larger than 2000px (keeps aspect ratio)
		"-resize", "2000x2000>",
		// Invoice tables read better in grayscale with stretched contrast
		"-colorspace", "Gray",
		"-normalize",
		"-contrast-stretch", "2%x1%",
		// Light denoise
		"-despeckle",
		// Sharpen text edges
		"-sharpen", "0x1",
		"-unsharp", "0x0.5+0.5+0",
		"-quality", "95",
		outputFile,
	}

	cmd := p.command(args)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// If ImageMagick fails, return the original image
		fmt.Printf("[Preprocessor] ImageMagick failed: %v - %s\n", err, stderr.String())
		return imageData, nil
	}

	processed, err := os.ReadFile(outputFile)
	if err != nil {
		return imageData, nil // Fallback to original
	}

	fmt.Printf("[Preprocessor] Scan enhanced: %d bytes -> %d bytes\n", len(imageData), len(processed))
	return processed, nil
}

// RenderPDFFirstPage rasterizes the first page of a PDF to JPEG so scanned
// PDFs without a text layer can still go through the vision model.
func (p *Preprocessor) RenderPDFFirstPage(pdfData []byte) ([]byte, error) {
	tmpDir := os.TempDir()
	inputFile := filepath.Join(tmpDir, fmt.Sprintf("page_in_%d.pdf", os.Getpid()))
	outputFile := filepath.Join(tmpDir, fmt.Sprintf("page_out_%d.jpg", os.Getpid()))

	if err := os.WriteFile(inputFile, pdfData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write temp pdf: %w", err)
	}
	defer os.Remove(inputFile)
	defer os.Remove(outputFile)

	args := []string{
		"-density", "200",
		inputFile + "[0]",
		"-background", "white",
		"-alpha", "remove",
		"-quality", "95",
		outputFile,
	}

	cmd := p.command(args)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdf rasterization failed: %v - %s", err, stderr.String())
	}

	rendered, err := os.ReadFile(outputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered page: %w", err)
	}

	fmt.Printf("[Preprocessor] PDF page rendered: %d bytes -> %d bytes\n", len(pdfData), len(rendered))
	return rendered, nil
}
