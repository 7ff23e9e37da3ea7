package ai

// Provider abstracts the LLM backend used for invoice extraction. The prompt
// is always sent; imageBase64 is a data URL and may be empty when extraction
// runs on an extracted text layer instead of the scanned page.
type Provider interface {
	ExtractData(prompt string, imageBase64 string) (string, error)
}
