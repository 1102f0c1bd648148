// Package ocr defines the abstraction for plugging optical character
// recognition providers into the redaction pipeline. The interface is
// intentionally small and transport-agnostic: one image in, recognized
// words with pixel boxes out. Engines can be backed by native libraries
// (see ocr/tesseract) or remote services without leaking provider
// concerns into callers.
package ocr
