package ocr

// InputOption mutates an OCR input before submission.
type InputOption func(*Input)

// WithLanguages sets language hints on the OCR input.
func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithDPI overrides the DPI value on the OCR input.
func WithDPI(dpi int) InputOption {
	return func(in *Input) { in.DPI = dpi }
}

// WithMetadata sets provider-specific metadata for the input.
func WithMetadata(metadata map[string]string) InputOption {
	return func(in *Input) {
		if len(metadata) == 0 {
			in.Metadata = nil
			return
		}
		in.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			in.Metadata[k] = v
		}
	}
}

// NewImageInput builds an Input for an encoded page raster.
func NewImageInput(id string, page int, image []byte, format ImageFormat, opts ...InputOption) Input {
	in := Input{
		ID:        id,
		Image:     image,
		Format:    format,
		PageIndex: page,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}
