package codec

import (
	"github.com/jaylikesbunda/PACKR/format"
	"github.com/jaylikesbunda/PACKR/internal/options"
)

// EncoderConfig holds an Encoder's construction-time settings.
type EncoderConfig struct {
	useLZ77     bool
	compression format.CompressionType
}

// EncoderOption configures an Encoder at construction time, following the
// functional-options pattern (internal/options.Option).
type EncoderOption = options.Option[*EncoderConfig]

func defaultEncoderConfig() EncoderConfig {
	return EncoderConfig{useLZ77: true, compression: format.CompressionNone}
}

// WithLZ77 toggles the mandatory-by-default LZ77 post-transform (spec
// §4.6). Disabling it is mainly useful for comparing raw token-stream size
// against the transformed size.
func WithLZ77(enabled bool) EncoderOption {
	return options.NoError(func(c *EncoderConfig) {
		c.useLZ77 = enabled
	})
}

// WithCompression selects an optional outer at-rest codec (spec §6.2)
// applied to the finished frame, on top of the LZ77 transform inside it.
func WithCompression(t format.CompressionType) EncoderOption {
	return options.NoError(func(c *EncoderConfig) {
		c.compression = t
	})
}

// DecoderConfig holds a Decoder's construction-time settings.
type DecoderConfig struct {
	compression format.CompressionType
}

// DecoderOption configures a Decoder at construction time.
type DecoderOption = options.Option[*DecoderConfig]

func defaultDecoderConfig() DecoderConfig {
	return DecoderConfig{compression: format.CompressionNone}
}

// WithDecompression selects the at-rest codec the framed bytes were
// compressed with, so Decoder can reverse it before parsing the frame.
func WithDecompression(t format.CompressionType) DecoderOption {
	return options.NoError(func(c *DecoderConfig) {
		c.compression = t
	})
}
