// Package blurhash implements the BlurHash placeholder format: a short
// base83 string holding the low-frequency cosine components of an image.
//
// Encode and Decode are pure functions over immutable inputs and are safe
// for concurrent use.
package blurhash

import "errors"

// Errors returned by the codec. They are wrapped with context, so match
// them with errors.Is.
var (
	// ErrInvalidCharacter is returned when a hash contains a character
	// outside the base83 alphabet.
	ErrInvalidCharacter = errors.New("blurhash: invalid base83 character")

	// ErrBadLength is returned when the hash length does not match the
	// component count announced by its size flag.
	ErrBadLength = errors.New("blurhash: bad hash length")

	// ErrInvalidSizeFlag is returned when the size flag decodes to a
	// component count outside [1, 9].
	ErrInvalidSizeFlag = errors.New("blurhash: invalid size flag")

	// ErrComponentCount is returned by the encoder for component counts
	// outside [1, 9].
	ErrComponentCount = errors.New("blurhash: component count out of range")

	// ErrValueOverflow is returned when a value does not fit in the
	// requested number of base83 digits.
	ErrValueOverflow = errors.New("blurhash: value overflows base83 digits")

	// ErrInvalidDimensions is returned for empty images or non-positive
	// output sizes.
	ErrInvalidDimensions = errors.New("blurhash: invalid dimensions")
)
