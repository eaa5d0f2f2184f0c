package extract

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

const (
	utf8DecoderName = "utf-8"

	errorUnknownEncodingFormat      = "unknown encoding %q"
	errorUnsupportedEncodingFormat  = "encoding %q is not a single-byte charmap"
	errorInvalidUTF8Format          = "invalid utf-8 byte 0x%02x at offset %d"
	errorUndefinedCharmapByteFormat = "%s cannot decode byte 0x%02x at offset %d"
)

// ErrUndecodable marks content that a Decoder could not turn into text.
var ErrUndecodable = errors.New("undecodable content")

// encodingAliases maps common spellings that the IANA index does not list.
var encodingAliases = map[string]string{
	"latin-1": "ISO-8859-1",
	"latin_1": "ISO-8859-1",
	"cp1252":  "windows-1252",
}

// Decoder turns raw file bytes into text.
type Decoder interface {
	Name() string
	Decode(data []byte) (string, error)
}

// UTF8Decoder accepts only well-formed UTF-8.
type UTF8Decoder struct{}

// Name returns the encoding name.
func (UTF8Decoder) Name() string {
	return utf8DecoderName
}

// Decode returns data as a string or an ErrUndecodable error naming the first invalid byte.
func (UTF8Decoder) Decode(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	offset := 0
	for offset < len(data) {
		decodedRune, runeWidth := utf8.DecodeRune(data[offset:])
		if decodedRune == utf8.RuneError && runeWidth <= 1 {
			break
		}
		offset += runeWidth
	}
	return "", fmt.Errorf("%w: "+errorInvalidUTF8Format, ErrUndecodable, data[offset], offset)
}

// CharmapDecoder decodes a legacy single-byte encoding.
// Bytes the charmap leaves undefined are decode errors rather than replacement characters.
type CharmapDecoder struct {
	name    string
	charmap *charmap.Charmap
}

// NewCharmapDecoder resolves name through the IANA index.
func NewCharmapDecoder(name string) (*CharmapDecoder, error) {
	lookupName := strings.TrimSpace(name)
	if alias, found := encodingAliases[strings.ToLower(lookupName)]; found {
		lookupName = alias
	}
	encoding, lookupError := ianaindex.IANA.Encoding(lookupName)
	if lookupError != nil || encoding == nil {
		return nil, fmt.Errorf(errorUnknownEncodingFormat, name)
	}
	singleByteCharmap, isCharmap := encoding.(*charmap.Charmap)
	if !isCharmap {
		return nil, fmt.Errorf(errorUnsupportedEncodingFormat, name)
	}
	return &CharmapDecoder{name: singleByteCharmap.String(), charmap: singleByteCharmap}, nil
}

// Name returns the canonical charmap name.
func (decoder *CharmapDecoder) Name() string {
	return decoder.name
}

// Decode maps every byte through the charmap.
func (decoder *CharmapDecoder) Decode(data []byte) (string, error) {
	var builder strings.Builder
	builder.Grow(len(data))
	for offset, byteValue := range data {
		decodedRune := decoder.charmap.DecodeByte(byteValue)
		if decodedRune == utf8.RuneError {
			return "", fmt.Errorf("%w: "+errorUndefinedCharmapByteFormat, ErrUndecodable, decoder.name, byteValue, offset)
		}
		builder.WriteRune(decodedRune)
	}
	return builder.String(), nil
}
