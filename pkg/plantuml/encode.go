package plantuml

import (
	"bytes"
	"compress/flate"
	"strings"

	perrors "github.com/pumldock/pumldock/pkg/errors"
)

// alphabet is PlantUML's URL-safe character set, in server order.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_"

// Encode compresses diagram text with raw DEFLATE and packs the compressed
// bytes into PlantUML's 64-character alphabet. The result embeds directly
// into render URLs.
func Encode(text string) (string, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", perrors.Wrap(perrors.ErrCodeInternal, err, "initialize deflate")
	}
	if _, err := w.Write([]byte(text)); err != nil {
		return "", perrors.Wrap(perrors.ErrCodeInternal, err, "compress diagram text")
	}
	if err := w.Close(); err != nil {
		return "", perrors.Wrap(perrors.ErrCodeInternal, err, "flush deflate stream")
	}
	return encode64(buf.Bytes()), nil
}

// encode64 packs bytes 3-at-a-time into 4 alphabet characters. Trailing
// groups are zero-padded, matching the reference encoder used by PlantUML
// servers (no padding characters are emitted).
func encode64(data []byte) string {
	var sb strings.Builder
	sb.Grow((len(data) + 2) / 3 * 4)
	for i := 0; i < len(data); i += 3 {
		var b2, b3 byte
		if i+1 < len(data) {
			b2 = data[i+1]
		}
		if i+2 < len(data) {
			b3 = data[i+2]
		}
		append3(&sb, data[i], b2, b3)
	}
	return sb.String()
}

func append3(sb *strings.Builder, b1, b2, b3 byte) {
	sb.WriteByte(alphabet[b1>>2])
	sb.WriteByte(alphabet[((b1&0x3)<<4)|(b2>>4)])
	sb.WriteByte(alphabet[((b2&0xF)<<2)|(b3>>6)])
	sb.WriteByte(alphabet[b3&0x3F])
}
