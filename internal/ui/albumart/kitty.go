package albumart

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"
)

const (
	escStart = "\x1b_G"
	escEnd   = "\x1b\\"

	// Payload chunks may not exceed 4096 bytes of base64.
	chunkSize = 4096
)

// TransmitImage encodes img as PNG and returns the sequence storing it in
// the terminal under id without displaying it.
func TransmitImage(img image.Image, id uint32) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return transmitPNG(buf.Bytes(), id), nil
}

// transmitPNG chunks the payload. The first chunk carries the control keys:
// a=t transmit only, f=100 PNG, q=2 quiet; m=1 means more chunks follow.
func transmitPNG(data []byte, id uint32) string {
	encoded := base64.StdEncoding.EncodeToString(data)

	var sb strings.Builder
	for i := 0; i < len(encoded); i += chunkSize {
		end := min(i+chunkSize, len(encoded))
		more := 0
		if end < len(encoded) {
			more = 1
		}

		sb.WriteString(escStart)
		if i == 0 {
			fmt.Fprintf(&sb, "a=t,f=100,i=%d,q=2,m=%d;", id, more)
		} else {
			fmt.Fprintf(&sb, "m=%d;", more)
		}
		sb.WriteString(encoded[i:end])
		sb.WriteString(escEnd)
	}
	return sb.String()
}

// PlaceImage displays a transmitted image at the 1-based row and column,
// scaled to width x height cells. The fixed placement id p=1 makes each
// placement replace the previous one.
func PlaceImage(id uint32, row, col, width, height int) string {
	return fmt.Sprintf("\x1b[s\x1b[%d;%dH%sa=p,i=%d,p=1,c=%d,r=%d,C=1,q=2;%s\x1b[u",
		row, col, escStart, id, width, height, escEnd)
}

// DeleteImage frees a transmitted image and its placements.
func DeleteImage(id uint32) string {
	return fmt.Sprintf("%sa=d,d=i,i=%d,q=2;%s", escStart, id, escEnd)
}

// BlankPlaceholder returns height lines of width spaces.
func BlankPlaceholder(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	lines := make([]string, height)
	for i := range lines {
		lines[i] = strings.Repeat(" ", width)
	}
	return strings.Join(lines, "\n")
}
