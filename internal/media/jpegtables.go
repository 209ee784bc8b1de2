package media

import (
	"bytes"
	"image"
	"image/jpeg"
	"sync"
)

const (
	markerSOI = 0xD8
	markerDQT = 0xDB
	markerSOS = 0xDA
)

// quantTables maps a table slot to its precision byte followed by the table
// entries as stored in the file.
type quantTables map[byte][]byte

var (
	referenceMu     sync.Mutex
	referenceTables = map[int]quantTables{}
)

// hasEncoderTables reports whether data is a JPEG whose quantization tables
// match the ones the encoder writes at quality. Such files would come back
// from a re-encode with the same tables, so they are kept as they are.
func hasEncoderTables(data []byte, quality int) bool {
	tables, ok := readQuantTables(data)
	if !ok || len(tables) == 0 {
		return false
	}
	reference := encoderTables(quality)
	for slot, table := range tables {
		want, ok := reference[slot]
		if !ok || !bytes.Equal(table, want) {
			return false
		}
	}
	return true
}

func encoderTables(quality int) quantTables {
	referenceMu.Lock()
	defer referenceMu.Unlock()
	if tables, ok := referenceTables[quality]; ok {
		return tables
	}
	var buf bytes.Buffer
	sample := image.NewRGBA(image.Rect(0, 0, 8, 8))
	if err := jpeg.Encode(&buf, sample, &jpeg.Options{Quality: quality}); err != nil {
		return nil
	}
	tables, _ := readQuantTables(buf.Bytes())
	referenceTables[quality] = tables
	return tables
}

// readQuantTables walks the marker segments up to the first scan and collects
// every DQT table.
func readQuantTables(data []byte) (quantTables, bool) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != markerSOI {
		return nil, false
	}
	tables := quantTables{}
	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			return nil, false
		}
		marker := data[pos+1]
		if marker == 0xFF {
			pos++
			continue
		}
		if marker == markerSOS {
			return tables, true
		}
		length := int(data[pos+2])<<8 | int(data[pos+3])
		if length < 2 || pos+2+length > len(data) {
			return nil, false
		}
		segment := data[pos+4 : pos+2+length]
		if marker == markerDQT && !parseDQT(segment, tables) {
			return nil, false
		}
		pos += 2 + length
	}
	return nil, false
}

func parseDQT(segment []byte, tables quantTables) bool {
	for len(segment) > 0 {
		info := segment[0]
		size := 64
		if info>>4 == 1 {
			size = 128
		}
		if len(segment) < 1+size {
			return false
		}
		table := make([]byte, 1+size)
		copy(table, segment[:1+size])
		tables[info&0x0F] = table
		segment = segment[1+size:]
	}
	return true
}
