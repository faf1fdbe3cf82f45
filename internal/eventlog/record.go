package eventlog

import (
	"encoding/binary"
	"hash/crc32"
)

// Entry encoding: uvarint(len(header)) | header | payload | crc32c(header|payload)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

func checksum(header, payload []byte) uint32 {
	return crc32.Update(crc32.Update(0, castagnoli, header), castagnoli, payload)
}

func EncodeRecord(header, payload []byte) []byte {
	out := make([]byte, 0, binary.MaxVarintLen64+len(header)+len(payload)+4)
	out = binary.AppendUvarint(out, uint64(len(header)))
	out = append(out, header...)
	out = append(out, payload...)
	return binary.BigEndian.AppendUint32(out, checksum(header, payload))
}

type Decoded struct {
	Header  []byte
	Payload []byte
}

// DecodeRecord returns copies of header and payload, or false when the entry
// is truncated or fails its checksum.
func DecodeRecord(b []byte) (Decoded, bool) {
	if len(b) < 5 {
		return Decoded{}, false
	}
	hlen, n := binary.Uvarint(b)
	if n <= 0 || hlen > uint64(len(b)) || n+int(hlen)+4 > len(b) {
		return Decoded{}, false
	}
	header := b[n : n+int(hlen)]
	payload := b[n+int(hlen) : len(b)-4]
	if checksum(header, payload) != binary.BigEndian.Uint32(b[len(b)-4:]) {
		return Decoded{}, false
	}
	return Decoded{Header: append([]byte(nil), header...), Payload: append([]byte(nil), payload...)}, true
}

// TimestampHeader encodes a write time (ms) as the first 8 header bytes,
// followed by extra.
func TimestampHeader(ms int64, extra []byte) []byte {
	h := binary.BigEndian.AppendUint64(make([]byte, 0, 8+len(extra)), uint64(ms))
	return append(h, extra...)
}

// HeaderTimestamp is the HeaderTimestampExtractor for TimestampHeader.
func HeaderTimestamp(h []byte) (int64, bool) {
	if len(h) < 8 {
		return 0, false
	}
	return int64(binary.BigEndian.Uint64(h[:8])), true
}
