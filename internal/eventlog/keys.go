package eventlog

import "encoding/binary"

// Layout (byte-wise, lexicographically sortable):
// - evlog/{topic}/m                   last assigned seq
// - evlog/{topic}/e/{seq_be8}         entries
// - evlog/{topic}/c/{consumer}        durable consumer cursors

var (
	rootPrefix = []byte("evlog/")
	metaSuffix = []byte("/m")
	entrySeg   = []byte("/e/")
	cursorSeg  = []byte("/c/")
)

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

func topicKey(topic string, extra int) []byte {
	k := make([]byte, 0, len(rootPrefix)+len(topic)+extra)
	k = append(k, rootPrefix...)
	return append(k, topic...)
}

// KeyLogMeta is the key holding the topic's last sequence.
func KeyLogMeta(topic string) []byte {
	return append(topicKey(topic, len(metaSuffix)), metaSuffix...)
}

// KeyLogEntryPrefix covers every entry of a topic.
func KeyLogEntryPrefix(topic string) []byte {
	return append(topicKey(topic, len(entrySeg)+8), entrySeg...)
}

// KeyLogEntry builds the entry key with a big-endian sequence.
func KeyLogEntry(topic string, seq uint64) []byte {
	return appendBE8(KeyLogEntryPrefix(topic), seq)
}

// KeyCursor is the durable position of a named consumer.
func KeyCursor(topic, consumer string) []byte {
	k := append(topicKey(topic, len(cursorSeg)+len(consumer)), cursorSeg...)
	return append(k, consumer...)
}

func seqFromEntryKey(k []byte) uint64 {
	return binary.BigEndian.Uint64(k[len(k)-8:])
}
