package ledger

import "encoding/binary"

// Keyspace (byte-wise sortable, big-endian ids keep creation order):
// - streams/last_id                          -> id_be8
// - streams/{id_be8}                         -> JSON record
// - bysender/{sender_b64}:{id_be8}           -> id_be8
// - byrecipient/{recipient_b64}:{id_be8}     -> id_be8

var (
	streamsPrefix     = []byte("streams/")
	lastIDKey         = []byte("streams/last_id")
	bySenderPrefix    = []byte("bysender/")
	byRecipientPrefix = []byte("byrecipient/")
	idSep             = byte(':')
)

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// KeyLastID is the persistent id counter.
func KeyLastID() []byte { return append([]byte(nil), lastIDKey...) }

// KeyStream is the primary record key.
func KeyStream(id uint64) []byte {
	// streams/{id_be8}
	k := make([]byte, 0, len(streamsPrefix)+8)
	k = append(k, streamsPrefix...)
	return appendBE8(k, id)
}

// KeySenderIndexPrefix covers every sender index entry of one identity.
func KeySenderIndexPrefix(sender Address) []byte {
	return indexPrefix(bySenderPrefix, sender)
}

// KeyRecipientIndexPrefix covers every recipient index entry of one identity.
func KeyRecipientIndexPrefix(recipient Address) []byte {
	return indexPrefix(byRecipientPrefix, recipient)
}

func KeySenderIndex(sender Address, id uint64) []byte {
	// bysender/{sender_b64}:{id_be8}
	return appendBE8(KeySenderIndexPrefix(sender), id)
}

func KeyRecipientIndex(recipient Address, id uint64) []byte {
	// byrecipient/{recipient_b64}:{id_be8}
	return appendBE8(KeyRecipientIndexPrefix(recipient), id)
}

func indexPrefix(root []byte, a Address) []byte {
	enc := a.String()
	k := make([]byte, 0, len(root)+len(enc)+1+8)
	k = append(k, root...)
	k = append(k, enc...)
	return append(k, idSep)
}

func encodeID(id uint64) []byte { return appendBE8(nil, id) }

func decodeID(b []byte) (uint64, bool) {
	if len(b) != 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(b), true
}
