package restclient

// MaxLogChunk is the largest message the logging transport passes through
// intact (rsyslog over UDP caps at 64KB; 64000 leaves room for metadata).
const MaxLogChunk = 64000

// SplitChunks partitions msg into segments of at most MaxLogChunk bytes of
// its UTF-8 encoding. Empty input yields nil; input under the limit comes
// back as a single unmodified chunk. Bytes are never reordered or dropped,
// and cut points are byte-positional: the caller owns UTF-8 safety at the
// boundaries.
func SplitChunks(msg string) []string {
	if msg == "" {
		return nil
	}
	b := []byte(msg)
	if len(b) < MaxLogChunk {
		return []string{msg}
	}
	chunks := make([]string, 0, len(b)/MaxLogChunk+1)
	for start := 0; start < len(b); start += MaxLogChunk {
		end := start + MaxLogChunk
		if end > len(b) {
			end = len(b)
		}
		chunks = append(chunks, string(b[start:end]))
	}
	return chunks
}
