package store

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"
	"math"
)

// computeDigest hashes a run and its results. Strings are length-prefixed
// and integers big-endian, so distinct records never share an encoding.
func computeDigest(run *Run, results []Result) [32]byte {
	h := sha256.New()

	h.Write(run.ID[:])
	writeString(h, run.Source)
	writeString(h, run.Cipher)
	writeString(h, run.Engine)
	writeString(h, run.Method)
	writeUint(h, uint64(run.Shape))
	writeUint(h, run.Seed)
	writeUint(h, uint64(run.Capacity))
	h.Write(run.CiphertextHash[:])
	writeUint(h, uint64(run.CiphertextLen))
	writeUint(h, uint64(run.Evaluated))
	writeUint(h, uint64(run.Climbs))
	writeUint(h, uint64(run.StartedAt.UnixNano()))
	writeUint(h, uint64(run.Elapsed))

	writeUint(h, uint64(len(results)))
	for _, r := range results {
		writeUint(h, uint64(r.Rank))
		writeString(h, r.Key)
		writeUint(h, math.Float64bits(r.Score))
		writeString(h, r.Plaintext)
	}

	var result [32]byte
	copy(result[:], h.Sum(nil))
	return result
}

func writeUint(h hash.Hash, v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	h.Write(buf[:])
}

func writeString(h hash.Hash, s string) {
	writeUint(h, uint64(len(s)))
	h.Write([]byte(s))
}
