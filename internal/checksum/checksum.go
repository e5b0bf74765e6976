// Package checksum computes the content digests used as note ETags.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/starford/notechat/internal/models"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Note digests every mutable field of n, so any change to the note
// (including a bare lastModified bump) yields a new value.
func Note(n models.Note) string {
	buf := make([]byte, 0, len(n.Title)+len(n.Content)+64)
	buf = append(buf, n.Title...)
	buf = append(buf, 0)
	buf = append(buf, n.Content...)
	buf = append(buf, 0)
	buf = strconv.AppendBool(buf, n.Completed)
	buf = append(buf, 0)
	buf = strconv.AppendBool(buf, n.IsDeleted)
	buf = append(buf, 0)
	buf = n.LastModified.UTC().AppendFormat(buf, time.RFC3339Nano)
	return Sum(buf)
}
