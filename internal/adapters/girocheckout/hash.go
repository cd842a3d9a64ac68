package girocheckout

import (
	"crypto/hmac"
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Field names that carry a signature and are therefore excluded from the
// signature input.
const (
	hashField          = "hash"
	notifyHashField    = "gcHash"
	responseHashHeader = "hash"
)

// Sign computes the request hash: the field values (never the keys),
// concatenated in map order with no separator, excluding any hash field,
// MACed with HMAC-MD5 under the shared project passphrase. Lowercase hex.
//
// An empty map signs the empty string; that is a valid hash, not an error.
func Sign(f *Fields, passphrase string) string {
	var sb strings.Builder
	for _, k := range f.keys {
		if k == hashField || k == notifyHashField {
			continue
		}
		sb.WriteString(f.values[k])
	}
	return macHex([]byte(sb.String()), passphrase)
}

// Verify checks a supplied hash against the map in constant time.
func Verify(f *Fields, supplied, passphrase string) bool {
	return hmac.Equal([]byte(Sign(f, passphrase)), []byte(supplied))
}

// SignBody computes the hash of a direct API response: HMAC-MD5 over the raw
// body bytes, not the parsed fields.
func SignBody(body []byte, passphrase string) string {
	return macHex(body, passphrase)
}

// VerifyBody checks the hash delivered in the response header against the
// body bytes.
func VerifyBody(body []byte, supplied, passphrase string) bool {
	return hmac.Equal([]byte(SignBody(body, passphrase)), []byte(supplied))
}

func macHex(msg []byte, passphrase string) string {
	mac := hmac.New(md5.New, []byte(passphrase))
	mac.Write(msg)
	return hex.EncodeToString(mac.Sum(nil))
}
