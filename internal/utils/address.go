package utils

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

const addressHexLen = 40

// IsValidAddress reports whether s is a 0x-prefixed 20-byte hex address. All-lowercase and
// all-uppercase forms are accepted as-is; mixed-case input must carry a valid EIP-55 checksum.
func IsValidAddress(s string) bool {
	if len(s) != addressHexLen+2 || !(strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		return false
	}
	body := s[2:]
	if _, err := hex.DecodeString(body); err != nil {
		return false
	}
	lower := strings.ToLower(body)
	upper := strings.ToUpper(body)
	if body == lower || body == upper {
		return true
	}
	return ChecksumAddress(s) == "0x"+body
}

// ChecksumAddress returns the EIP-55 mixed-case form of a hex address.
// The caller is expected to pass a syntactically valid address.
func ChecksumAddress(s string) string {
	body := strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
	hash := Keccak256([]byte(body))

	out := make([]byte, len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c >= 'a' && c <= 'f' {
			nibble := hash[i/2]
			if i%2 == 0 {
				nibble >>= 4
			} else {
				nibble &= 0x0f
			}
			if nibble >= 8 {
				c -= 'a' - 'A'
			}
		}
		out[i] = c
	}
	return "0x" + string(out)
}

// NormalizeAddress validates s and returns its checksummed form.
func NormalizeAddress(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !IsValidAddress(s) {
		return "", false
	}
	return ChecksumAddress(s), true
}

// Keccak256 returns the legacy Keccak-256 digest used by Ethereum.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// AddressFromHash derives a checksummed address from the last 20 bytes of a 32-byte digest.
func AddressFromHash(digest []byte) string {
	return ChecksumAddress(hex.EncodeToString(digest[len(digest)-addressHexLen/2:]))
}

// HexHash renders a digest as a 0x-prefixed lowercase hex string.
func HexHash(digest []byte) string {
	return "0x" + hex.EncodeToString(digest)
}
