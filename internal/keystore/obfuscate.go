package keystore

import (
	"encoding/base64"
	"unicode/utf8"
)

// passphrase must never change: values written by earlier installs are
// decoded with it.
const passphrase = "supersoniq-insights-v1"

// Obfuscate XORs every byte of plain with the fixed passphrase and
// base64-encodes the result.
//
// This is NOT encryption. Anyone holding this source (or the stored value and
// a little patience) can recover the key. It only keeps credentials out of a
// plain-text grep of the backing store. A stronger scheme needs a new,
// versioned storage format and an explicit migration.
func Obfuscate(plain string) string {
	return base64.StdEncoding.EncodeToString(xor([]byte(plain)))
}

// Deobfuscate reverses Obfuscate. Corrupt or foreign values yield "".
func Deobfuscate(stored string) string {
	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return ""
	}
	out := xor(raw)
	if !utf8.Valid(out) {
		return ""
	}
	return string(out)
}

func xor(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[i] = b[i] ^ passphrase[i%len(passphrase)]
	}
	return out
}

// Mask renders a key for display, keeping only its last four characters.
func Mask(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "..." + key
	}
	return "..." + key[len(key)-4:]
}
