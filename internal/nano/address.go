package nano

import (
	"strings"

	"github.com/AlexZinkM/nano-wallet/internal/crypto"
)

const (
	PrefixXRB  = "xrb_"
	PrefixNano = "nano_"

	alphabet = "13456789abcdefghijkmnopqrstuwxyz"

	// 256-bit key padded with 4 leading zero bits, 5 bits per character
	keyChars      = 52
	keyPadBits    = 4
	checksumChars = 8
	checksumSize  = 5
)

var reverseAlphabet = func() [256]byte {
	var r [256]byte
	for i := range r {
		r[i] = 0xff
	}
	for i := 0; i < len(alphabet); i++ {
		r[alphabet[i]] = byte(i)
	}
	return r
}()

// EncodeAddress returns the xrb_ address for pub.
func EncodeAddress(pub PublicKey) string {
	return EncodeAddressWithPrefix(pub, PrefixXRB)
}

// EncodeAddressWithPrefix returns the address for pub using prefix, which must
// be PrefixXRB or PrefixNano.
func EncodeAddressWithPrefix(pub PublicKey, prefix string) string {
	checksum := addressChecksum(pub)

	var sb strings.Builder
	sb.Grow(len(prefix) + keyChars + checksumChars)
	sb.WriteString(prefix)
	sb.Write(encode5(pub[:], keyPadBits))
	sb.Write(encode5(checksum[:], 0))
	return sb.String()
}

// DecodeAddress returns the public key encoded in address.
func DecodeAddress(address string) (PublicKey, error) {
	var pub PublicKey

	var body string
	switch {
	case strings.HasPrefix(address, PrefixXRB):
		body = address[len(PrefixXRB):]
	case strings.HasPrefix(address, PrefixNano):
		body = address[len(PrefixNano):]
	default:
		return pub, ErrInvalidPrefix
	}
	if len(body) != keyChars+checksumChars {
		return pub, ErrInvalidLength
	}

	padOK, err := decode5(body[:keyChars], keyPadBits, pub[:])
	if err != nil {
		return PublicKey{}, err
	}
	var checksum [checksumSize]byte
	if _, err := decode5(body[keyChars:], 0, checksum[:]); err != nil {
		return PublicKey{}, err
	}

	// Non-zero pad bits would alias another key's encoding; reject them as a
	// checksum failure so every single-character edit is caught.
	if !padOK || checksum != addressChecksum(pub) {
		return PublicKey{}, ErrInvalidChecksum
	}
	return pub, nil
}

// ValidAddress reports whether address decodes successfully.
func ValidAddress(address string) bool {
	_, err := DecodeAddress(address)
	return err == nil
}

// NormalizeAddress re-encodes address with the xrb_ prefix.
func NormalizeAddress(address string) (string, error) {
	pub, err := DecodeAddress(address)
	if err != nil {
		return "", err
	}
	return EncodeAddress(pub), nil
}

func addressChecksum(pub PublicKey) [checksumSize]byte {
	var out [checksumSize]byte
	// a 5-byte blake2b output size is always valid
	digest, _ := crypto.Digest(checksumSize, pub[:])
	for i := range out {
		out[i] = digest[checksumSize-1-i]
	}
	return out
}

// encode5 writes src as base32 characters, most significant bit first, after
// pad leading zero bits.
func encode5(src []byte, pad int) []byte {
	out := make([]byte, (len(src)*8+pad)/5)
	for i := range out {
		var v byte
		for j := 0; j < 5; j++ {
			v <<= 1
			bit := i*5 + j - pad
			if bit >= 0 && src[bit/8]&(0x80>>(bit%8)) != 0 {
				v |= 1
			}
		}
		out[i] = alphabet[v]
	}
	return out
}

// decode5 is the inverse of encode5. dst must be zeroed. padOK is false when
// any of the pad bits is set.
func decode5(s string, pad int, dst []byte) (padOK bool, err error) {
	padOK = true
	for i := 0; i < len(s); i++ {
		v := reverseAlphabet[s[i]]
		if v == 0xff {
			return false, ErrInvalidCharacter
		}
		for j := 0; j < 5; j++ {
			set := v&(0x10>>j) != 0
			bit := i*5 + j - pad
			if bit < 0 {
				if set {
					padOK = false
				}
				continue
			}
			if set {
				dst[bit/8] |= 0x80 >> (bit % 8)
			}
		}
	}
	return padOK, nil
}
