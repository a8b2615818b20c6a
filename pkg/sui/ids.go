package sui

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mr-tron/base58"

	"github.com/ava-labs/checkpoint-indexer/pkg/utils"
)

// Address is a 32-byte account address.
type Address [32]byte

// ObjectID identifies objects and packages; it shares the address space.
type ObjectID = Address

// ParseAddress accepts 0x-prefixed or bare hex, left-padding short forms such as "0x2".
func ParseAddress(s string) (Address, error) {
	b, err := utils.HexToBytes32(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return Address(b), nil
}

// MustParseAddress is ParseAddress for constants and fixtures.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Address) String() string {
	return utils.Bytes32ToHex(a)
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Digest is a 32-byte hash; its text form is base58. On the wire it is a
// length-prefixed byte string, so it takes 33 bytes where an Address takes 32.
type Digest [digestLen]byte

const digestLen = 32

func (d Digest) MarshalBCS() ([]byte, error) {
	out := make([]byte, 0, digestLen+1)
	out = append(out, digestLen)
	return append(out, d[:]...), nil
}

func (d *Digest) UnmarshalBCS(r io.Reader) (int, error) {
	var buf [digestLen + 1]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		return n, fmt.Errorf("read digest: %w", err)
	}
	if buf[0] != digestLen {
		return n, fmt.Errorf("digest length %d, want %d", buf[0], digestLen)
	}
	copy(d[:], buf[1:])
	return n, nil
}

func (d Digest) String() string {
	return base58.Encode(d[:])
}

func (d Digest) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Digest) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("invalid digest %q: %w", s, err)
	}
	if len(b) != len(d) {
		return fmt.Errorf("invalid digest %q: %d bytes, want %d", s, len(b), len(d))
	}
	copy(d[:], b)
	return nil
}

// Bytes is an opaque byte string. It encodes to JSON as an array of numbers
// rather than base64 so structured documents show the raw values.
type Bytes []byte

func (b Bytes) MarshalJSON() ([]byte, error) {
	nums := make([]uint16, len(b))
	for i, v := range b {
		nums[i] = uint16(v)
	}
	return json.Marshal(nums)
}

func (b *Bytes) UnmarshalJSON(data []byte) error {
	var nums []uint8
	if err := json.Unmarshal(data, &nums); err != nil {
		return fmt.Errorf("invalid byte array: %w", err)
	}
	*b = Bytes(nums)
	return nil
}
