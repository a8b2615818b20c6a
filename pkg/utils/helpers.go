package utils

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// HexToBytes32 converts a hex string (with or without 0x prefix) to a 32-byte array.
// Short input is left-padded with zeros, so "0x2" is the same identifier as its
// 64-digit form. Input longer than 32 bytes is rejected.
func HexToBytes32(hexStr string) ([32]byte, error) {
	if len(hexStr) >= 2 && (hexStr[0:2] == "0x" || hexStr[0:2] == "0X") {
		hexStr = hexStr[2:]
	}
	if len(hexStr) > 64 {
		return [32]byte{}, fmt.Errorf("hex string too long: %d digits, max 64", len(hexStr))
	}
	hexStr = strings.Repeat("0", 64-len(hexStr)) + hexStr
	bytes, err := hex.DecodeString(hexStr)
	if err != nil {
		return [32]byte{}, err
	}
	var result [32]byte
	copy(result[:], bytes)
	return result, nil
}

// Bytes32ToHex renders b in the canonical form used for addresses and object IDs:
// 0x followed by 64 lowercase hex digits.
func Bytes32ToHex(b [32]byte) string {
	return "0x" + hex.EncodeToString(b[:])
}

// CanonicalHex32 normalizes a 32-byte hex identifier to its canonical form.
func CanonicalHex32(hexStr string) (string, error) {
	b, err := HexToBytes32(hexStr)
	if err != nil {
		return "", err
	}
	return Bytes32ToHex(b), nil
}
