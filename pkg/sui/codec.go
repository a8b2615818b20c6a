package sui

import (
	"errors"
	"fmt"

	"github.com/fardream/go-bcs/bcs"
)

// DecodeErrorKind classifies decode failures.
type DecodeErrorKind uint8

const (
	// Malformed covers truncated input, trailing bytes and schema mismatches
	// such as unknown enum tags or impossible lengths.
	Malformed DecodeErrorKind = iota + 1
)

func (k DecodeErrorKind) String() string {
	switch k {
	case Malformed:
		return "malformed"
	default:
		return fmt.Sprintf("DecodeErrorKind(%d)", uint8(k))
	}
}

// DecodeError reports a checkpoint blob that could not be decoded.
type DecodeError struct {
	Kind     DecodeErrorKind
	Consumed int // bytes consumed before the failure, -1 when unknown
	Size     int
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode checkpoint: %s input (%d of %d bytes consumed): %v", e.Kind, e.Consumed, e.Size, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsMalformed reports whether err is, or wraps, a Malformed DecodeError.
func IsMalformed(err error) bool {
	var de *DecodeError
	return errors.As(err, &de) && de.Kind == Malformed
}

func malformed(consumed, size int, err error) *DecodeError {
	return &DecodeError{Kind: Malformed, Consumed: consumed, Size: size, Err: err}
}

// Encode serializes cp to BCS. This is the staging format of the checkpoint store.
func Encode(cp *CheckpointData) ([]byte, error) {
	if cp == nil {
		return nil, errors.New("encode checkpoint: nil checkpoint")
	}
	b, err := bcs.Marshal(cp)
	if err != nil {
		return nil, fmt.Errorf("encode checkpoint %d: %w", cp.Sequence(), err)
	}
	return b, nil
}

// Decode parses a BCS checkpoint. Any failure, including a panic inside the codec,
// is returned as a Malformed *DecodeError. The whole input must be consumed.
func Decode(b []byte) (cp *CheckpointData, err error) {
	if len(b) == 0 {
		return nil, malformed(0, 0, errors.New("empty input"))
	}

	defer func() {
		if r := recover(); r != nil {
			cp = nil
			err = malformed(-1, len(b), fmt.Errorf("codec panic: %v", r))
		}
	}()

	var out CheckpointData
	n, err := bcs.Unmarshal(b, &out)
	if err != nil {
		return nil, malformed(n, len(b), err)
	}
	if n != len(b) {
		return nil, malformed(n, len(b), fmt.Errorf("%d trailing bytes", len(b)-n))
	}
	return &out, nil
}
