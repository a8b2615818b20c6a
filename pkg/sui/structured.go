package sui

import (
	"encoding/json"
	"fmt"
)

// Document is the structured form of a checkpoint: indented JSON mirroring
// CheckpointData field for field.
type Document []byte

// ToStructured renders cp as a Document.
func ToStructured(cp *CheckpointData) (Document, error) {
	b, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("structure checkpoint %d: %w", cp.Sequence(), err)
	}
	return Document(b), nil
}

// FromStructured parses a Document back into a typed checkpoint.
func FromStructured(doc Document) (*CheckpointData, error) {
	var cp CheckpointData
	if err := json.Unmarshal(doc, &cp); err != nil {
		return nil, fmt.Errorf("parse structured checkpoint: %w", err)
	}
	return &cp, nil
}
