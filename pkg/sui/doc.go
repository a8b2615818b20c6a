// Package sui models Sui checkpoint data as the checkpoint bucket serves it:
// the certified summary, the checkpoint contents, and every transaction with
// its effects, events and the objects it read and wrote.
//
// Values have two encodings. The binary one is BCS and is what the checkpoint
// store holds on disk; Encode and Decode convert between it and CheckpointData
// and reproduce a blob byte for byte. The structured one is JSON in the
// externally tagged enum layout ({"Variant": payload}, or "Variant" for unit
// variants); ToStructured and FromStructured convert between it and
// CheckpointData.
//
// Enums are structs whose fields are pointers, one per variant, in tag order.
// Exactly one field is set on a valid value. Tuples are structs with named
// fields and maps are key-ordered pair lists; both share the wire layout of the
// types they stand for.
package sui
