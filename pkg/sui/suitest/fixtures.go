// Package suitest builds deterministic checkpoints for tests. Every list in a
// built value is non-empty so that decoded copies compare equal to the original.
package suitest

import (
	"github.com/ava-labs/checkpoint-indexer/pkg/sui"
)

// TargetPackage is the package the indexer watches by default.
const TargetPackage = "0x8d7866b423b15c3ae4c3b3737a4cd483b2ac720c3f1cf7dd67403f5a2dfa01d9"

// Sequence is the default start checkpoint on testnet.
const Sequence uint64 = 213411264

// Address returns an address whose bytes are all b.
func Address(b byte) sui.Address {
	var a sui.Address
	for i := range a {
		a[i] = b
	}
	return a
}

// Digest returns a digest whose bytes are all b.
func Digest(b byte) sui.Digest {
	var d sui.Digest
	for i := range d {
		d[i] = b
	}
	return d
}

func u16(v uint16) *uint16 { return &v }

// MoveCall builds a MoveCall command against pkg.
func MoveCall(pkg sui.ObjectID, module, function string) sui.Command {
	return sui.Command{MoveCall: &sui.ProgrammableMoveCall{
		Package:       pkg,
		Module:        module,
		Function:      function,
		TypeArguments: []sui.TypeTag{{U64: &sui.Unit{}}},
		Arguments:     []sui.Argument{{Input: u16(0)}, {GasCoin: &sui.Unit{}}},
	}}
}

// TransferObjects builds a command that is not a MoveCall.
func TransferObjects() sui.Command {
	return sui.Command{TransferObjects: &sui.TransferObjects{
		Objects: []sui.Argument{{Result: u16(0)}, {NestedResult: &[2]uint16{0, 1}}},
		Address: sui.Argument{Input: u16(1)},
	}}
}

// Inputs returns a pure and a shared-object input.
func Inputs() []sui.CallArg {
	pure := sui.Bytes{0x2a, 0, 0, 0, 0, 0, 0, 0}
	return []sui.CallArg{
		{Pure: &pure},
		{Object: &sui.ObjectArg{SharedObject: &sui.SharedObjectRef{
			ID:                   Address(0x06),
			InitialSharedVersion: 1,
			Mutable:              true,
		}}},
	}
}

// Signed wraps a programmable transaction from sender.
func Signed(sender sui.Address, inputs []sui.CallArg, cmds ...sui.Command) sui.SenderSignedTransaction {
	return sui.SenderSignedTransaction{
		IntentMessage: sui.IntentMessage{
			Value: sui.TransactionData{V1: &sui.TransactionDataV1{
				Kind: sui.TransactionKind{ProgrammableTransaction: &sui.ProgrammableTransaction{
					Inputs:   inputs,
					Commands: cmds,
				}},
				Sender: sender,
				GasData: sui.GasData{
					Payment: []sui.ObjectRef{{ObjectID: Address(0x0a), Version: 7, Digest: Digest(0x0b)}},
					Owner:   sender,
					Price:   750,
					Budget:  50_000_000,
				},
				Expiration: sui.TransactionExpiration{None: &sui.Unit{}},
			}},
		},
		TxSignatures: []sui.Bytes{{0x00, 0x01, 0x02}},
	}
}

// Gas is the gas summary attached by Tx.
var Gas = sui.GasCostSummary{
	ComputationCost:         1_000_000,
	StorageCost:             2_964_000,
	StorageRebate:           978_120,
	NonRefundableStorageFee: 9_880,
}

// GasCoin returns a SUI coin object owned by owner.
func GasCoin(id sui.ObjectID, owner sui.Address, version uint64) sui.Object {
	contents := make(sui.Bytes, 0, 40)
	contents = append(contents, id[:]...)
	contents = append(contents, 0x00, 0xe1, 0xf5, 0x05, 0, 0, 0, 0)
	return sui.Object{
		Data: sui.ObjectData{Move: &sui.MoveObject{
			Type:              sui.MoveObjectType{GasCoin: &sui.Unit{}},
			HasPublicTransfer: true,
			Version:           version,
			Contents:          contents,
		}},
		Owner:               sui.Owner{AddressOwner: &owner},
		PreviousTransaction: Digest(0x10),
		StorageRebate:       988_000,
	}
}

// Tx assembles a checkpoint transaction with V2 effects and one event. The gas
// coin of the first entry's sender is read and written.
func Tx(entries ...sui.SenderSignedTransaction) sui.CheckpointTransaction {
	var owner sui.Address
	if len(entries) > 0 && entries[0].IntentMessage.Value.V1 != nil {
		owner = entries[0].IntentMessage.Value.V1.Sender
	}
	gasIndex := uint32(0)
	eventsDigest := Digest(0x11)
	return sui.CheckpointTransaction{
		Transaction: sui.Transaction{Data: entries},
		Effects: sui.TransactionEffects{V2: &sui.TransactionEffectsV2{
			Status:            sui.ExecutionStatus{Success: &sui.Unit{}},
			ExecutedEpoch:     512,
			GasUsed:           Gas,
			TransactionDigest: Digest(0x0c),
			GasObjectIndex:    &gasIndex,
			EventsDigest:      &eventsDigest,
			Dependencies:      []sui.Digest{Digest(0x0d)},
			LamportVersion:    99,
			ChangedObjects: []sui.ChangedObject{{
				ID: Address(0x0a),
				Change: sui.EffectsObjectChange{
					InputState: sui.ObjectIn{Exist: &sui.ObjectInState{
						Version: 7,
						Digest:  Digest(0x0b),
						Owner:   sui.Owner{AddressOwner: &owner},
					}},
					OutputState: sui.ObjectOut{ObjectWrite: &sui.ObjectWrite{
						Digest: Digest(0x12),
						Owner:  sui.Owner{AddressOwner: &owner},
					}},
					IDOperation: sui.IDOperation{None: &sui.Unit{}},
				},
			}},
			UnchangedSharedObjects: []sui.UnchangedSharedObject{{
				ID:   Address(0x06),
				Kind: sui.UnchangedSharedKind{ReadOnlyRoot: &sui.VersionDigest{Version: 1, Digest: Digest(0x13)}},
			}},
		}},
		Events: &sui.TransactionEvents{Data: []sui.Event{{
			PackageID:         Address(0x0e),
			TransactionModule: "nft",
			Sender:            Address(0x0f),
			Type: sui.StructTag{
				Address:    Address(0x0e),
				Module:     "nft",
				Name:       "Minted",
				TypeParams: []sui.TypeTag{{Address: &sui.Unit{}}},
			},
			Contents: sui.Bytes{0x01},
		}}},
		InputObjects:  []sui.Object{GasCoin(Address(0x0a), owner, 7)},
		OutputObjects: []sui.Object{GasCoin(Address(0x0a), owner, 99)},
	}
}

// Checkpoint assembles a checkpoint at seq whose contents list txs.
func Checkpoint(seq uint64, txs ...sui.CheckpointTransaction) *sui.CheckpointData {
	prev := Digest(0x01)
	contents := &sui.CheckpointContentsV1{
		Transactions:   make([]sui.ExecutionDigests, 0, len(txs)),
		UserSignatures: make([][]sui.Bytes, 0, len(txs)),
	}
	for _, tx := range txs {
		contents.Transactions = append(contents.Transactions, sui.ExecutionDigests{
			Transaction: Digest(0x14),
			Effects:     Digest(0x15),
		})
		sigs := []sui.Bytes{}
		if len(tx.Transaction.Data) > 0 {
			sigs = tx.Transaction.Data[0].TxSignatures
		}
		contents.UserSignatures = append(contents.UserSignatures, sigs)
	}

	return &sui.CheckpointData{
		CheckpointSummary: sui.CertifiedCheckpointSummary{
			Data: sui.CheckpointSummary{
				Epoch:                      512,
				SequenceNumber:             seq,
				NetworkTotalTransactions:   3_000_000_000 + seq,
				ContentDigest:              Digest(0x02),
				PreviousDigest:             &prev,
				EpochRollingGasCostSummary: Gas,
				TimestampMs:                1_730_000_000_000,
				CheckpointCommitments: []sui.CheckpointCommitment{{
					ECMHLiveObjectSetDigest: &sui.ECMHLiveObjectSetDigest{Digest: Digest(0x03)},
				}},
				VersionSpecificData: sui.Bytes{0x00, 0x00},
			},
			AuthSignature: sui.AuthorityQuorumSignInfo{
				Epoch:      512,
				Signature:  Repeat(0x04, 48),
				SignersMap: sui.Bytes{0x3a, 0x30, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00},
			},
		},
		CheckpointContents: sui.CheckpointContents{V1: contents},
		Transactions:       txs,
	}
}

// Repeat returns n copies of b.
func Repeat(b byte, n int) sui.Bytes {
	out := make(sui.Bytes, n)
	for i := range out {
		out[i] = b
	}
	return out
}

// Minting returns a checkpoint with one transaction calling TargetPackage::nft::mint from sender.
func Minting(seq uint64, sender sui.Address) *sui.CheckpointData {
	target := sui.MustParseAddress(TargetPackage)
	return Checkpoint(seq, Tx(Signed(sender, Inputs(), MoveCall(target, "nft", "mint"), TransferObjects())))
}

// MustEncode is sui.Encode for fixtures.
func MustEncode(cp *sui.CheckpointData) []byte {
	b, err := sui.Encode(cp)
	if err != nil {
		panic(err)
	}
	return b
}
