package sui_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/checkpoint-indexer/pkg/sui"
	"github.com/ava-labs/checkpoint-indexer/pkg/sui/suitest"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cp   *sui.CheckpointData
	}{
		{
			name: "minting checkpoint",
			cp:   suitest.Minting(suitest.Sequence, suitest.Address(0xab)),
		},
		{
			name: "multiple transactions and signers",
			cp: suitest.Checkpoint(42,
				suitest.Tx(suitest.Signed(suitest.Address(0x01), suitest.Inputs(), suitest.TransferObjects())),
				suitest.Tx(
					suitest.Signed(suitest.Address(0x02), suitest.Inputs(), suitest.TransferObjects()),
					suitest.Signed(suitest.Address(0x03), suitest.Inputs(), suitest.MoveCall(suitest.Address(0x04), "m", "f")),
				),
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, err := sui.Encode(tt.cp)
			require.NoError(t, err)

			got, err := sui.Decode(b)
			require.NoError(t, err)
			require.Equal(t, tt.cp, got)

			again, err := sui.Encode(got)
			require.NoError(t, err)
			require.True(t, bytes.Equal(b, again), "re-encoding changed the staged bytes")
		})
	}
}

func TestDecode_LiveCheckpoint(t *testing.T) {
	t.Parallel()
	blob := suitest.Live(suitest.Sequence, suitest.Address(0xab))

	cp, err := sui.Decode(blob)
	require.NoError(t, err)

	again, err := sui.Encode(cp)
	require.NoError(t, err)
	require.True(t, bytes.Equal(blob, again), "re-encoding changed the checkpoint bytes")

	assert.Equal(t, suitest.Sequence, cp.Sequence())
	assert.Equal(t, suitest.Digest(0x02), cp.CheckpointSummary.Data.ContentDigest)
	assert.Equal(t, uint64(512), cp.CheckpointSummary.AuthSignature.Epoch)
	assert.Len(t, cp.CheckpointSummary.AuthSignature.Signature, 48)
	require.NotNil(t, cp.CheckpointContents.V1)
	assert.Len(t, cp.CheckpointContents.V1.Transactions, 5)
	require.Len(t, cp.Transactions, 5)

	kinds := make([]string, 0, len(cp.Transactions))
	for _, tx := range cp.Transactions {
		kinds = append(kinds, tx.Transaction.Data[0].IntentMessage.Value.V1.Kind.Variant())
	}
	assert.Equal(t, []string{
		"ConsensusCommitPrologueV3",
		"ProgrammableTransaction",
		"ProgrammableTransaction",
		"RandomnessStateUpdate",
		"ProgrammableTransaction",
	}, kinds)

	minted := cp.Transactions[1]
	call := minted.Transaction.Data[0].IntentMessage.Value.V1.Kind.ProgrammableTransaction.Commands[1]
	require.NotNil(t, call.MoveCall)
	assert.Equal(t, suitest.TargetPackage, call.MoveCall.Package.String())
	assert.Equal(t, "mint", call.MoveCall.Function)
	require.NotNil(t, minted.Effects.V2)
	assert.Len(t, minted.Effects.V2.ChangedObjects, 3)
	assert.Equal(t, "Created", minted.Effects.V2.ChangedObjects[1].Change.IDOperation.Variant())
	assert.Equal(t, "ReadOnlyRoot", minted.Effects.V2.UnchangedSharedObjects[0].Kind.Variant())
	assert.Len(t, minted.InputObjects, 2)
	assert.Len(t, minted.OutputObjects, 3)

	upgrade := cp.Transactions[2].Transaction.Data[0].IntentMessage.Value.V1.Kind.ProgrammableTransaction.Commands[1]
	require.Equal(t, "Upgrade", upgrade.Variant())
	assert.Equal(t, suitest.TargetPackage, upgrade.Upgrade.Package.String())
	pkg := cp.Transactions[2].OutputObjects[2].Data.Package
	require.NotNil(t, pkg)
	assert.Equal(t, "nft", pkg.ModuleMap[0].Name)
	assert.Len(t, pkg.LinkageTable, 2)
	assert.Equal(t, "PackageWrite", cp.Transactions[2].Effects.V2.ChangedObjects[2].Change.OutputState.Variant())

	failure := cp.Transactions[4].Effects.V2.Status.Failure
	require.NotNil(t, failure)
	require.NotNil(t, failure.Error.MoveAbort)
	assert.Equal(t, uint64(3), failure.Error.MoveAbort.Code)
	assert.Equal(t, "burn", *failure.Error.MoveAbort.Location.FunctionName)
}

func TestDecode_LiveCheckpointPrefixes(t *testing.T) {
	t.Parallel()
	blob := suitest.Live(suitest.Sequence, suitest.Address(0xab))
	for n := 1; n < len(blob); n++ {
		_, err := sui.Decode(blob[:n])
		require.True(t, sui.IsMalformed(err), "prefix of %d bytes decoded", n)
	}
}

func TestDecode_DigestLengthPrefix(t *testing.T) {
	t.Parallel()
	blob := suitest.MustEncode(suitest.Minting(suitest.Sequence, suitest.Address(0xab)))

	// epoch, sequence and transaction count precede the content digest
	const at = 24
	require.Equal(t, byte(32), blob[at])

	bad := append([]byte{}, blob...)
	bad[at] = 31
	_, err := sui.Decode(bad)
	require.True(t, sui.IsMalformed(err))
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()
	valid := suitest.MustEncode(suitest.Minting(suitest.Sequence, suitest.Address(0xab)))

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "empty", input: nil},
		{name: "single byte", input: valid[:1]},
		{name: "truncated header", input: valid[:20]},
		{name: "truncated half", input: valid[:len(valid)/2]},
		{name: "missing last byte", input: valid[:len(valid)-1]},
		{name: "trailing bytes", input: append(append([]byte{}, valid...), 0x00, 0x01)},
		{name: "garbage", input: bytes.Repeat([]byte{0xff}, 16)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var (
				cp  *sui.CheckpointData
				err error
			)
			require.NotPanics(t, func() {
				cp, err = sui.Decode(tt.input)
			})
			require.Nil(t, cp)
			require.Error(t, err)
			require.True(t, sui.IsMalformed(err), "want malformed, got %v", err)

			var de *sui.DecodeError
			require.ErrorAs(t, err, &de)
			require.Equal(t, len(tt.input), de.Size)
		})
	}
}

func TestEncode_NilCheckpoint(t *testing.T) {
	t.Parallel()
	_, err := sui.Encode(nil)
	require.Error(t, err)
}

// FuzzDecode checks that arbitrary input never panics and that anything accepted
// re-encodes to the same bytes.
// Run with: go test -fuzz=FuzzDecode -fuzztime=30s ./pkg/sui/
func FuzzDecode(f *testing.F) {
	valid := suitest.MustEncode(suitest.Minting(suitest.Sequence, suitest.Address(0xab)))
	f.Add(valid)
	f.Add(suitest.Live(suitest.Sequence, suitest.Address(0xab)))
	f.Add(valid[:len(valid)/3])
	f.Add([]byte{})
	f.Add([]byte{0x00})

	f.Fuzz(func(t *testing.T, input []byte) {
		cp, err := sui.Decode(input)
		if err != nil {
			require.True(t, sui.IsMalformed(err))
			return
		}
		out, err := sui.Encode(cp)
		require.NoError(t, err)
		require.Equal(t, input, out)
	})
}
