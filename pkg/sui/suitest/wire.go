package suitest

import (
	"encoding/binary"

	"github.com/ava-labs/checkpoint-indexer/pkg/sui"
)

// Wire appends BCS primitives by hand. It shares no code with the sui codec, so
// blobs built with it check the codec against the network layout rather than
// against itself.
type Wire struct {
	b []byte
}

func (w *Wire) Bytes() []byte { return w.b }

func (w *Wire) U8(v byte) *Wire {
	w.b = append(w.b, v)
	return w
}

func (w *Wire) Bool(v bool) *Wire {
	if v {
		return w.U8(1)
	}
	return w.U8(0)
}

func (w *Wire) U16(v uint16) *Wire {
	w.b = binary.LittleEndian.AppendUint16(w.b, v)
	return w
}

func (w *Wire) U32(v uint32) *Wire {
	w.b = binary.LittleEndian.AppendUint32(w.b, v)
	return w
}

func (w *Wire) U64(v uint64) *Wire {
	w.b = binary.LittleEndian.AppendUint64(w.b, v)
	return w
}

// Len writes a ULEB128 length or enum tag.
func (w *Wire) Len(n int) *Wire {
	v := uint64(n)
	for v >= 0x80 {
		w.b = append(w.b, byte(v)|0x80)
		v >>= 7
	}
	w.b = append(w.b, byte(v))
	return w
}

// Tag is Len for enum variant indexes.
func (w *Wire) Tag(i int) *Wire { return w.Len(i) }

func (w *Wire) Blob(b []byte) *Wire {
	w.Len(len(b))
	w.b = append(w.b, b...)
	return w
}

func (w *Wire) Str(s string) *Wire { return w.Blob([]byte(s)) }

// Addr writes a 32-byte address, unprefixed.
func (w *Wire) Addr(a sui.Address) *Wire {
	w.b = append(w.b, a[:]...)
	return w
}

// Digest writes a digest as a length-prefixed byte string.
func (w *Wire) Digest(b byte) *Wire {
	d := Digest(b)
	return w.Blob(d[:])
}

func (w *Wire) None() *Wire { return w.U8(0) }

func (w *Wire) Some() *Wire { return w.U8(1) }

func (w *Wire) gas(computation, storage, rebate, nonRefundable uint64) *Wire {
	return w.U64(computation).U64(storage).U64(rebate).U64(nonRefundable)
}

func (w *Wire) objectRef(id sui.Address, version uint64, digest byte) *Wire {
	return w.Addr(id).U64(version).Digest(digest)
}

func (w *Wire) structTag(addr sui.Address, module, name string, params ...func(*Wire)) *Wire {
	w.Addr(addr).Str(module).Str(name).Len(len(params))
	for _, p := range params {
		p(w)
	}
	return w
}

func (w *Wire) ownerAddress(a sui.Address) *Wire { return w.Tag(0).Addr(a) }

func (w *Wire) ownerShared(initial uint64) *Wire { return w.Tag(2).U64(initial) }

func (w *Wire) ownerImmutable() *Wire { return w.Tag(3) }

// Live is a checkpoint laid out the way the checkpoint bucket serves one after
// a package upgrade went through. Its transactions, in order:
//
//	0: consensus commit prologue V3
//	1: sender splits gas and calls TargetPackage::nft::mint
//	2: upgrade of TargetPackage with authorize and commit calls
//	3: randomness state update
//	4: sender calls TargetPackage::nft::burn and aborts
func Live(seq uint64, sender sui.Address) []byte {
	target := sui.MustParseAddress(TargetPackage)
	var zero sui.Address
	var (
		framework = sui.MustParseAddress("0x2")
		clock     = sui.MustParseAddress("0x6")
		random    = sui.MustParseAddress("0x8")
		upgraded  = Address(0x71)
	)
	const epoch = 512

	w := &Wire{}

	// CertifiedCheckpointSummary.data
	w.U64(epoch).U64(seq).U64(3_000_000_000 + seq)
	w.Digest(0x02)
	w.Some().Digest(0x01)
	w.gas(9_000_000, 18_000_000, 7_000_000, 70_000)
	w.U64(1_730_000_000_000)
	w.Len(1).Tag(0).Digest(0x03) // ECMHLiveObjectSetDigest
	w.None()                     // end_of_epoch_data
	versionData := (&Wire{}).Tag(0).Len(1).U64(41_000).Bytes()
	w.Blob(versionData)
	// auth_signature
	w.U64(epoch).Blob(Repeat(0x04, 48)).Blob([]byte{0x3a, 0x30, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x05, 0x00, 0x10, 0x00})

	// checkpoint_contents: V1
	userSig := append([]byte{0x00}, Repeat(0x05, 96)...)
	w.Tag(0).Len(5)
	for i := range 5 {
		w.Digest(byte(0x20 + i)).Digest(byte(0x30 + i))
	}
	w.Len(5)
	for _, signed := range []bool{false, true, false, false, true} {
		if signed {
			w.Len(1).Blob(userSig)
		} else {
			w.Len(0)
		}
	}

	w.Len(5)

	// 0: ConsensusCommitPrologueV3
	w.Len(1).U8(0).U8(0).U8(0) // SenderSignedData, intent
	w.Tag(0)                   // TransactionData::V1
	w.Tag(8).U64(epoch).U64(88_001).Some().U64(88_000).U64(1_730_000_000_000).Digest(0x40)
	w.Tag(1).Len(1).Digest(0x41).Len(1).Addr(clock).U64(1).U64(900) // CancelledTransactionsV2
	w.Addr(zero)
	w.Len(1).objectRef(zero, 0, 0x00).Addr(zero).U64(1).U64(0)
	w.Tag(0) // expiration None
	w.Len(0) // tx_signatures
	w.Tag(1) // effects V2
	w.Tag(0) // Success
	w.U64(epoch).gas(0, 0, 0, 0).Digest(0x20)
	w.None().None()
	w.Len(1).Digest(0x1f)
	w.U64(901)
	w.Len(1).Addr(clock)
	w.Tag(1).U64(900).Digest(0x42).ownerShared(1)
	w.Tag(1).Digest(0x43).ownerShared(1)
	w.Tag(0)
	w.Len(0) // unchanged_shared_objects
	w.None() // aux_data_digest
	w.None() // events
	w.Len(1) // input_objects
	clockObject(w, clock, framework, 900, 1_729_999_999_000)
	w.Len(1) // output_objects
	clockObject(w, clock, framework, 901, 1_730_000_000_000)

	// 1: mint
	coin := Address(0x0a)
	split := Address(0x50)
	nft := Address(0x51)
	w.Len(1).U8(0).U8(0).U8(0).Tag(0)
	w.Tag(0) // ProgrammableTransaction
	w.Len(3)
	w.Tag(0).Blob([]byte{0x40, 0x42, 0x0f, 0, 0, 0, 0, 0}) // Pure u64
	w.Tag(1).Tag(1).Addr(clock).U64(1).Bool(false)       // shared clock
	w.Tag(0).Blob(sender[:])                             // Pure address
	w.Len(3)
	w.Tag(2).Tag(0).Len(1).Tag(1).U16(0)         // SplitCoins(GasCoin, [Input(0)])
	w.Tag(0).Addr(target).Str("nft").Str("mint") // MoveCall
	w.Len(1).Tag(7).structTag(framework, "sui", "SUI")
	w.Len(2).Tag(1).U16(1).Tag(3).U16(0).U16(0)
	w.Tag(1).Len(2).Tag(2).U16(1).Tag(3).U16(0).U16(0).Tag(1).U16(2) // TransferObjects
	w.Addr(sender)
	w.Len(1).objectRef(coin, 7, 0x0b).Addr(sender).U64(1_000).U64(50_000_000)
	w.Tag(0)
	w.Len(1).Blob(userSig)
	w.Tag(1).Tag(0)
	w.U64(epoch).gas(1_000_000, 4_932_000, 978_120, 9_880).Digest(0x21)
	w.Some().U32(0)
	w.Some().Digest(0x44)
	w.Len(2).Digest(0x20).Digest(0x1e)
	w.U64(902)
	w.Len(3)
	w.Addr(coin).Tag(1).U64(7).Digest(0x0b).ownerAddress(sender).Tag(1).Digest(0x45).ownerAddress(sender).Tag(0)
	w.Addr(split).Tag(0).Tag(1).Digest(0x46).ownerAddress(sender).Tag(1)
	w.Addr(nft).Tag(0).Tag(1).Digest(0x47).ownerAddress(sender).Tag(1)
	w.Len(1).Addr(clock).Tag(0).U64(901).Digest(0x43) // ReadOnlyRoot
	w.None()
	w.Some().Len(1) // events
	w.Addr(target).Str("nft").Addr(sender)
	w.structTag(target, "nft", "Minted")
	w.Blob(append(append([]byte{}, nft[:]...), sender[:]...))
	w.Len(2)
	gasCoinObject(w, coin, sender, 7, 0x1d)
	clockObject(w, clock, framework, 901, 1_730_000_000_000)
	w.Len(3)
	gasCoinObject(w, coin, sender, 902, 0x21)
	gasCoinObject(w, split, sender, 902, 0x21)
	w.Tag(0) // Move
	w.Tag(0).structTag(target, "nft", "NFT")
	w.Bool(true).U64(902).Blob(append(append([]byte{}, nft[:]...), 0x03, 'n', 'f', 't'))
	w.ownerAddress(sender).Digest(0x21).U64(1_520_000)

	// 2: upgrade
	upgradeCap := Address(0x52)
	module := []byte{0xa1, 0x1c, 0xeb, 0x0b, 0x06, 0x00, 0x00, 0x00, 0x09, 0x01, 0x00, 0x08}
	w.Len(1).U8(0).U8(0).U8(0).Tag(0)
	w.Tag(0)
	w.Len(3)
	w.Tag(1).Tag(0).objectRef(upgradeCap, 12, 0x48)
	w.Tag(0).Blob([]byte{0x00})
	w.Tag(0).Blob(append([]byte{0x20}, Repeat(0x49, 32)...))
	w.Len(3)
	w.Tag(0).Addr(framework).Str("package").Str("authorize_upgrade").Len(0)
	w.Len(3).Tag(1).U16(0).Tag(1).U16(1).Tag(1).U16(2)
	w.Tag(6).Len(1).Blob(module).Len(2).Addr(sui.MustParseAddress("0x1")).Addr(framework).Addr(target).Tag(2).U16(0)
	w.Tag(0).Addr(framework).Str("package").Str("commit_upgrade").Len(0)
	w.Len(2).Tag(1).U16(0).Tag(2).U16(1)
	w.Addr(sender)
	w.Len(1).objectRef(coin, 902, 0x45).Addr(sender).U64(1_000).U64(500_000_000)
	w.Tag(0)
	w.Len(0)
	w.Tag(1).Tag(0)
	w.U64(epoch).gas(1_000_000, 30_000_000, 2_000_000, 20_000).Digest(0x22)
	w.Some().U32(0)
	w.None()
	w.Len(1).Digest(0x21)
	w.U64(903)
	w.Len(3)
	w.Addr(coin).Tag(1).U64(902).Digest(0x45).ownerAddress(sender).Tag(1).Digest(0x4a).ownerAddress(sender).Tag(0)
	w.Addr(upgradeCap).Tag(1).U64(12).Digest(0x48).ownerAddress(sender).Tag(1).Digest(0x4b).ownerAddress(sender).Tag(0)
	w.Addr(upgraded).Tag(0).Tag(2).U64(2).Digest(0x4c).Tag(1)
	w.Len(0)
	w.Some().Digest(0x4d) // aux_data_digest
	w.None()
	w.Len(2)
	gasCoinObject(w, coin, sender, 902, 0x21)
	w.Tag(0).Tag(0).structTag(framework, "package", "UpgradeCap")
	w.Bool(true).U64(12).Blob(append(append([]byte{}, upgradeCap[:]...), target[:]...))
	w.ownerAddress(sender).Digest(0x1c).U64(2_000_000)
	w.Len(3)
	gasCoinObject(w, coin, sender, 903, 0x22)
	w.Tag(0).Tag(0).structTag(framework, "package", "UpgradeCap")
	w.Bool(true).U64(903).Blob(append(append([]byte{}, upgradeCap[:]...), upgraded[:]...))
	w.ownerAddress(sender).Digest(0x22).U64(2_000_000)
	w.Tag(1) // Package
	w.Addr(upgraded).U64(2)
	w.Len(1).Str("nft").Blob(module)
	w.Len(1).Str("nft").Str("NFT").Addr(target)
	w.Len(2).Addr(sui.MustParseAddress("0x1")).Addr(sui.MustParseAddress("0x1")).U64(1)
	w.Addr(framework).Addr(framework).U64(1)
	w.ownerImmutable().Digest(0x22).U64(0)

	// 3: RandomnessStateUpdate
	w.Len(1).U8(0).U8(0).U8(0).Tag(0)
	w.Tag(6).U64(epoch).U64(41_000).Blob(Repeat(0x4e, 32)).U64(27)
	w.Addr(zero)
	w.Len(1).objectRef(zero, 0, 0x00).Addr(zero).U64(1).U64(0)
	w.Tag(0)
	w.Len(0)
	w.Tag(1).Tag(0)
	w.U64(epoch).gas(0, 0, 0, 0).Digest(0x23)
	w.None().None()
	w.Len(1).Digest(0x20)
	w.U64(904)
	w.Len(1).Addr(random).Tag(1).U64(903).Digest(0x4f).ownerShared(27).Tag(1).Digest(0x50).ownerShared(27).Tag(0)
	w.Len(0)
	w.None()
	w.None()
	w.Len(1)
	randomObject(w, random, framework, 903)
	w.Len(1)
	randomObject(w, random, framework, 904)

	// 4: burn, aborted
	w.Len(1).U8(0).U8(0).U8(0).Tag(0)
	w.Tag(0)
	w.Len(1).Tag(1).Tag(0).objectRef(nft, 902, 0x47)
	w.Len(1).Tag(0).Addr(target).Str("nft").Str("burn").Len(0).Len(1).Tag(1).U16(0)
	w.Addr(sender)
	w.Len(1).objectRef(coin, 903, 0x4a).Addr(sender).U64(1_000).U64(10_000_000)
	w.Tag(1).U64(epoch + 1) // expiration Epoch
	w.Len(1).Blob(userSig)
	w.Tag(1)
	w.Tag(1).Tag(12) // Failure, MoveAbort
	w.Addr(target).Str("nft").U16(2).U16(14).Some().Str("burn")
	w.U64(3)
	w.Some().U64(0)
	w.U64(epoch).gas(1_000_000, 988_000, 978_120, 9_880).Digest(0x24)
	w.Some().U32(0)
	w.None()
	w.Len(1).Digest(0x21)
	w.U64(905)
	w.Len(2)
	w.Addr(coin).Tag(1).U64(903).Digest(0x4a).ownerAddress(sender).Tag(1).Digest(0x52).ownerAddress(sender).Tag(0)
	w.Addr(nft).Tag(1).U64(902).Digest(0x47).ownerAddress(sender).Tag(1).Digest(0x53).ownerAddress(sender).Tag(0)
	w.Len(0)
	w.None()
	w.None()
	w.Len(2)
	gasCoinObject(w, coin, sender, 903, 0x22)
	w.Tag(0).Tag(0).structTag(target, "nft", "NFT")
	w.Bool(true).U64(902).Blob(append(append([]byte{}, nft[:]...), 0x03, 'n', 'f', 't'))
	w.ownerAddress(sender).Digest(0x21).U64(1_520_000)
	w.Len(2)
	gasCoinObject(w, coin, sender, 905, 0x24)
	w.Tag(0).Tag(0).structTag(target, "nft", "NFT")
	w.Bool(true).U64(905).Blob(append(append([]byte{}, nft[:]...), 0x03, 'n', 'f', 't'))
	w.ownerAddress(sender).Digest(0x24).U64(1_520_000)

	return w.Bytes()
}

func gasCoinObject(w *Wire, id, owner sui.Address, version uint64, prev byte) {
	contents := append(append([]byte{}, id[:]...), 0x00, 0xe1, 0xf5, 0x05, 0, 0, 0, 0)
	w.Tag(0).Tag(1).Bool(true).U64(version).Blob(contents)
	w.ownerAddress(owner).Digest(prev).U64(988_000)
}

func clockObject(w *Wire, id, framework sui.Address, version, timestampMs uint64) {
	contents := binary.LittleEndian.AppendUint64(append([]byte{}, id[:]...), timestampMs)
	w.Tag(0).Tag(0).structTag(framework, "clock", "Clock")
	w.Bool(false).U64(version).Blob(contents)
	w.ownerShared(1).Digest(0x1f).U64(0)
}

func randomObject(w *Wire, id, framework sui.Address, version uint64) {
	inner := Address(0x09)
	w.Tag(0).Tag(0).structTag(framework, "random", "Random")
	w.Bool(false).U64(version).Blob(append(append(append([]byte{}, id[:]...), inner[:]...), 1, 0, 0, 0, 0, 0, 0, 0))
	w.ownerShared(27).Digest(0x23).U64(0)
}
