package sui

// CheckpointData is one checkpoint as the checkpoint bucket serves it: the
// certified summary, the contents listing every transaction's digests, and the
// full transactions in execution order.
type CheckpointData struct {
	CheckpointSummary  CertifiedCheckpointSummary `json:"checkpoint_summary"`
	CheckpointContents CheckpointContents         `json:"checkpoint_contents"`
	Transactions       []CheckpointTransaction    `json:"transactions"`
}

// Sequence returns the checkpoint sequence number.
func (c *CheckpointData) Sequence() uint64 {
	return c.CheckpointSummary.Data.SequenceNumber
}

// CertifiedCheckpointSummary is a summary together with the quorum signature
// that certifies it.
type CertifiedCheckpointSummary struct {
	Data          CheckpointSummary       `json:"data"`
	AuthSignature AuthorityQuorumSignInfo `json:"auth_signature"`
}

type CheckpointSummary struct {
	Epoch                      uint64                 `json:"epoch"`
	SequenceNumber             uint64                 `json:"sequence_number"`
	NetworkTotalTransactions   uint64                 `json:"network_total_transactions"`
	ContentDigest              Digest                 `json:"content_digest"`
	PreviousDigest             *Digest                `json:"previous_digest" bcs:"optional"`
	EpochRollingGasCostSummary GasCostSummary         `json:"epoch_rolling_gas_cost_summary"`
	TimestampMs                uint64                 `json:"timestamp_ms"`
	CheckpointCommitments      []CheckpointCommitment `json:"checkpoint_commitments"`
	EndOfEpochData             *EndOfEpochData        `json:"end_of_epoch_data" bcs:"optional"`
	// VersionSpecificData is itself BCS, versioned by the protocol. It is kept opaque.
	VersionSpecificData Bytes `json:"version_specific_data"`
}

// AuthorityQuorumSignInfo is an aggregated BLS signature and the roaring bitmap
// of the committee members that signed.
type AuthorityQuorumSignInfo struct {
	Epoch      uint64 `json:"epoch"`
	Signature  Bytes  `json:"signature"`
	SignersMap Bytes  `json:"signers_map"`
}

type CheckpointCommitment struct {
	ECMHLiveObjectSetDigest   *ECMHLiveObjectSetDigest `json:"ECMHLiveObjectSetDigest"`
	CheckpointArtifactsDigest *Digest                  `json:"CheckpointArtifactsDigest"`
}

type ECMHLiveObjectSetDigest struct {
	Digest Digest `json:"digest"`
}

// EndOfEpochData is only present on the last checkpoint of an epoch.
type EndOfEpochData struct {
	NextEpochCommittee       []CommitteeMember      `json:"next_epoch_committee"`
	NextEpochProtocolVersion uint64                 `json:"next_epoch_protocol_version"`
	EpochCommitments         []CheckpointCommitment `json:"epoch_commitments"`
}

type CommitteeMember struct {
	AuthorityName Bytes  `json:"authority_name"`
	Stake         uint64 `json:"stake"`
}

type CheckpointContents struct {
	V1 *CheckpointContentsV1 `json:"V1"`
	V2 *CheckpointContentsV2 `json:"V2"`
}

// CheckpointContentsV1 pairs each transaction's digests with the user
// signatures of the same position.
type CheckpointContentsV1 struct {
	Transactions   []ExecutionDigests `json:"transactions"`
	UserSignatures [][]Bytes          `json:"user_signatures"`
}

type CheckpointContentsV2 struct {
	Transactions []CheckpointTransactionContents `json:"transactions"`
}

type CheckpointTransactionContents struct {
	Digest         ExecutionDigests     `json:"digest"`
	UserSignatures []VersionedSignature `json:"user_signatures"`
}

type VersionedSignature struct {
	Signature    Bytes   `json:"signature"`
	AliasVersion *uint64 `json:"alias_version" bcs:"optional"`
}

type ExecutionDigests struct {
	Transaction Digest `json:"transaction"`
	Effects     Digest `json:"effects"`
}

type CheckpointTransaction struct {
	Transaction   Transaction        `json:"transaction"`
	Effects       TransactionEffects `json:"effects"`
	Events        *TransactionEvents `json:"events" bcs:"optional"`
	InputObjects  []Object           `json:"input_objects"`
	OutputObjects []Object           `json:"output_objects"`
}

// Transaction is the signed envelope. Data holds a single entry on the wire;
// the list shape is kept as the network delivers it.
type Transaction struct {
	Data          []SenderSignedTransaction `json:"data"`
	AuthSignature EmptySignInfo             `json:"auth_signature"`
}

// EmptySignInfo encodes to nothing.
type EmptySignInfo struct{}

type SenderSignedTransaction struct {
	IntentMessage IntentMessage `json:"intent_message"`
	TxSignatures  []Bytes       `json:"tx_signatures"`
}

type IntentMessage struct {
	Intent Intent          `json:"intent"`
	Value  TransactionData `json:"value"`
}

type Intent struct {
	Scope   uint8 `json:"scope"`
	Version uint8 `json:"version"`
	AppID   uint8 `json:"app_id"`
}

type TransactionEvents struct {
	Data []Event `json:"data"`
}

type Event struct {
	PackageID         ObjectID  `json:"package_id"`
	TransactionModule string    `json:"transaction_module"`
	Sender            Address   `json:"sender"`
	Type              StructTag `json:"type_"`
	Contents          Bytes     `json:"contents"`
}

type GasCostSummary struct {
	ComputationCost         uint64 `json:"computationCost"`
	StorageCost             uint64 `json:"storageCost"`
	StorageRebate           uint64 `json:"storageRebate"`
	NonRefundableStorageFee uint64 `json:"nonRefundableStorageFee"`
}
