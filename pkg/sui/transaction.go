package sui

type TransactionData struct {
	V1 *TransactionDataV1 `json:"V1"`
}

type TransactionDataV1 struct {
	Kind       TransactionKind       `json:"kind"`
	Sender     Address               `json:"sender"`
	GasData    GasData               `json:"gas_data"`
	Expiration TransactionExpiration `json:"expiration"`
}

type GasData struct {
	Payment []ObjectRef `json:"payment"`
	Owner   Address     `json:"owner"`
	Price   uint64      `json:"price"`
	Budget  uint64      `json:"budget"`
}

type ObjectRef struct {
	ObjectID ObjectID `json:"object_id"`
	Version  uint64   `json:"version"`
	Digest   Digest   `json:"digest"`
}

type TransactionExpiration struct {
	None        *Unit        `json:"None"`
	Epoch       *uint64      `json:"Epoch"`
	ValidDuring *ValidDuring `json:"ValidDuring"`
}

type ValidDuring struct {
	MinEpoch            *uint64 `json:"min_epoch" bcs:"optional"`
	MaxEpoch            *uint64 `json:"max_epoch" bcs:"optional"`
	MinTimestampSeconds *uint64 `json:"min_timestamp_seconds" bcs:"optional"`
	MaxTimestampSeconds *uint64 `json:"max_timestamp_seconds" bcs:"optional"`
	Chain               Digest  `json:"chain"`
	Nonce               uint32  `json:"nonce"`
}

// TransactionKind lists every kind in tag order. Only ProgrammableTransaction
// is sent by users; the rest are issued by the system.
type TransactionKind struct {
	ProgrammableTransaction       *ProgrammableTransaction     `json:"ProgrammableTransaction"`
	ChangeEpoch                   *ChangeEpoch                 `json:"ChangeEpoch"`
	Genesis                       *GenesisTransaction          `json:"Genesis"`
	ConsensusCommitPrologue       *ConsensusCommitPrologue     `json:"ConsensusCommitPrologue"`
	AuthenticatorStateUpdate      *AuthenticatorStateUpdate    `json:"AuthenticatorStateUpdate"`
	EndOfEpochTransaction         *[]EndOfEpochTransactionKind `json:"EndOfEpochTransaction"`
	RandomnessStateUpdate         *RandomnessStateUpdate       `json:"RandomnessStateUpdate"`
	ConsensusCommitPrologueV2     *ConsensusCommitPrologueV2   `json:"ConsensusCommitPrologueV2"`
	ConsensusCommitPrologueV3     *ConsensusCommitPrologueV3   `json:"ConsensusCommitPrologueV3"`
	ConsensusCommitPrologueV4     *ConsensusCommitPrologueV4   `json:"ConsensusCommitPrologueV4"`
	ProgrammableSystemTransaction *ProgrammableTransaction     `json:"ProgrammableSystemTransaction"`
}

type ProgrammableTransaction struct {
	Inputs   []CallArg `json:"inputs"`
	Commands []Command `json:"commands"`
}

type ChangeEpoch struct {
	Epoch                   uint64          `json:"epoch"`
	ProtocolVersion         uint64          `json:"protocol_version"`
	StorageCharge           uint64          `json:"storage_charge"`
	ComputationCharge       uint64          `json:"computation_charge"`
	StorageRebate           uint64          `json:"storage_rebate"`
	NonRefundableStorageFee uint64          `json:"non_refundable_storage_fee"`
	EpochStartTimestampMs   uint64          `json:"epoch_start_timestamp_ms"`
	SystemPackages          []SystemPackage `json:"system_packages"`
}

type SystemPackage struct {
	Version      uint64     `json:"version"`
	Modules      []Bytes    `json:"modules"`
	Dependencies []ObjectID `json:"dependencies"`
}

type GenesisTransaction struct {
	Objects []GenesisObject `json:"objects"`
}

type GenesisObject struct {
	RawObject *GenesisRawObject `json:"RawObject"`
}

type GenesisRawObject struct {
	Data  ObjectData `json:"data"`
	Owner Owner      `json:"owner"`
}

type ConsensusCommitPrologue struct {
	Epoch             uint64 `json:"epoch"`
	Round             uint64 `json:"round"`
	CommitTimestampMs uint64 `json:"commit_timestamp_ms"`
}

type ConsensusCommitPrologueV2 struct {
	Epoch                 uint64 `json:"epoch"`
	Round                 uint64 `json:"round"`
	CommitTimestampMs     uint64 `json:"commit_timestamp_ms"`
	ConsensusCommitDigest Digest `json:"consensus_commit_digest"`
}

type ConsensusCommitPrologueV3 struct {
	Epoch                                 uint64                                `json:"epoch"`
	Round                                 uint64                                `json:"round"`
	SubDagIndex                           *uint64                               `json:"sub_dag_index" bcs:"optional"`
	CommitTimestampMs                     uint64                                `json:"commit_timestamp_ms"`
	ConsensusCommitDigest                 Digest                                `json:"consensus_commit_digest"`
	ConsensusDeterminedVersionAssignments ConsensusDeterminedVersionAssignments `json:"consensus_determined_version_assignments"`
}

type ConsensusCommitPrologueV4 struct {
	Epoch                                 uint64                                `json:"epoch"`
	Round                                 uint64                                `json:"round"`
	SubDagIndex                           *uint64                               `json:"sub_dag_index" bcs:"optional"`
	CommitTimestampMs                     uint64                                `json:"commit_timestamp_ms"`
	ConsensusCommitDigest                 Digest                                `json:"consensus_commit_digest"`
	ConsensusDeterminedVersionAssignments ConsensusDeterminedVersionAssignments `json:"consensus_determined_version_assignments"`
	AdditionalStateDigest                 Digest                                `json:"additional_state_digest"`
}

type ConsensusDeterminedVersionAssignments struct {
	CancelledTransactions   *[]CancelledTransaction   `json:"CancelledTransactions"`
	CancelledTransactionsV2 *[]CancelledTransactionV2 `json:"CancelledTransactionsV2"`
}

type CancelledTransaction struct {
	Digest   Digest            `json:"digest"`
	Versions []VersionedObject `json:"versions"`
}

type CancelledTransactionV2 struct {
	Digest   Digest                  `json:"digest"`
	Versions []AssignedSharedVersion `json:"versions"`
}

// AssignedSharedVersion is the version consensus assigned to a shared object,
// keyed by the object and its initial shared version.
type AssignedSharedVersion struct {
	ID                   ObjectID `json:"id"`
	InitialSharedVersion uint64   `json:"initial_shared_version"`
	AssignedVersion      uint64   `json:"assigned_version"`
}

type VersionedObject struct {
	ID      ObjectID `json:"id"`
	Version uint64   `json:"version"`
}

type AuthenticatorStateUpdate struct {
	Epoch                                uint64      `json:"epoch"`
	Round                                uint64      `json:"round"`
	NewActiveJwks                        []ActiveJwk `json:"new_active_jwks"`
	AuthenticatorObjInitialSharedVersion uint64      `json:"authenticator_obj_initial_shared_version"`
}

type ActiveJwk struct {
	JwkID JwkID  `json:"jwk_id"`
	Jwk   JWK    `json:"jwk"`
	Epoch uint64 `json:"epoch"`
}

type JwkID struct {
	Iss string `json:"iss"`
	Kid string `json:"kid"`
}

type JWK struct {
	Kty string `json:"kty"`
	E   string `json:"e"`
	N   string `json:"n"`
	Alg string `json:"alg"`
}

type RandomnessStateUpdate struct {
	Epoch                             uint64 `json:"epoch"`
	RandomnessRound                   uint64 `json:"randomness_round"`
	RandomBytes                       Bytes  `json:"random_bytes"`
	RandomnessObjInitialSharedVersion uint64 `json:"randomness_obj_initial_shared_version"`
}

type EndOfEpochTransactionKind struct {
	ChangeEpoch                    *ChangeEpoch                     `json:"ChangeEpoch"`
	AuthenticatorStateCreate       *Unit                            `json:"AuthenticatorStateCreate"`
	AuthenticatorStateExpire       *AuthenticatorStateExpire        `json:"AuthenticatorStateExpire"`
	RandomnessStateCreate          *Unit                            `json:"RandomnessStateCreate"`
	DenyListStateCreate            *Unit                            `json:"DenyListStateCreate"`
	BridgeStateCreate              *Digest                          `json:"BridgeStateCreate"`
	BridgeCommitteeInit            *uint64                          `json:"BridgeCommitteeInit"`
	StoreExecutionTimeObservations *StoredExecutionTimeObservations `json:"StoreExecutionTimeObservations"`
	AccumulatorRootCreate          *Unit                            `json:"AccumulatorRootCreate"`
}

type AuthenticatorStateExpire struct {
	MinEpoch                             uint64 `json:"min_epoch"`
	AuthenticatorObjInitialSharedVersion uint64 `json:"authenticator_obj_initial_shared_version"`
}

type StoredExecutionTimeObservations struct {
	V1 *[]ExecutionTimeObservation `json:"V1"`
}

type ExecutionTimeObservation struct {
	Key          ExecutionTimeObservationKey `json:"key"`
	Observations []AuthorityDuration         `json:"observations"`
}

type AuthorityDuration struct {
	Authority Bytes    `json:"authority"`
	Duration  Duration `json:"duration"`
}

type Duration struct {
	Secs  uint64 `json:"secs"`
	Nanos uint32 `json:"nanos"`
}

type ExecutionTimeObservationKey struct {
	MoveEntryPoint  *MoveEntryPoint `json:"MoveEntryPoint"`
	TransferObjects *Unit           `json:"TransferObjects"`
	SplitCoins      *Unit           `json:"SplitCoins"`
	MergeCoins      *Unit           `json:"MergeCoins"`
	Publish         *Unit           `json:"Publish"`
	MakeMoveVec     *Unit           `json:"MakeMoveVec"`
	Upgrade         *Unit           `json:"Upgrade"`
}

type MoveEntryPoint struct {
	Package       ObjectID  `json:"package"`
	Module        string    `json:"module"`
	Function      string    `json:"function"`
	TypeArguments []TypeTag `json:"type_arguments"`
}

type CallArg struct {
	Pure   *Bytes     `json:"Pure"`
	Object *ObjectArg `json:"Object"`
}

type ObjectArg struct {
	ImmOrOwnedObject *ObjectRef       `json:"ImmOrOwnedObject"`
	SharedObject     *SharedObjectRef `json:"SharedObject"`
	Receiving        *ObjectRef       `json:"Receiving"`
}

type SharedObjectRef struct {
	ID                   ObjectID `json:"id"`
	InitialSharedVersion uint64   `json:"initial_shared_version"`
	Mutable              bool     `json:"mutable"`
}

type Command struct {
	MoveCall        *ProgrammableMoveCall `json:"MoveCall"`
	TransferObjects *TransferObjects      `json:"TransferObjects"`
	SplitCoins      *SplitCoins           `json:"SplitCoins"`
	MergeCoins      *MergeCoins           `json:"MergeCoins"`
	Publish         *Publish              `json:"Publish"`
	MakeMoveVec     *MakeMoveVec          `json:"MakeMoveVec"`
	Upgrade         *Upgrade              `json:"Upgrade"`
}

type ProgrammableMoveCall struct {
	Package       ObjectID   `json:"package"`
	Module        string     `json:"module"`
	Function      string     `json:"function"`
	TypeArguments []TypeTag  `json:"type_arguments"`
	Arguments     []Argument `json:"arguments"`
}

type TransferObjects struct {
	Objects []Argument `json:"objects"`
	Address Argument   `json:"address"`
}

type SplitCoins struct {
	Coin    Argument   `json:"coin"`
	Amounts []Argument `json:"amounts"`
}

type MergeCoins struct {
	Destination Argument   `json:"destination"`
	Sources     []Argument `json:"sources"`
}

type Publish struct {
	Modules      []Bytes    `json:"modules"`
	Dependencies []ObjectID `json:"dependencies"`
}

type MakeMoveVec struct {
	Type     *TypeTag   `json:"type" bcs:"optional"`
	Elements []Argument `json:"elements"`
}

// Upgrade publishes a new version of Package, authorized by Ticket.
type Upgrade struct {
	Modules      []Bytes    `json:"modules"`
	Dependencies []ObjectID `json:"dependencies"`
	Package      ObjectID   `json:"package"`
	Ticket       Argument   `json:"ticket"`
}

// Argument refers to a transaction input or to the result of an earlier command.
type Argument struct {
	GasCoin      *Unit      `json:"GasCoin"`
	Input        *uint16    `json:"Input"`
	Result       *uint16    `json:"Result"`
	NestedResult *[2]uint16 `json:"NestedResult"`
}

type TypeTag struct {
	Bool    *Unit      `json:"bool"`
	U8      *Unit      `json:"u8"`
	U64     *Unit      `json:"u64"`
	U128    *Unit      `json:"u128"`
	Address *Unit      `json:"address"`
	Signer  *Unit      `json:"signer"`
	Vector  *TypeTag   `json:"vector"`
	Struct  *StructTag `json:"struct"`
	U16     *Unit      `json:"u16"`
	U32     *Unit      `json:"u32"`
	U256    *Unit      `json:"u256"`
}

type StructTag struct {
	Address    Address   `json:"address"`
	Module     string    `json:"module"`
	Name       string    `json:"name"`
	TypeParams []TypeTag `json:"type_params"`
}
