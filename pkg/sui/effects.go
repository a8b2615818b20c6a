package sui

type TransactionEffects struct {
	V1 *TransactionEffectsV1 `json:"V1"`
	V2 *TransactionEffectsV2 `json:"V2"`
}

// GasUsed returns the gas summary of whichever effects version is set.
func (e TransactionEffects) GasUsed() (GasCostSummary, bool) {
	switch {
	case e.V1 != nil:
		return e.V1.GasUsed, true
	case e.V2 != nil:
		return e.V2.GasUsed, true
	default:
		return GasCostSummary{}, false
	}
}

type TransactionEffectsV1 struct {
	Status               ExecutionStatus   `json:"status"`
	ExecutedEpoch        uint64            `json:"executed_epoch"`
	GasUsed              GasCostSummary    `json:"gas_used"`
	ModifiedAtVersions   []VersionedObject `json:"modified_at_versions"`
	SharedObjects        []ObjectRef       `json:"shared_objects"`
	TransactionDigest    Digest            `json:"transaction_digest"`
	Created              []OwnedObjectRef  `json:"created"`
	Mutated              []OwnedObjectRef  `json:"mutated"`
	Unwrapped            []OwnedObjectRef  `json:"unwrapped"`
	Deleted              []ObjectRef       `json:"deleted"`
	UnwrappedThenDeleted []ObjectRef       `json:"unwrapped_then_deleted"`
	Wrapped              []ObjectRef       `json:"wrapped"`
	GasObject            OwnedObjectRef    `json:"gas_object"`
	EventsDigest         *Digest           `json:"events_digest" bcs:"optional"`
	Dependencies         []Digest          `json:"dependencies"`
}

type OwnedObjectRef struct {
	Reference ObjectRef `json:"reference"`
	Owner     Owner     `json:"owner"`
}

type TransactionEffectsV2 struct {
	Status                 ExecutionStatus         `json:"status"`
	ExecutedEpoch          uint64                  `json:"executed_epoch"`
	GasUsed                GasCostSummary          `json:"gas_used"`
	TransactionDigest      Digest                  `json:"transaction_digest"`
	GasObjectIndex         *uint32                 `json:"gas_object_index" bcs:"optional"`
	EventsDigest           *Digest                 `json:"events_digest" bcs:"optional"`
	Dependencies           []Digest                `json:"dependencies"`
	LamportVersion         uint64                  `json:"lamport_version"`
	ChangedObjects         []ChangedObject         `json:"changed_objects"`
	UnchangedSharedObjects []UnchangedSharedObject `json:"unchanged_shared_objects"`
	AuxDataDigest          *Digest                 `json:"aux_data_digest" bcs:"optional"`
}

type ChangedObject struct {
	ID     ObjectID            `json:"id"`
	Change EffectsObjectChange `json:"change"`
}

type EffectsObjectChange struct {
	InputState  ObjectIn    `json:"input_state"`
	OutputState ObjectOut   `json:"output_state"`
	IDOperation IDOperation `json:"id_operation"`
}

type ObjectIn struct {
	NotExist *Unit          `json:"NotExist"`
	Exist    *ObjectInState `json:"Exist"`
}

type ObjectInState struct {
	Version uint64 `json:"version"`
	Digest  Digest `json:"digest"`
	Owner   Owner  `json:"owner"`
}

type ObjectOut struct {
	NotExist           *Unit             `json:"NotExist"`
	ObjectWrite        *ObjectWrite      `json:"ObjectWrite"`
	PackageWrite       *VersionDigest    `json:"PackageWrite"`
	AccumulatorWriteV1 *AccumulatorWrite `json:"AccumulatorWriteV1"`
}

type ObjectWrite struct {
	Digest Digest `json:"digest"`
	Owner  Owner  `json:"owner"`
}

type VersionDigest struct {
	Version uint64 `json:"version"`
	Digest  Digest `json:"digest"`
}

type AccumulatorWrite struct {
	Address   AccumulatorAddress   `json:"address"`
	Operation AccumulatorOperation `json:"operation"`
	Value     AccumulatorValue     `json:"value"`
}

type AccumulatorAddress struct {
	Address Address `json:"address"`
	Type    TypeTag `json:"ty"`
}

type AccumulatorOperation struct {
	Merge *Unit `json:"Merge"`
	Split *Unit `json:"Split"`
}

type AccumulatorValue struct {
	Integer      *uint64          `json:"Integer"`
	IntegerTuple *[2]uint64       `json:"IntegerTuple"`
	EventDigest  *[]IndexedDigest `json:"EventDigest"`
}

type IndexedDigest struct {
	Index  uint64 `json:"index"`
	Digest Digest `json:"digest"`
}

type IDOperation struct {
	None    *Unit `json:"None"`
	Created *Unit `json:"Created"`
	Deleted *Unit `json:"Deleted"`
}

type UnchangedSharedObject struct {
	ID   ObjectID            `json:"id"`
	Kind UnchangedSharedKind `json:"kind"`
}

type UnchangedSharedKind struct {
	ReadOnlyRoot   *VersionDigest `json:"ReadOnlyRoot"`
	MutateDeleted  *uint64        `json:"MutateDeleted"`
	ReadDeleted    *uint64        `json:"ReadDeleted"`
	Cancelled      *uint64        `json:"Cancelled"`
	PerEpochConfig *Unit          `json:"PerEpochConfig"`
}

type ExecutionStatus struct {
	Success *Unit             `json:"Success"`
	Failure *ExecutionFailure `json:"Failure"`
}

type ExecutionFailure struct {
	Error   ExecutionFailureStatus `json:"error"`
	Command *uint64                `json:"command" bcs:"optional"`
}

// ExecutionFailureStatus is why a transaction aborted, in tag order.
type ExecutionFailureStatus struct {
	InsufficientGas                               *Unit                    `json:"InsufficientGas"`
	InvalidGasObject                              *Unit                    `json:"InvalidGasObject"`
	InvariantViolation                            *Unit                    `json:"InvariantViolation"`
	FeatureNotYetSupported                        *Unit                    `json:"FeatureNotYetSupported"`
	MoveObjectTooBig                              *ObjectSizeLimit         `json:"MoveObjectTooBig"`
	MovePackageTooBig                             *ObjectSizeLimit         `json:"MovePackageTooBig"`
	CircularObjectOwnership                       *CircularObjectOwnership `json:"CircularObjectOwnership"`
	InsufficientCoinBalance                       *Unit                    `json:"InsufficientCoinBalance"`
	CoinBalanceOverflow                           *Unit                    `json:"CoinBalanceOverflow"`
	PublishErrorNonZeroAddress                    *Unit                    `json:"PublishErrorNonZeroAddress"`
	SuiMoveVerificationError                      *Unit                    `json:"SuiMoveVerificationError"`
	MovePrimitiveRuntimeError                     *MoveLocationOpt         `json:"MovePrimitiveRuntimeError"`
	MoveAbort                                     *MoveAbort               `json:"MoveAbort"`
	VMVerificationOrDeserializationError          *Unit                    `json:"VMVerificationOrDeserializationError"`
	VMInvariantViolation                          *Unit                    `json:"VMInvariantViolation"`
	FunctionNotFound                              *Unit                    `json:"FunctionNotFound"`
	ArityMismatch                                 *Unit                    `json:"ArityMismatch"`
	TypeArityMismatch                             *Unit                    `json:"TypeArityMismatch"`
	NonEntryFunctionInvoked                       *Unit                    `json:"NonEntryFunctionInvoked"`
	CommandArgumentError                          *CommandArgumentFailure  `json:"CommandArgumentError"`
	TypeArgumentError                             *TypeArgumentFailure     `json:"TypeArgumentError"`
	UnusedValueWithoutDrop                        *SecondaryIndex          `json:"UnusedValueWithoutDrop"`
	InvalidPublicFunctionReturnType               *ArgumentIndex           `json:"InvalidPublicFunctionReturnType"`
	InvalidTransferObject                         *Unit                    `json:"InvalidTransferObject"`
	EffectsTooLarge                               *SizeExceeded            `json:"EffectsTooLarge"`
	PublishUpgradeMissingDependency               *Unit                    `json:"PublishUpgradeMissingDependency"`
	PublishUpgradeDependencyDowngrade             *Unit                    `json:"PublishUpgradeDependencyDowngrade"`
	PackageUpgradeError                           *PackageUpgradeFailure   `json:"PackageUpgradeError"`
	WrittenObjectsTooLarge                        *SizeExceeded            `json:"WrittenObjectsTooLarge"`
	CertificateDenied                             *Unit                    `json:"CertificateDenied"`
	SuiMoveVerificationTimedout                   *Unit                    `json:"SuiMoveVerificationTimedout"`
	SharedObjectOperationNotAllowed               *Unit                    `json:"SharedObjectOperationNotAllowed"`
	InputObjectDeleted                            *Unit                    `json:"InputObjectDeleted"`
	ExecutionCancelledDueToSharedObjectCongestion *CongestedObjects        `json:"ExecutionCancelledDueToSharedObjectCongestion"`
	AddressDeniedForCoin                          *AddressDeniedForCoin    `json:"AddressDeniedForCoin"`
	CoinTypeGlobalPause                           *CoinTypeGlobalPause     `json:"CoinTypeGlobalPause"`
	ExecutionCancelledDueToRandomnessUnavailable  *Unit                    `json:"ExecutionCancelledDueToRandomnessUnavailable"`
	MoveVectorElemTooBig                          *ValueSizeLimit          `json:"MoveVectorElemTooBig"`
	MoveRawValueTooBig                            *ValueSizeLimit          `json:"MoveRawValueTooBig"`
	InvalidLinkage                                *Unit                    `json:"InvalidLinkage"`
}

type ObjectSizeLimit struct {
	ObjectSize    uint64 `json:"object_size"`
	MaxObjectSize uint64 `json:"max_object_size"`
}

type CircularObjectOwnership struct {
	Object ObjectID `json:"object"`
}

type MoveLocationOpt struct {
	Location *MoveLocation `json:"location" bcs:"optional"`
}

type MoveAbort struct {
	Location MoveLocation `json:"location"`
	Code     uint64       `json:"code"`
}

type MoveLocation struct {
	Module       ModuleID `json:"module"`
	Function     uint16   `json:"function"`
	Instruction  uint16   `json:"instruction"`
	FunctionName *string  `json:"function_name" bcs:"optional"`
}

type ModuleID struct {
	Address Address `json:"address"`
	Name    string  `json:"name"`
}

type CommandArgumentFailure struct {
	ArgIdx uint16               `json:"arg_idx"`
	Kind   CommandArgumentError `json:"kind"`
}

type CommandArgumentError struct {
	TypeMismatch                          *Unit           `json:"TypeMismatch"`
	InvalidBCSBytes                       *Unit           `json:"InvalidBCSBytes"`
	InvalidUsageOfPureArg                 *Unit           `json:"InvalidUsageOfPureArg"`
	InvalidArgumentToPrivateEntryFunction *Unit           `json:"InvalidArgumentToPrivateEntryFunction"`
	IndexOutOfBounds                      *ArgumentIndex  `json:"IndexOutOfBounds"`
	SecondaryIndexOutOfBounds             *SecondaryIndex `json:"SecondaryIndexOutOfBounds"`
	InvalidResultArity                    *ResultIndex    `json:"InvalidResultArity"`
	InvalidGasCoinUsage                   *Unit           `json:"InvalidGasCoinUsage"`
	InvalidValueUsage                     *Unit           `json:"InvalidValueUsage"`
	InvalidObjectByValue                  *Unit           `json:"InvalidObjectByValue"`
	InvalidObjectByMutRef                 *Unit           `json:"InvalidObjectByMutRef"`
	SharedObjectOperationNotAllowed       *Unit           `json:"SharedObjectOperationNotAllowed"`
	InvalidArgumentArity                  *Unit           `json:"InvalidArgumentArity"`
}

type ArgumentIndex struct {
	Idx uint16 `json:"idx"`
}

type SecondaryIndex struct {
	ResultIdx    uint16 `json:"result_idx"`
	SecondaryIdx uint16 `json:"secondary_idx"`
}

type ResultIndex struct {
	ResultIdx uint16 `json:"result_idx"`
}

type TypeArgumentFailure struct {
	ArgumentIdx uint16            `json:"argument_idx"`
	Kind        TypeArgumentError `json:"kind"`
}

type TypeArgumentError struct {
	TypeNotFound           *Unit `json:"TypeNotFound"`
	ConstraintNotSatisfied *Unit `json:"ConstraintNotSatisfied"`
}

type SizeExceeded struct {
	CurrentSize uint64 `json:"current_size"`
	MaxSize     uint64 `json:"max_size"`
}

type PackageUpgradeFailure struct {
	UpgradeError PackageUpgradeError `json:"upgrade_error"`
}

type PackageUpgradeError struct {
	UnableToFetchPackage  *PackageIDRef      `json:"UnableToFetchPackage"`
	NotAPackage           *ObjectIDRef       `json:"NotAPackage"`
	IncompatibleUpgrade   *Unit              `json:"IncompatibleUpgrade"`
	DigestDoesNotMatch    *DigestMismatch    `json:"DigestDoesNotMatch"`
	UnknownUpgradePolicy  *UpgradePolicy     `json:"UnknownUpgradePolicy"`
	PackageIDDoesNotMatch *PackageIDMismatch `json:"PackageIDDoesNotMatch"`
}

type PackageIDRef struct {
	PackageID ObjectID `json:"package_id"`
}

type ObjectIDRef struct {
	ObjectID ObjectID `json:"object_id"`
}

type DigestMismatch struct {
	Digest Bytes `json:"digest"`
}

type UpgradePolicy struct {
	Policy uint8 `json:"policy"`
}

type PackageIDMismatch struct {
	PackageID ObjectID `json:"package_id"`
	TicketID  ObjectID `json:"ticket_id"`
}

type CongestedObjects struct {
	CongestedObjects []ObjectID `json:"congested_objects"`
}

type AddressDeniedForCoin struct {
	Address  Address `json:"address"`
	CoinType string  `json:"coin_type"`
}

type CoinTypeGlobalPause struct {
	CoinType string `json:"coin_type"`
}

type ValueSizeLimit struct {
	ValueSize     uint64 `json:"value_size"`
	MaxScaledSize uint64 `json:"max_scaled_size"`
}
