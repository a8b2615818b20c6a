package sui

import "reflect"

// Enum plumbing: BCS tags come from field order, JSON names from json tags.

func (TransactionData) IsBcsEnum() {}

func (e TransactionData) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *TransactionData) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

// Variant returns the name of the set variant.
func (e TransactionData) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (TransactionExpiration) IsBcsEnum() {}

func (e TransactionExpiration) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *TransactionExpiration) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e TransactionExpiration) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (TransactionKind) IsBcsEnum() {}

func (e TransactionKind) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *TransactionKind) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e TransactionKind) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (GenesisObject) IsBcsEnum() {}

func (e GenesisObject) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *GenesisObject) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e GenesisObject) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (ConsensusDeterminedVersionAssignments) IsBcsEnum() {}

func (e ConsensusDeterminedVersionAssignments) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *ConsensusDeterminedVersionAssignments) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e ConsensusDeterminedVersionAssignments) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (EndOfEpochTransactionKind) IsBcsEnum() {}

func (e EndOfEpochTransactionKind) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *EndOfEpochTransactionKind) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e EndOfEpochTransactionKind) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (StoredExecutionTimeObservations) IsBcsEnum() {}

func (e StoredExecutionTimeObservations) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *StoredExecutionTimeObservations) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e StoredExecutionTimeObservations) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (ExecutionTimeObservationKey) IsBcsEnum() {}

func (e ExecutionTimeObservationKey) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *ExecutionTimeObservationKey) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e ExecutionTimeObservationKey) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (CallArg) IsBcsEnum() {}

func (e CallArg) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *CallArg) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e CallArg) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (ObjectArg) IsBcsEnum() {}

func (e ObjectArg) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *ObjectArg) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e ObjectArg) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (Command) IsBcsEnum() {}

func (e Command) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *Command) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e Command) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (Argument) IsBcsEnum() {}

func (e Argument) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *Argument) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e Argument) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (TypeTag) IsBcsEnum() {}

func (e TypeTag) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *TypeTag) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e TypeTag) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (CheckpointCommitment) IsBcsEnum() {}

func (e CheckpointCommitment) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *CheckpointCommitment) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e CheckpointCommitment) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (CheckpointContents) IsBcsEnum() {}

func (e CheckpointContents) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *CheckpointContents) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e CheckpointContents) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (TransactionEffects) IsBcsEnum() {}

func (e TransactionEffects) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *TransactionEffects) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e TransactionEffects) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (ObjectIn) IsBcsEnum() {}

func (e ObjectIn) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *ObjectIn) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e ObjectIn) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (ObjectOut) IsBcsEnum() {}

func (e ObjectOut) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *ObjectOut) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e ObjectOut) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (AccumulatorOperation) IsBcsEnum() {}

func (e AccumulatorOperation) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *AccumulatorOperation) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e AccumulatorOperation) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (AccumulatorValue) IsBcsEnum() {}

func (e AccumulatorValue) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *AccumulatorValue) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e AccumulatorValue) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (IDOperation) IsBcsEnum() {}

func (e IDOperation) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *IDOperation) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e IDOperation) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (UnchangedSharedKind) IsBcsEnum() {}

func (e UnchangedSharedKind) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *UnchangedSharedKind) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e UnchangedSharedKind) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (ExecutionStatus) IsBcsEnum() {}

func (e ExecutionStatus) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *ExecutionStatus) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e ExecutionStatus) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (ExecutionFailureStatus) IsBcsEnum() {}

func (e ExecutionFailureStatus) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *ExecutionFailureStatus) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e ExecutionFailureStatus) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (CommandArgumentError) IsBcsEnum() {}

func (e CommandArgumentError) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *CommandArgumentError) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e CommandArgumentError) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (TypeArgumentError) IsBcsEnum() {}

func (e TypeArgumentError) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *TypeArgumentError) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e TypeArgumentError) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (PackageUpgradeError) IsBcsEnum() {}

func (e PackageUpgradeError) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *PackageUpgradeError) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e PackageUpgradeError) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (ObjectData) IsBcsEnum() {}

func (e ObjectData) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *ObjectData) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e ObjectData) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (MoveObjectType) IsBcsEnum() {}

func (e MoveObjectType) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *MoveObjectType) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e MoveObjectType) Variant() string { return variantOf(reflect.ValueOf(e)) }

func (Owner) IsBcsEnum() {}

func (e Owner) MarshalJSON() ([]byte, error) { return marshalEnum(reflect.ValueOf(e)) }

func (e *Owner) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, reflect.ValueOf(e).Elem()) }

func (e Owner) Variant() string { return variantOf(reflect.ValueOf(e)) }
