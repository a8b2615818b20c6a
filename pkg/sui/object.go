package sui

// Object is a full object as read or written by a transaction.
type Object struct {
	Data                ObjectData `json:"data"`
	Owner               Owner      `json:"owner"`
	PreviousTransaction Digest     `json:"previous_transaction"`
	StorageRebate       uint64     `json:"storage_rebate"`
}

type ObjectData struct {
	Move    *MoveObject  `json:"Move"`
	Package *MovePackage `json:"Package"`
}

type MoveObject struct {
	Type              MoveObjectType `json:"type_"`
	HasPublicTransfer bool           `json:"has_public_transfer"`
	Version           uint64         `json:"version"`
	Contents          Bytes          `json:"contents"`
}

// MoveObjectType compresses the common coin types to a tag; everything else
// carries its full StructTag.
type MoveObjectType struct {
	Other                      *StructTag `json:"Other"`
	GasCoin                    *Unit      `json:"GasCoin"`
	StakedSui                  *Unit      `json:"StakedSui"`
	Coin                       *TypeTag   `json:"Coin"`
	SuiBalanceAccumulatorField *Unit      `json:"SuiBalanceAccumulatorField"`
	BalanceAccumulatorField    *TypeTag   `json:"BalanceAccumulatorField"`
}

// MovePackage holds its maps as key-ordered pair lists, which is how they
// appear on the wire.
type MovePackage struct {
	ID              ObjectID        `json:"id"`
	Version         uint64          `json:"version"`
	ModuleMap       []PackageModule `json:"module_map"`
	TypeOriginTable []TypeOrigin    `json:"type_origin_table"`
	LinkageTable    []LinkageEntry  `json:"linkage_table"`
}

type PackageModule struct {
	Name     string `json:"name"`
	Bytecode Bytes  `json:"bytecode"`
}

type TypeOrigin struct {
	ModuleName   string   `json:"module_name"`
	DatatypeName string   `json:"datatype_name"`
	Package      ObjectID `json:"package"`
}

type LinkageEntry struct {
	OriginalID ObjectID    `json:"original_id"`
	Upgrade    UpgradeInfo `json:"upgrade"`
}

type UpgradeInfo struct {
	UpgradedID      ObjectID `json:"upgraded_id"`
	UpgradedVersion uint64   `json:"upgraded_version"`
}

type Owner struct {
	AddressOwner          *Address               `json:"AddressOwner"`
	ObjectOwner           *Address               `json:"ObjectOwner"`
	Shared                *SharedOwner           `json:"Shared"`
	Immutable             *Unit                  `json:"Immutable"`
	ConsensusAddressOwner *ConsensusAddressOwner `json:"ConsensusAddressOwner"`
}

type SharedOwner struct {
	InitialSharedVersion uint64 `json:"initial_shared_version"`
}

type ConsensusAddressOwner struct {
	StartVersion uint64  `json:"start_version"`
	Owner        Address `json:"owner"`
}
