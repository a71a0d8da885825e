package model

// Account is a point-in-time snapshot of one ledger account owned by the
// external accounting system. ExternalID is unique within a company;
// DisplayName is not guaranteed unique but is the only join key available in
// report snapshots, which carry names rather than ids.
type Account struct {
	ExternalID    string
	DisplayName   string
	NativeType    string
	NativeSubtype string
	Active        bool
}
