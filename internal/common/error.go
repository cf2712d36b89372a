package common

import "fmt"

var (
	ErrSnapshotReadError    = fmt.Errorf("cannot read snapshot")
	ErrSnapshotParseError   = fmt.Errorf("cannot parse snapshot")
	ErrCatalogReadError     = fmt.Errorf("cannot read platform catalog")
	ErrCatalogParseError    = fmt.Errorf("cannot parse platform catalog")
	ErrNoCountersFoundError = fmt.Errorf("no counters found")
)
