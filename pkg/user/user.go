package user

import "github.com/shopspring/decimal"

type User struct {
	Id          int
	Uid         string
	Username    string
	DisplayName string
	Settings    Settings
}

type Settings struct {
	Timezone string
	// Currency is the ISO code amounts are displayed in. Empty means the configured default.
	Currency string
	// FixedLifestyleMode pins the needs budget at FixedNeedsAmount when income rises and
	// sends the difference to savings.
	FixedLifestyleMode bool
	FixedNeedsAmount   decimal.Decimal
}
