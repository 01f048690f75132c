package usecase

import "time"

const (
	// accountCacheTTL is deliberately short: balances change inside
	// payment transactions that the cache cannot observe.
	accountCacheTTL = 10 * time.Second
)
