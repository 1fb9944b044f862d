package ports

import "context"

// CurrencyLedger is the fungible reward currency. Calls made with a
// transaction context commit or roll back with it.
type CurrencyLedger interface {
	Mint(ctx context.Context, amount uint64, recipient string) error
	Burn(ctx context.Context, amount uint64, payer string) error
	Transfer(ctx context.Context, amount uint64, from, to string) error
	BalanceOf(ctx context.Context, account string) (uint64, error)
}

// AssetCustody holds the single ownership unit of each territory.
type AssetCustody interface {
	MintOne(ctx context.Context, assetID, recipient string) error
	TransferOne(ctx context.Context, assetID, from, to string) error
	OwnerOf(ctx context.Context, assetID string) (string, error)
}

// RandomSource yields the capture random factor in [0, 100).
type RandomSource interface {
	Factor(ctx context.Context) (uint8, error)
}

// SlotCounter is the shared monotonic platform counter.
type SlotCounter interface {
	Next(ctx context.Context) (uint64, error)
}
