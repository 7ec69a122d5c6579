package model

// AssetClass distinguishes the two tracked markets. Stocks are identified by
// exchange ticker, crypto-assets by their provider id (e.g. "bitcoin").
type AssetClass string

const (
	ClassStock  AssetClass = "stock"
	ClassCrypto AssetClass = "crypto"
)
