package domain

import "strings"

// Asset ties a display name to its trading pair and reference-data id.
type Asset struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	CoinGeckoID string `json:"coingecko_id"`
}

// FallbackAsset is used for any name missing from the catalog.
var FallbackAsset = Asset{Name: "Bitcoin", Symbol: "BTCUSDT", CoinGeckoID: "bitcoin"}

// Catalog lists the supported assets in display order.
var Catalog = []Asset{
	FallbackAsset,
	{Name: "Ethereum", Symbol: "ETHUSDT", CoinGeckoID: "ethereum"},
	{Name: "Dogecoin", Symbol: "DOGEUSDT", CoinGeckoID: "dogecoin"},
}

var catalogByKey map[string]Asset

func init() {
	catalogByKey = make(map[string]Asset, len(Catalog)*3)
	for _, a := range Catalog {
		catalogByKey[strings.ToLower(a.Name)] = a
		catalogByKey[strings.ToLower(a.Symbol)] = a
		catalogByKey[strings.ToLower(a.CoinGeckoID)] = a
	}
}

// LookupAsset finds an asset by name, trading symbol or CoinGecko id,
// case-insensitively.
func LookupAsset(name string) (Asset, bool) {
	a, ok := catalogByKey[strings.ToLower(strings.TrimSpace(name))]
	return a, ok
}

// ResolveAsset is LookupAsset with the catalog fallback applied.
func ResolveAsset(name string) Asset {
	if a, ok := LookupAsset(name); ok {
		return a
	}
	return FallbackAsset
}

// AssetNames returns the display names of the catalog.
func AssetNames() []string {
	names := make([]string, 0, len(Catalog))
	for _, a := range Catalog {
		names = append(names, a.Name)
	}
	return names
}
