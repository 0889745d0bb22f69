package model

// USExchange is listed without a suffix at the market-data provider.
const USExchange = "US"

// Ticker is a symbol listed on an exchange. Names are display metadata.
type Ticker struct {
	Symbol   string
	Exchange string
	Names    []string
}

// Key is the storage key and report name, e.g. "BOL.ST".
func (t Ticker) Key() string { return t.Symbol + "." + t.Exchange }

// ProviderSymbol is the symbol as the market-data provider knows it.
func (t Ticker) ProviderSymbol() string {
	if t.Exchange == USExchange || t.Exchange == "" {
		return t.Symbol
	}
	return t.Key()
}

// DisplayName returns the first configured name, falling back to the key.
func (t Ticker) DisplayName() string {
	if len(t.Names) > 0 && t.Names[0] != "" {
		return t.Names[0]
	}
	return t.Key()
}
