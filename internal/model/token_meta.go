package model

// TokenMeta identifies one side of a pool and its fixed-point scale.
type TokenMeta struct {
	Address  string `json:"address,omitempty"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name,omitempty"`
}

// Label is the display name used in swap directions.
func (t TokenMeta) Label() string {
	switch {
	case t.Symbol != "":
		return t.Symbol
	case t.Address != "":
		return t.Address
	default:
		return "?"
	}
}
