package rate

// Source tags where a rate came from. The BCV feed is the only source
// currently wired.
type Source string

const SourceOfficial Source = "oficial"

// ExchangeRate is one quoted conversion average, in VES per foreign unit.
// Values are replaced wholesale on refresh, never mutated.
type ExchangeRate struct {
	Source  Source  `json:"fuente"`
	Name    string  `json:"nombre"`
	Average float64 `json:"promedio"`
}
