package yahooModel

type RawChart struct {
	Chart Chart `json:"chart"`
}

type Chart struct {
	Result []ChartResult `json:"result"`
	Error  *ChartError   `json:"error"`
}

type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type ChartResult struct {
	Meta       Meta       `json:"meta"`
	Timestamp  []int64    `json:"timestamp"`
	Indicators Indicators `json:"indicators"`
}

type Meta struct {
	Currency string `json:"currency"`
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchangeName"`
}

type Indicators struct {
	Quote []Quote `json:"quote"`
}

// Quote columns are aligned with ChartResult.Timestamp, null on non-trading slots.
type Quote struct {
	Close []*float64 `json:"close"`
}
