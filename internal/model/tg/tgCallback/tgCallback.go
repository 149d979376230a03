package tgCallback

// Callbacks buttons uniques
const (
	SetPurchased string = "set_purchased" // выбрать ETF для ввода купленной суммы
	ShowHistory  string = "show_history"
	Acknowledge  string = "acknowledge"
)
