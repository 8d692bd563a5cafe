package stats

import "fmt"

// Prices maps a category title to the amount charged per event.
type Prices map[string]float64

// Line is one category of a price summary.
type Line struct {
	Title    string  `json:"title"`
	Count    int     `json:"count"`
	Price    float64 `json:"price"`
	Subtotal float64 `json:"subtotal"`
}

// Summary is the price breakdown for a set of counts.
type Summary struct {
	Lines    []Line  `json:"lines"`
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
}

// Summarize multiplies each category count by its price. Categories without
// a price are listed with a zero subtotal.
func Summarize(c Counts, prices Prices, currency string) Summary {
	s := Summary{Currency: currency}
	for _, title := range Categories {
		n := c.Get(title)
		price := prices[title]
		line := Line{
			Title:    title,
			Count:    n,
			Price:    price,
			Subtotal: float64(n) * price,
		}
		s.Lines = append(s.Lines, line)
		s.Total += line.Subtotal
	}
	return s
}

// FormatAmount renders an amount with two decimals and the currency suffix.
func FormatAmount(amount float64, currency string) string {
	if currency == "" {
		return fmt.Sprintf("%.2f", amount)
	}
	return fmt.Sprintf("%.2f %s", amount, currency)
}
