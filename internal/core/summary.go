package core

// ItemAmount aggregates purchases of one catalog item.
type ItemAmount struct {
	ItemID   string `json:"item_id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Amount   Money  `json:"amount"`
}

// DayAmount is the spending total of a single calendar day.
type DayAmount struct {
	Date   Date  `json:"date"`
	Amount Money `json:"amount"`
}

// PeriodSummary is a compact spending summary for a day, week or month.
type PeriodSummary struct {
	Period       Period       `json:"period"`
	Range        DateRange    `json:"range"`
	Total        Money        `json:"total"`
	Count        int          `json:"count"`
	AverageDaily Money        `json:"average_daily"`
	ByItem       []ItemAmount `json:"by_item"`
	Daily        []DayAmount  `json:"daily"`
}
