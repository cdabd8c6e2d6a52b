package models

// NoAirport - значение селектора "ничего не выбрано".
const NoAirport = 0

type Airport struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Code  string `json:"code"`
}
