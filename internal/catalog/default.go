package catalog

// defaultEntries is the dairy assortment the bot ships with. Prices are in
// tenge.
var defaultEntries = []Entry{
	{"Молоко 2,5% 0,9л", 310},
	{"Молоко 3,2% 0,9л", 340},
	{"Кефир 2,5% 0,9л", 330},
	{"Кефир 1% 0,9л", 330},
	{"Кефир снежок 0,9л", 370},
	{"Сливки кг", 3050},
	{"Сливки 500гр", 1680},
	{"Сметана 15% 200гр", 290},
	{"Сметана 15% 400гр", 460},
	{"Сметана 15% 1кг", 1210},
	{"Сметана 20% 200гр", 310},
	{"Сметана 20% 400гр", 480},
	{"Сметана 20% 600гр", 690},
	{"Сметана 20% 1кг", 1310},
	{"Сулугуни в вакууме кг", 3900},
	{"Сулугуни кг", 3800},
	{"Чечел кг", 4300},
	{"Адыгейский кг", 3000},
	{"Колбасный вакуумный кг", 2900},
	{"Колбасный кг", 2830},
	{"Курт вакуум кг", 3800},
	{"Курт кг", 3700},
	{"Курт ведро 1 л", 2700},
	{"Курт ведро 0,5 л", 1500},
	{"Масло сладко-сливочное кг", 5200},
	{"Масло сладко-сливочное 200гр", 1150},
	{"Масло соленое кг", 5250},
	{"Творог кг", 1600},
	{"Айран турецкий", 135},
	{"Катык 400гр", 1080},
	{"Иримшик кг", 2930},
	{"Иримшик 200 гр", 710},
	{"Жент кг", 2580},
	{"Жент 200 гр", 670},
	{"Жент 500 гр", 1290},
}

// defaultExchange lists the perishables that come back for exchange.
var defaultExchange = []string{
	"Молоко 2,5% 0,9л",
	"Молоко 3,2% 0,9л",
	"Кефир 2,5% 0,9л",
	"Кефир 1% 0,9л",
	"Сметана 15% 200гр",
	"Сметана 15% 400гр",
	"Сметана 15% 1кг",
	"Сметана 20% 200гр",
	"Сметана 20% 400гр",
	"Сметана 20% 600гр",
	"Сметана 20% 1кг",
	"Айран турецкий",
	"Катык 400гр",
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return MustNew(defaultEntries, defaultExchange)
}
