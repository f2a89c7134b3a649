package sandbox

import "tagpay/internal/models"

// nigerianBanks is the directory the sandbox serves from GET /bank. A
// representative subset of the real directory is enough for development.
var nigerianBanks = []models.Bank{
	{Name: "Access Bank", Code: "044"},
	{Name: "Citibank Nigeria", Code: "023"},
	{Name: "Ecobank Nigeria", Code: "050"},
	{Name: "Fidelity Bank", Code: "070"},
	{Name: "First Bank of Nigeria", Code: "011"},
	{Name: "First City Monument Bank", Code: "214"},
	{Name: "Guaranty Trust Bank", Code: "058"},
	{Name: "Keystone Bank", Code: "082"},
	{Name: "Kuda Microfinance Bank", Code: "50211"},
	{Name: "Moniepoint MFB", Code: "50515"},
	{Name: "OPay Digital Services", Code: "999992"},
	{Name: "PalmPay", Code: "999991"},
	{Name: "Polaris Bank", Code: "076"},
	{Name: "Providus Bank", Code: "101"},
	{Name: "Stanbic IBTC Bank", Code: "221"},
	{Name: "Standard Chartered Bank", Code: "068"},
	{Name: "Sterling Bank", Code: "232"},
	{Name: "Union Bank of Nigeria", Code: "032"},
	{Name: "United Bank For Africa", Code: "033"},
	{Name: "Unity Bank", Code: "215"},
	{Name: "Wema Bank", Code: "035"},
	{Name: "Zenith Bank", Code: "057"},
}
