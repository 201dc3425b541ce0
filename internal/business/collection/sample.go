package collection

import "github.com/gta-invest/propertymap/pkg/model"

const samplePhoto = "https://via.placeholder.com/300x200"

// SamplePortfolio returns the starter portfolio offered to new users.
func SamplePortfolio() []model.PortfolioProperty {
	return []model.PortfolioProperty{
		{
			Property: model.Property{
				ID: 1, Address: "35 Balmuto Street, Unit 1807", City: "Toronto", State: "ON", ZipCode: "M4Y 0A3",
				Bedrooms: 1, Bathrooms: 1, SquareFeet: 550, MonthlyRent: 2500, CapRate: 2.85, ImageURL: samplePhoto,
			},
			PurchasePrice: 699000, CurrentValue: 750000, LoanBalance: 559200,
			MonthlyExpenses: 1800, MonthlyCashFlow: 700, PropertyType: "Condo", PurchaseDate: "2023-05-15",
		},
		{
			Property: model.Property{
				ID: 2, Address: "12 York Street, Unit 5601", City: "Toronto", State: "ON", ZipCode: "M5J 0A9",
				Bedrooms: 2, Bathrooms: 2, SquareFeet: 850, MonthlyRent: 3800, CapRate: 2.45, ImageURL: samplePhoto,
			},
			PurchasePrice: 1250000, CurrentValue: 1320000, LoanBalance: 1000000,
			MonthlyExpenses: 2900, MonthlyCashFlow: 900, PropertyType: "Condo", PurchaseDate: "2022-11-30",
		},
		{
			Property: model.Property{
				ID: 3, Address: "33 Charles Street East, Unit 4302", City: "Toronto", State: "ON", ZipCode: "M4Y 0A2",
				Bedrooms: 2, Bathrooms: 2, SquareFeet: 925, MonthlyRent: 3600, CapRate: 2.63, ImageURL: samplePhoto,
			},
			PurchasePrice: 1099000, CurrentValue: 1150000, LoanBalance: 879200,
			MonthlyExpenses: 2600, MonthlyCashFlow: 1000, PropertyType: "Condo", PurchaseDate: "2023-02-21",
		},
	}
}
