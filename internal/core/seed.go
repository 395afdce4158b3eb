package core

import "github.com/shopspring/decimal"

// DefaultSeller is the issuing business used when no seller is configured.
var DefaultSeller = Seller{
	CompanyName: "Tili Technologies",
	GSTNumber:   "32AAAAA8888A1Z5",
	State:       "Kerala",
	StateCode:   "32",
}

// SeedClients returns the default client records.
func SeedClients() []Client {
	return []Client{
		{
			Name:      "Acme Corp",
			Email:     "accounts@acme.com",
			Address:   "123 Industrial Estate, Mumbai, Maharashtra",
			GSTNumber: "27AAAAA0000A1Z5",
			State:     "Maharashtra",
			StateCode: "27",
		},
		{
			Name:      "Wayne Enterprises",
			Email:     "alfred@wayne.com",
			Address:   "1007 Mountain Drive, Gotham, Gujarat",
			GSTNumber: "24BBBBB1111B1Z6",
			State:     "Gujarat",
			StateCode: "24",
		},
		{
			Name:      "Stark Industries",
			Email:     "pepper@stark.com",
			Address:   "Stark Tower, New York, Delhi",
			GSTNumber: "07CCCCC2222C1Z7",
			State:     "Delhi",
			StateCode: "07",
		},
	}
}

// SeedItems returns the default catalog.
func SeedItems() []InventoryItem {
	return []InventoryItem{
		{Name: "Web Development Service", Rate: decimal.NewFromInt(50000), HSNCode: "9983", Unit: "Service"},
		{Name: "Annual Maintenance Contract", Rate: decimal.NewFromInt(12000), HSNCode: "9987", Unit: "Year"},
		{Name: "Hosting Server (Basic)", Rate: decimal.NewFromInt(5000), HSNCode: "998311", Unit: "Year"},
	}
}
