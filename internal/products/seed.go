package products

import "github.com/shopspring/decimal"

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// seedProducts is the sample catalog loaded into an empty store at startup.
func seedProducts() []NewProduct {
	return []NewProduct{
		{
			Name:          "iPhone 15 Pro Max",
			Description:   "Latest flagship iPhone with titanium design and advanced camera system",
			Price:         dec("134900"),
			OriginalPrice: decPtr("159900"),
			Category:      "smartphones",
			ImageURL:      "https://images.unsplash.com/photo-1592750475338-74b7b21085ab?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=300",
			Rating:        dec("4.8"),
			ReviewCount:   256,
			InStock:       true,
			Featured:      true,
			Tags:          []string{"best-seller", "flagship"},
			Specifications: map[string]string{
				"display":   "6.7-inch Super Retina XDR",
				"processor": "A17 Pro chip",
				"storage":   "256GB",
				"camera":    "48MP Pro camera system",
			},
		},
		{
			Name:          "MacBook Pro M3",
			Description:   "Professional laptop with M3 chip for ultimate performance",
			Price:         dec("199900"),
			OriginalPrice: decPtr("219900"),
			Category:      "laptops",
			ImageURL:      "https://images.unsplash.com/photo-1541807084-5c52b6b3adef?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=300",
			Rating:        dec("4.9"),
			ReviewCount:   189,
			InStock:       true,
			Featured:      true,
			Tags:          []string{"editor-choice", "professional"},
			Specifications: map[string]string{
				"processor": "Apple M3 chip",
				"memory":    "16GB unified memory",
				"storage":   "512GB SSD",
				"display":   "14-inch Liquid Retina XDR",
			},
		},
		{
			Name:          "Sony WH-1000XM5",
			Description:   "Industry-leading noise canceling wireless headphones",
			Price:         dec("29990"),
			OriginalPrice: decPtr("34990"),
			Category:      "accessories",
			ImageURL:      "https://images.unsplash.com/photo-1583394838336-acd977736f90?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=300",
			Rating:        dec("4.7"),
			ReviewCount:   421,
			InStock:       true,
			Featured:      true,
			Tags:          []string{"trending", "audio"},
			Specifications: map[string]string{
				"driver":       "30mm drivers",
				"battery":      "30 hours playback",
				"connectivity": "Bluetooth 5.2",
				"features":     "Industry-leading noise canceling",
			},
		},
		{
			Name:          "Samsung Galaxy S24",
			Description:   "Latest Samsung flagship with AI-powered photography",
			Price:         dec("74999"),
			OriginalPrice: decPtr("79999"),
			Category:      "smartphones",
			ImageURL:      "https://images.unsplash.com/photo-1610945265064-0e34e5519bbf?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=300",
			Rating:        dec("4.6"),
			ReviewCount:   334,
			InStock:       true,
			Featured:      true,
			Tags:          []string{"new-arrival", "android"},
			Specifications: map[string]string{
				"display":   "6.2-inch Dynamic AMOLED 2X",
				"processor": "Snapdragon 8 Gen 3",
				"storage":   "256GB",
				"camera":    "50MP triple camera system",
			},
		},
		{
			Name:          "iPad Air M2",
			Description:   "Powerful and versatile iPad with M2 chip",
			Price:         dec("59900"),
			OriginalPrice: decPtr("69900"),
			Category:      "tablets",
			ImageURL:      "https://images.unsplash.com/photo-1544244015-0df4b3ffc6b0?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=300",
			Rating:        dec("4.8"),
			ReviewCount:   167,
			InStock:       true,
			Featured:      false,
			Tags:          []string{"deal-of-the-day"},
			Specifications: map[string]string{
				"display":   "10.9-inch Liquid Retina",
				"processor": "Apple M2 chip",
				"storage":   "256GB",
				"camera":    "12MP Wide camera",
			},
		},
	}
}
