package core

// SeedServices returns the fixed service catalog used when no services
// have been persisted yet: the four German levels and the three
// Prometric coaching plans.
func SeedServices() []Service {
	return []Service{
		{ID: "svc-german-a1", Category: CategoryGerman, Name: "German A1", Price: Rupees(15000)},
		{ID: "svc-german-a2", Category: CategoryGerman, Name: "German A2", Price: Rupees(15000)},
		{ID: "svc-german-b1", Category: CategoryGerman, Name: "German B1", Price: Rupees(18000)},
		{ID: "svc-german-b2", Category: CategoryGerman, Name: "German B2", Price: Rupees(20000)},
		{ID: "svc-prometric-basic", Category: CategoryPrometric, Name: "Prometric Basic", Price: Rupees(8000)},
		{ID: "svc-prometric-standard", Category: CategoryPrometric, Name: "Prometric Standard", Price: Rupees(12000)},
		{ID: "svc-prometric-premium", Category: CategoryPrometric, Name: "Prometric Premium", Price: Rupees(18000)},
	}
}
