package store

// ServiceCategory represents the category of home service being booked
type ServiceCategory string

const (
	ServiceCategoryCleaning    ServiceCategory = "cleaning"
	ServiceCategoryGardening   ServiceCategory = "gardening"
	ServiceCategoryHandyman    ServiceCategory = "handyman"
	ServiceCategoryChildcare   ServiceCategory = "childcare"
	ServiceCategoryElderlyCare ServiceCategory = "elderly_care"
	ServiceCategoryTutoring    ServiceCategory = "tutoring"
)

// ValidServiceCategory reports whether the category is one the platform offers
func ValidServiceCategory(c ServiceCategory) bool {
	switch c {
	case ServiceCategoryCleaning, ServiceCategoryGardening, ServiceCategoryHandyman,
		ServiceCategoryChildcare, ServiceCategoryElderlyCare, ServiceCategoryTutoring:
		return true
	}
	return false
}
