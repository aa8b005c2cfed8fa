package catalog

import "slices"

// Categories is the fixed industry taxonomy.
var Categories = []string{
	"marketing",
	"sales",
	"customer-support",
	"human-resources",
	"engineering",
	"finance",
	"legal",
	"education",
	"healthcare",
	"real-estate",
	"retail",
	"general",
}

// UseCases is the secondary task-type taxonomy.
var UseCases = []string{
	"writing",
	"analysis",
	"summarization",
	"translation",
	"ideation",
	"coding",
	"research",
	"communication",
	"planning",
}

func ValidCategory(c string) bool {
	return slices.Contains(Categories, c)
}

func ValidUseCase(u string) bool {
	return slices.Contains(UseCases, u)
}
