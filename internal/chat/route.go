package chat

import "github.com/crimelens/crime-analytics/internal/dataset"

// Router decides which table family a question is about.
type Router struct {
	foreignPatterns    keywordSet
	governmentPatterns keywordSet
}

// NewRouter creates a new dataset router.
func NewRouter() *Router {
	return &Router{
		foreignPatterns:    newKeywordSet("foreign", "foreigner", "foreigners"),
		governmentPatterns: newKeywordSet("government", "national", "india total"),
	}
}

// Route picks the foreigner table when foreigners are mentioned, the
// government table for national questions or a named crime head, and the
// arrests table otherwise.
func (r *Router) Route(message, crime string) dataset.Name {
	switch {
	case r.foreignPatterns.match(message):
		return dataset.Foreign
	case r.governmentPatterns.match(message), crime != "":
		return dataset.Government
	default:
		return dataset.City
	}
}
