package supervisor

import "context"

// PartnerMatch is one candidate opportunity returned by the partner
// database collaborator, per spec §6's partner/opportunity table shape.
type PartnerMatch struct {
	Organization   string
	Role           string
	MatchScore     float64
	CareerPageURL  string
	Contact        string
	Location       string
	SalaryRange    string
}

// PartnerFinder is the partner_matching node's only dependency on
// persistence — satisfied by the partnerdb collaborator in production and
// by a stub in tests.
type PartnerFinder interface {
	FindMatches(ctx context.Context, query string) ([]PartnerMatch, error)
}
