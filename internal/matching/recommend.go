package matching

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skillbuddy/internal/ai"
	"github.com/spigell/skillbuddy/internal/profile"
	s "github.com/spigell/skillbuddy/internal/structured"
)

//go:embed prompts/recommend.md
var recommendInstructions string

type CompanyFit struct {
	CompanyType      string   `json:"company_type" validate:"required"`
	Reason           string   `json:"reason" validate:"required"`
	ExampleCompanies []string `json:"example_companies"`
}

type Recommendations struct {
	RecommendedRoles  []string     `json:"recommended_roles" validate:"min=1,dive,required"`
	MatchingCompanies []CompanyFit `json:"matching_companies" validate:"dive"`
	KeywordsToAdd     []string     `json:"keywords_to_add"`
	DomainFit         string       `json:"domain_fit" validate:"required"`
}

var recommendationsSchema = s.Schema[Recommendations]{
	Name: "recommendations",
	Definition: s.Object(map[string]*s.Def{
		"recommended_roles": s.Strings("Five to seven job titles"),
		"matching_companies": s.Array(s.Object(map[string]*s.Def{
			"company_type":      s.String("Kind of company"),
			"reason":            s.String("Why it fits the candidate"),
			"example_companies": s.Strings("Example companies"),
		}, "company_type", "reason", "example_companies"), "Company types that fit"),
		"keywords_to_add": s.Strings("Resume keywords to add"),
		"domain_fit":      s.String("Industries or domains that fit best"),
	}, "recommended_roles", "matching_companies", "keywords_to_add", "domain_fit"),
}

// Recommender suggests roles and companies without searching.
type Recommender struct {
	requester ai.Requester
	logger    *zap.Logger
}

func NewRecommender(requester ai.Requester, logger *zap.Logger) *Recommender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recommender{requester: requester, logger: logger}
}

func (r *Recommender) Recommend(ctx context.Context, p *profile.Profile, role, location string) (*Recommendations, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		location = "Flexible"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Target role: %s\n", strings.TrimSpace(role))
	fmt.Fprintf(&b, "Preferred location: %s\n", location)
	fmt.Fprintf(&b, "Experience level: %s\n", p.LevelOrDefault())
	fmt.Fprintf(&b, "Skills: %s\n", p.SkillList(0))
	fmt.Fprintf(&b, "Projects:\n%s\n", p.ProjectDigest(0))
	fmt.Fprintf(&b, "Experience:\n%s\n", experienceDigest(p))
	fmt.Fprintf(&b, "Summary: %s\n", summaryOf(p))

	raw, err := r.requester.Complete(ctx, ai.Request{
		Operation:    "recommend_roles",
		Instructions: recommendInstructions,
		Schema:       recommendationsSchema.Definition,
		Parts:        []ai.Part{ai.Text(b.String())},
	})
	if err != nil {
		return nil, fmt.Errorf("recommend roles: %w", err)
	}

	recs, err := recommendationsSchema.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("recommend roles: %w", err)
	}

	r.logger.Info("recommendations ready",
		zap.Int("roles", len(recs.RecommendedRoles)),
		zap.Int("company_types", len(recs.MatchingCompanies)),
	)
	return recs, nil
}

func experienceDigest(p *profile.Profile) string {
	if p == nil || len(p.Experience) == 0 {
		return "No experience listed"
	}

	lines := make([]string, 0, len(p.Experience))
	for _, exp := range p.Experience {
		line := "- " + exp.Title
		if exp.Company != "" {
			line += " at " + exp.Company
		}
		duration := exp.Duration
		if duration == "" {
			duration = "Duration not specified"
		}
		lines = append(lines, line+" ("+duration+")")
	}
	return strings.Join(lines, "\n")
}
