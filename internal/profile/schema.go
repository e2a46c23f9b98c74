package profile

import (
	s "github.com/spigell/skillbuddy/internal/structured"
)

var profileSchema = s.Schema[Profile]{
	Name: "resume profile",
	Definition: s.Object(map[string]*s.Def{
		"skills": s.Strings("Normalized skills claimed in the resume, Title Case"),
		"experience": s.Array(s.Object(map[string]*s.Def{
			"title":      s.String("Role title"),
			"company":    s.NullableString("Company or organization name"),
			"duration":   s.NullableString("Duration string as reported"),
			"highlights": s.Strings("Bullet highlights"),
		}, "title", "highlights"), "Experience entries"),
		"projects": s.Array(s.Object(map[string]*s.Def{
			"name":         s.String("Project name"),
			"description":  s.NullableString("Short project overview"),
			"technologies": s.Strings("Tech stack keywords"),
		}, "name", "technologies"), "Projects and portfolio items"),
		"level":   s.NullableString("Seniority level estimated from the resume"),
		"summary": s.NullableString("One sentence snapshot of candidate strengths"),
	}, "skills", "experience", "projects"),
}

var analysisSchema = s.Schema[Analysis]{
	Name: "resume analysis",
	Definition: s.Object(map[string]*s.Def{
		"rating":               s.Integer("Overall resume rating", 1, 10),
		"rating_justification": s.String("Explanation for the rating"),
		"strengths":            s.Strings("What the resume does well"),
		"weaknesses":           s.Strings("Areas the resume lacks"),
		"mistakes":             s.Strings("Grammar, formatting and ATS compliance issues"),
		"suggestions":          s.Strings("Improvement suggestions with examples"),
		"skills_to_add":        s.Strings("Skills or tools worth adding for the domain"),
		"overall_summary":      s.String("Four to six line overall summary"),
		"rewritten": s.Object(map[string]*s.Def{
			"summary":  s.String("ATS-optimized professional summary in three to four lines"),
			"skills":   s.String("Skills section organized by category"),
			"projects": s.Strings("Rewritten impact-focused project descriptions"),
		}, "summary", "skills", "projects"),
	}, "rating", "rating_justification", "strengths", "weaknesses", "mistakes",
		"suggestions", "skills_to_add", "overall_summary", "rewritten"),
}
