// Package profile holds the candidate profile extracted from a resume and the
// resume review produced for it.
package profile

import (
	"fmt"
	"strings"
)

const (
	unknownLevel  = "Not specified"
	defaultSkills = "General programming"
)

type Experience struct {
	Title      string   `json:"title" yaml:"title" validate:"required"`
	Company    string   `json:"company,omitempty" yaml:"company,omitempty"`
	Duration   string   `json:"duration,omitempty" yaml:"duration,omitempty"`
	Highlights []string `json:"highlights" yaml:"highlights"`
}

type Project struct {
	Name         string   `json:"name" yaml:"name" validate:"required"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Technologies []string `json:"technologies" yaml:"technologies"`
}

// Profile is the structured summary of a candidate's resume.
type Profile struct {
	Skills     []string     `json:"skills" yaml:"skills"`
	Experience []Experience `json:"experience" yaml:"experience" validate:"dive"`
	Projects   []Project    `json:"projects" yaml:"projects" validate:"dive"`
	Level      string       `json:"level,omitempty" yaml:"level,omitempty"`
	Summary    string       `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// SkillList joins the first limit skills, or all of them when limit is not positive.
func (p *Profile) SkillList(limit int) string {
	if p == nil || len(p.Skills) == 0 {
		return defaultSkills
	}
	skills := p.Skills
	if limit > 0 && len(skills) > limit {
		skills = skills[:limit]
	}
	return strings.Join(skills, ", ")
}

// LevelOrDefault returns the estimated seniority or a placeholder.
func (p *Profile) LevelOrDefault() string {
	if p == nil || strings.TrimSpace(p.Level) == "" {
		return unknownLevel
	}
	return p.Level
}

// ProjectDigest renders up to limit projects as bullet lines with their stack.
func (p *Profile) ProjectDigest(limit int) string {
	if p == nil || len(p.Projects) == 0 {
		return "No specific projects listed"
	}

	var b strings.Builder
	for i, project := range p.Projects {
		if limit > 0 && i == limit {
			break
		}
		description := project.Description
		if description == "" {
			description = "No description"
		}
		fmt.Fprintf(&b, "- %s: %s", project.Name, description)
		if len(project.Technologies) > 0 {
			fmt.Fprintf(&b, " (Technologies: %s)", strings.Join(project.Technologies, ", "))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// ExperienceDigest renders up to limit roles as bullet lines.
func (p *Profile) ExperienceDigest(limit int) string {
	if p == nil || len(p.Experience) == 0 {
		return "No experience listed"
	}

	var b strings.Builder
	for i, exp := range p.Experience {
		if limit > 0 && i == limit {
			break
		}
		b.WriteString("- " + exp.Title)
		if exp.Company != "" {
			b.WriteString(" at " + exp.Company)
		}
		if exp.Duration != "" {
			b.WriteString(" (" + exp.Duration + ")")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Rewritten holds resume sections rewritten for applicant tracking systems.
type Rewritten struct {
	Summary  string   `json:"summary" yaml:"summary" validate:"required"`
	Skills   string   `json:"skills" yaml:"skills" validate:"required"`
	Projects []string `json:"projects" yaml:"projects"`
}

// Analysis is a scored resume review.
type Analysis struct {
	Rating              int       `json:"rating" yaml:"rating" validate:"min=1,max=10"`
	RatingJustification string    `json:"rating_justification" yaml:"rating_justification" validate:"required"`
	Strengths           []string  `json:"strengths" yaml:"strengths"`
	Weaknesses          []string  `json:"weaknesses" yaml:"weaknesses"`
	Mistakes            []string  `json:"mistakes" yaml:"mistakes"`
	Suggestions         []string  `json:"suggestions" yaml:"suggestions"`
	SkillsToAdd         []string  `json:"skills_to_add" yaml:"skills_to_add"`
	OverallSummary      string    `json:"overall_summary" yaml:"overall_summary" validate:"required"`
	Rewritten           Rewritten `json:"rewritten" yaml:"rewritten"`
}

// Document is what gets persisted: the profile plus its optional review.
type Document struct {
	Profile  `yaml:",inline"`
	Analysis *Analysis `json:"analysis,omitempty" yaml:"analysis,omitempty"`
}
