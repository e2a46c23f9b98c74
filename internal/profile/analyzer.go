package profile

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skillbuddy/internal/ai"
)

//go:embed prompts/extract.md
var extractInstructions string

//go:embed prompts/analyze.md
var analyzeInstructions string

const generalRole = "General"

// Analyzer turns resume text into a Profile and reviews the resume.
type Analyzer struct {
	requester ai.Requester
	logger    *zap.Logger
}

func NewAnalyzer(requester ai.Requester, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{requester: requester, logger: logger}
}

// Extract builds a structured profile from resume text.
func (a *Analyzer) Extract(ctx context.Context, resumeText, targetRole string) (*Profile, error) {
	resumeText = strings.TrimSpace(resumeText)
	if resumeText == "" {
		return nil, errors.New("resume text is empty")
	}

	var prompt strings.Builder
	prompt.WriteString("Extract structured profile data from this resume.\n")
	if role := strings.TrimSpace(targetRole); role != "" {
		fmt.Fprintf(&prompt, "Target role: %s\n", role)
	}
	fmt.Fprintf(&prompt, "Resume:\n%s", resumeText)

	raw, err := a.requester.Complete(ctx, ai.Request{
		Operation:    "extract_profile",
		Instructions: extractInstructions,
		Schema:       profileSchema.Definition,
		Parts:        []ai.Part{ai.Text(prompt.String())},
	})
	if err != nil {
		return nil, fmt.Errorf("extract profile: %w", err)
	}

	profile, err := profileSchema.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("extract profile: %w", err)
	}

	a.logger.Info("profile extracted",
		zap.Int("skills", len(profile.Skills)),
		zap.Int("experience", len(profile.Experience)),
		zap.Int("projects", len(profile.Projects)),
		zap.String("level", profile.LevelOrDefault()),
	)

	return profile, nil
}

// Analyze produces a rated review of the resume.
func (a *Analyzer) Analyze(ctx context.Context, resumeText string, profile *Profile, targetRole string) (*Analysis, error) {
	resumeText = strings.TrimSpace(resumeText)
	if resumeText == "" {
		return nil, errors.New("resume text is empty")
	}

	role := strings.TrimSpace(targetRole)
	if role == "" {
		role = generalRole
	}

	skills := "Not specified"
	if profile != nil && len(profile.Skills) > 0 {
		skills = profile.SkillList(0)
	}

	prompt := fmt.Sprintf(`Analyze this resume and provide comprehensive feedback.

Target Role: %s
Candidate Level: %s
Current Skills: %s
Projects:
%s

Full Resume Text:
%s`, role, profile.LevelOrDefault(), skills, profile.ProjectDigest(0), resumeText)

	raw, err := a.requester.Complete(ctx, ai.Request{
		Operation:    "analyze_resume",
		Instructions: analyzeInstructions,
		Schema:       analysisSchema.Definition,
		Parts:        []ai.Part{ai.Text(prompt)},
	})
	if err != nil {
		return nil, fmt.Errorf("analyze resume: %w", err)
	}

	analysis, err := analysisSchema.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("analyze resume: %w", err)
	}

	a.logger.Info("resume analyzed", zap.Int("rating", analysis.Rating))

	return analysis, nil
}

// Review extracts the profile and then analyzes the resume against it.
func (a *Analyzer) Review(ctx context.Context, resumeText, targetRole string) (*Document, error) {
	profile, err := a.Extract(ctx, resumeText, targetRole)
	if err != nil {
		return nil, err
	}

	analysis, err := a.Analyze(ctx, resumeText, profile, targetRole)
	if err != nil {
		return nil, err
	}

	return &Document{Profile: *profile, Analysis: analysis}, nil
}
