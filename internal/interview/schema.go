package interview

import s "github.com/spigell/skillbuddy/internal/structured"

type liveQuestion struct {
	Number   int      `json:"question_number" validate:"min=1"`
	Question string   `json:"question" validate:"required"`
	Category Category `json:"category" validate:"oneof=intro project technical problem_solving hr_culture"`
}

type liveQuestionSet struct {
	Questions []liveQuestion `json:"questions" validate:"required,dive"`
}

type standardQuestion struct {
	Question string   `json:"question" validate:"required"`
	Category Category `json:"category" validate:"oneof=project_architecture challenges technology_deep_dive real_world_application optimization_scalability"`
	Context  *string  `json:"context"`
}

type standardQuestionSet struct {
	Questions []standardQuestion `json:"questions" validate:"required,dive"`
}

type clarityResponse struct {
	IsClear             *bool   `json:"is_clear" validate:"required"`
	NeedsClarification  *bool   `json:"needs_clarification" validate:"required"`
	ClarificationPrompt *string `json:"clarification_prompt"`
	BriefFeedback       string  `json:"brief_feedback" validate:"required"`
}

type liveResult struct {
	InterviewScore       int      `json:"interview_score" validate:"min=1,max=10"`
	StrengthsInAnswering []string `json:"strengths_in_answering" validate:"required"`
	ImprovementAreas     []string `json:"improvement_areas" validate:"required"`
	CommunicationScore   int      `json:"communication_score" validate:"min=1,max=10"`
	WeakPoints           []string `json:"weak_points" validate:"required"`
	Suggestions          []string `json:"suggestions" validate:"required"`
}

// AnswerEvaluation scores one answer of a standard interview.
type AnswerEvaluation struct {
	QuestionNumber int      `json:"question_number" validate:"min=1"`
	Score          int      `json:"score" validate:"min=1,max=10"`
	Strengths      []string `json:"strengths"`
	Improvements   []string `json:"improvements"`
	MissingPoints  []string `json:"missing_points"`
}

// SoftSkills scores delivery across a standard interview.
type SoftSkills struct {
	CommunicationClarity int    `json:"communication_clarity" validate:"min=1,max=10"`
	Structure            int    `json:"structure" validate:"min=1,max=10"`
	Confidence           int    `json:"confidence" validate:"min=1,max=10"`
	Feedback             string `json:"feedback" validate:"required"`
}

type standardResult struct {
	OverallScore        int                `json:"overall_score" validate:"min=1,max=10"`
	Evaluations         []AnswerEvaluation `json:"evaluations" validate:"required,dive"`
	OverallStrengths    []string           `json:"overall_strengths"`
	OverallImprovements []string           `json:"overall_improvements"`
	WeakTopics          []string           `json:"weak_topics"`
	SoftSkills          SoftSkills         `json:"soft_skills"`
}

func categoryNames(categories []Category) []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return names
}

var liveQuestionsSchema = s.Schema[liveQuestionSet]{
	Name: "live interview questions",
	Definition: s.Object(map[string]*s.Def{
		"questions": s.FixedArray(s.Object(map[string]*s.Def{
			"question_number": s.Integer("1-based position of the question", 1, 7),
			"question":        s.String("The interview question"),
			"category":        s.Enum("Question category", categoryNames(liveCategories)...),
		}, "question_number", "question", "category"), "The 7 live interview questions in order", 7),
	}, "questions"),
}

var standardQuestionsSchema = s.Schema[standardQuestionSet]{
	Name: "standard interview questions",
	Definition: s.Object(map[string]*s.Def{
		"questions": s.FixedArray(s.Object(map[string]*s.Def{
			"question": s.String("The interview question"),
			"category": s.Enum("Question category", categoryNames(standardCategories)...),
			"context":  s.NullableString("Why this question is relevant to the candidate"),
		}, "question", "category"), "The 5 interview questions", 5),
	}, "questions"),
}

var claritySchema = s.Schema[clarityResponse]{
	Name: "answer clarity",
	Definition: s.Object(map[string]*s.Def{
		"is_clear":             s.Bool("Whether the answer is clear and understandable"),
		"needs_clarification":  s.Bool("Whether a follow-up is needed before moving on"),
		"clarification_prompt": s.NullableString("Follow-up question when clarification is needed"),
		"brief_feedback":       s.String("One line of feedback on the answer"),
	}, "is_clear", "needs_clarification", "brief_feedback"),
}

var liveResultSchema = s.Schema[liveResult]{
	Name: "live interview evaluation",
	Definition: s.Object(map[string]*s.Def{
		"interview_score":        s.Integer("Overall interview score", 1, 10),
		"strengths_in_answering": s.Strings("Strengths observed in the answers"),
		"improvement_areas":      s.Strings("Areas that need improvement"),
		"communication_score":    s.Integer("Communication clarity score", 1, 10),
		"weak_points":            s.Strings("Weak points identified"),
		"suggestions":            s.Strings("Suggestions to improve"),
	}, "interview_score", "strengths_in_answering", "improvement_areas",
		"communication_score", "weak_points", "suggestions"),
}

var standardResultSchema = s.Schema[standardResult]{
	Name: "standard interview evaluation",
	Definition: s.Object(map[string]*s.Def{
		"overall_score": s.Integer("Overall interview score", 1, 10),
		"evaluations": s.Array(s.Object(map[string]*s.Def{
			"question_number": s.Integer("Question number", 1, 5),
			"score":           s.Integer("Answer score", 1, 10),
			"strengths":       s.Strings("What was good about the answer"),
			"improvements":    s.Strings("Areas to improve"),
			"missing_points":  s.Strings("Key points that were missed"),
		}, "question_number", "score", "strengths", "improvements", "missing_points"), "One evaluation per answer"),
		"overall_strengths":    s.Strings("Overall strong points"),
		"overall_improvements": s.Strings("Overall areas to improve"),
		"weak_topics":          s.Strings("Topics needing more preparation"),
		"soft_skills": s.Object(map[string]*s.Def{
			"communication_clarity": s.Integer("Clarity of communication", 1, 10),
			"structure":             s.Integer("Answer structure and organization", 1, 10),
			"confidence":            s.Integer("Confidence level", 1, 10),
			"feedback":              s.String("Overall soft skills feedback"),
		}, "communication_clarity", "structure", "confidence", "feedback"),
	}, "overall_score", "evaluations", "overall_strengths", "overall_improvements",
		"weak_topics", "soft_skills"),
}
