// Package matching finds job postings for a candidate and scores how well they fit.
package matching

import (
	"bytes"
	"context"
	"errors"
	"sort"

	"github.com/spigell/skillbuddy/internal/jobsearch"
	"github.com/spigell/skillbuddy/internal/profile"
	s "github.com/spigell/skillbuddy/internal/structured"
)

const defaultCount = 10

// Searcher looks up job postings.
type Searcher interface {
	Search(ctx context.Context, q jobsearch.Query) ([]jobsearch.Posting, error)
}

// Request describes what to match.
type Request struct {
	Profile    *profile.Profile
	TargetRole string
	Location   string
	Count      int
}

func (r Request) query(fresh bool) jobsearch.Query {
	count := r.Count
	if count <= 0 {
		count = defaultCount
	}
	return jobsearch.Query{Text: r.TargetRole, Location: r.Location, Count: count, Fresh: fresh}
}

// Match is a posting scored against the candidate.
type Match struct {
	Posting       jobsearch.Posting `json:"posting"`
	Score         float64           `json:"match_score" validate:"gte=0,lte=1"`
	MissingSkills []string          `json:"missing_skills"`
}

// matchSet accepts either a bare array of matches or an object with a matches field.
type matchSet struct {
	Matches []Match `json:"matches" validate:"dive"`
}

func (m *matchSet) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []Match
		if err := s.DecodeStrict(data, &list); err != nil {
			return err
		}
		m.Matches = list
		return nil
	}

	type plain matchSet
	var obj plain
	if err := s.DecodeStrict(data, &obj); err != nil {
		return err
	}
	if obj.Matches == nil {
		return errors.New("matches field is missing")
	}
	*m = matchSet(obj)
	return nil
}

var postingDef = s.Object(map[string]*s.Def{
	"title":           s.String("Job title"),
	"company_name":    s.String("Company name"),
	"location":        s.String("Job location"),
	"description":     s.String("Job description"),
	"apply_link":      s.String("Link to apply"),
	"detected_skills": s.Strings("Skills detected in the posting"),
}, "title", "company_name", "location", "description", "apply_link", "detected_skills")

var matchSetSchema = s.Schema[matchSet]{
	Name: "job_matches",
	Definition: s.Object(map[string]*s.Def{
		"matches": s.Array(s.Object(map[string]*s.Def{
			"posting":        postingDef,
			"match_score":    s.Number("Fit between 0 and 1", 0, 1),
			"missing_skills": s.Strings("Required skills the candidate lacks"),
		}, "posting", "match_score", "missing_skills"), "Scored postings"),
	}, "matches"),
}

func parseMatches(raw string) ([]Match, error) {
	set, err := matchSetSchema.Parse(raw)
	if err != nil {
		return nil, err
	}
	return rank(set.Matches), nil
}

// rank orders matches by descending score, keeping the model order on ties.
func rank(matches []Match) []Match {
	if matches == nil {
		matches = []Match{}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}
