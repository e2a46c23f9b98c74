package jobsearch

import (
	"github.com/mitchellh/mapstructure"
)

// Posting is a job listing reduced to what matching needs.
type Posting struct {
	Title          string   `json:"title" validate:"required"`
	CompanyName    string   `json:"company_name"`
	Location       string   `json:"location"`
	Description    string   `json:"description"`
	ApplyLink      string   `json:"apply_link"`
	DetectedSkills []string `json:"detected_skills"`
}

type applyOption struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

type rawJob struct {
	Title              string        `json:"title"`
	CompanyName        string        `json:"company_name"`
	Location           string        `json:"location"`
	Description        string        `json:"description"`
	Snippet            string        `json:"snippet"`
	ApplyLink          string        `json:"apply_link"`
	SerpAPILink        string        `json:"serpapi_link"`
	ShareLink          string        `json:"share_link"`
	ApplyOptions       []applyOption `json:"apply_options"`
	DetectedExtensions struct {
		Skills []string `json:"skills"`
	} `json:"detected_extensions"`
}

func (j rawJob) posting() Posting {
	p := Posting{
		Title:          j.Title,
		CompanyName:    j.CompanyName,
		Location:       j.Location,
		Description:    firstNonEmpty(j.Description, j.Snippet),
		DetectedSkills: j.DetectedExtensions.Skills,
	}

	var optionLink string
	if len(j.ApplyOptions) > 0 {
		optionLink = j.ApplyOptions[0].Link
	}
	p.ApplyLink = firstNonEmpty(optionLink, j.ApplyLink, j.ShareLink, j.SerpAPILink)

	if p.DetectedSkills == nil {
		p.DetectedSkills = []string{}
	}
	return p
}

// decodePostings converts raw jobs_results items, keeping at most limit postings.
func decodePostings(items []map[string]any, limit int) ([]Posting, error) {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	var jobs []rawJob
	cfg := &mapstructure.DecoderConfig{
		Result:           &jobs,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(items); err != nil {
		return nil, err
	}

	postings := make([]Posting, 0, len(jobs))
	for _, job := range jobs {
		postings = append(postings, job.posting())
	}
	return postings, nil
}

func clonePostings(postings []Posting) []Posting {
	out := make([]Posting, len(postings))
	for i, p := range postings {
		p.DetectedSkills = append([]string(nil), p.DetectedSkills...)
		out[i] = p
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
