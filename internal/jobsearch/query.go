package jobsearch

import (
	"fmt"
	"net/url"
	"reflect"
)

// Query describes a job search. Fields tagged with serp are sent to the API.
type Query struct {
	Text     string `serp:"q"`
	Location string `serp:"location"`
	// Count caps the number of postings returned. The API has no such parameter.
	Count int `serp:"-"`
	// Fresh bypasses the result cache.
	Fresh bool `serp:"-"`
}

func (q Query) cacheKey() string {
	return fmt.Sprintf("%s|%s|%d", q.Text, q.Location, q.Count)
}

func (c *Client) buildParams(q Query) url.Values {
	values := url.Values{}
	values.Set("engine", engine)
	values.Set("api_key", c.apiKey)
	values.Set("output", "json")

	v := reflect.ValueOf(q)
	for _, field := range reflect.VisibleFields(v.Type()) {
		key := field.Tag.Get("serp")
		if key == "" || key == "-" {
			continue
		}

		value := fmt.Sprintf("%v", v.FieldByIndex(field.Index).Interface())
		if value != "" && value != "0" {
			values.Set(key, value)
		}
	}

	return values
}
