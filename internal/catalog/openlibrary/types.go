package openlibrary

import "encoding/json"

type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

type searchDoc struct {
	Key                 string   `json:"key"`
	Title               string   `json:"title"`
	AuthorName          []string `json:"author_name"`
	FirstPublishYear    int      `json:"first_publish_year"`
	ISBN                []string `json:"isbn"`
	CoverID             int      `json:"cover_i"`
	Subject             []string `json:"subject"`
	NumberOfPagesMedian int      `json:"number_of_pages_median"`
}

type bookData struct {
	Title         string      `json:"title"`
	Authors       []named     `json:"authors"`
	PublishDate   string      `json:"publish_date"`
	NumberOfPages int         `json:"number_of_pages"`
	Subjects      []named     `json:"subjects"`
	Cover         coverLinks  `json:"cover"`
	Description   description `json:"description"`
}

type named struct {
	Name string `json:"name"`
}

type coverLinks struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

// description is either a plain string or {"type": ..., "value": ...}.
type description struct {
	Text string
}

func (d *description) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		d.Text = s
		return nil
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	d.Text = obj.Value
	return nil
}
