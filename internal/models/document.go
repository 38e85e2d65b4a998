package models

// Document is a generated README: a heading line followed by the model's
// response, verbatim.
type Document struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (d *Document) Markdown() string {
	return "# " + d.Title + "\n" + d.Body
}
