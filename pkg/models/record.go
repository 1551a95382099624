package models

// Header is the fixed column order of the CSV output.
var Header = []string{"name", "description", "price", "rating", "url"}

// Record is one four-cell table row, tagged with the page it came from.
type Record struct {
	Name        string
	Description string
	Price       string
	Rating      string
	URL         string
}

// Row returns the fields in Header order.
func (r Record) Row() []string {
	return []string{r.Name, r.Description, r.Price, r.Rating, r.URL}
}
