package models

import "fmt"

// Book is a recommendation payload returned by a book search.
type Book struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (b *Book) String() string {
	if b == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s <%s>", b.Name, b.URL)
}
