package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"nagato/internal/models"
)

type itemSearchResponse struct {
	TotalResultsAvailable int `json:"totalResultsAvailable"`
	TotalResultsReturned  int `json:"totalResultsReturned"`
	Hits                  []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"hits"`
}

// BookSearch finds books with the Shopping item search API (v3).
type BookSearch struct {
	client          *Client
	genreCategoryID int
	sort            string
}

// NewBookSearch creates a book search in the given genre (10002 for books).
// sort is passed through to the API when non-empty.
func NewBookSearch(client *Client, genreCategoryID int, sort string) *BookSearch {
	return &BookSearch{client: client, genreCategoryID: genreCategoryID, sort: sort}
}

// Search returns the top book matching all terms and the number of books available.
// An empty query matches nothing and is not sent.
func (s *BookSearch) Search(ctx context.Context, terms []string) (*models.Book, int, error) {
	query := strings.TrimSpace(strings.Join(terms, " "))
	if query == "" {
		return nil, 0, nil
	}

	params := url.Values{}
	params.Set("appid", s.client.appID)
	params.Set("query", query)
	params.Set("results", "1")
	if s.genreCategoryID > 0 {
		params.Set("genre_category_id", strconv.Itoa(s.genreCategoryID))
	}
	if s.sort != "" {
		params.Set("sort", s.sort)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.client.itemSearchURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create item search request: %w", err)
	}

	var resp itemSearchResponse
	if err := s.client.do(ctx, req, &resp); err != nil {
		return nil, 0, fmt.Errorf("failed to search items: %w", err)
	}

	if resp.TotalResultsReturned == 0 || len(resp.Hits) == 0 {
		return nil, 0, nil
	}
	hit := resp.Hits[0]
	return &models.Book{Name: hit.Name, URL: hit.URL}, resp.TotalResultsAvailable, nil
}
