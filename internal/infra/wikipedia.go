package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Vovarama1992/companion/internal/ports"
)

type WikipediaClient struct {
	baseURL string
	client  *http.Client
}

func NewWikipediaClient(baseURL string, timeout time.Duration) *WikipediaClient {
	return &WikipediaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type wikiSearchResponse struct {
	Query struct {
		SearchInfo struct {
			Suggestion string `json:"suggestion"`
		} `json:"searchinfo"`
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
	Error *wikiError `json:"error"`
}

type wikiExtractResponse struct {
	Query struct {
		Pages []struct {
			Title     string            `json:"title"`
			Missing   bool              `json:"missing"`
			Invalid   bool              `json:"invalid"`
			Extract   string            `json:"extract"`
			PageProps map[string]string `json:"pageprops"`
		} `json:"pages"`
	} `json:"query"`
	Error *wikiError `json:"error"`
}

type wikiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// Summary resolves the query to a title the way a reader would from the search box
// (suggestion first, then the top hit) and returns the leading sentences of that article.
func (c *WikipediaClient) Summary(ctx context.Context, query string, sentences int) (string, error) {
	title, err := c.resolveTitle(ctx, query)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts|pageprops")
	params.Set("explaintext", "1")
	params.Set("exsentences", strconv.Itoa(sentences))
	params.Set("redirects", "1")
	params.Set("titles", title)

	var parsed wikiExtractResponse
	if err := c.get(ctx, params, &parsed); err != nil {
		return "", err
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%w: %s", ports.ErrLookupService, parsed.Error.Info)
	}
	if len(parsed.Query.Pages) == 0 {
		return "", fmt.Errorf("%w: %q", ports.ErrLookupNotFound, title)
	}

	page := parsed.Query.Pages[0]
	if page.Missing || page.Invalid {
		return "", fmt.Errorf("%w: %q", ports.ErrLookupNotFound, title)
	}
	if _, ok := page.PageProps["disambiguation"]; ok {
		return "", fmt.Errorf("%w: %q", ports.ErrLookupAmbiguous, page.Title)
	}

	extract := strings.TrimSpace(page.Extract)
	if extract == "" {
		return "", fmt.Errorf("%w: %q has no extract", ports.ErrLookupNotFound, page.Title)
	}
	return extract, nil
}

func (c *WikipediaClient) resolveTitle(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", "1")
	params.Set("srinfo", "suggestion")
	params.Set("srprop", "")

	var parsed wikiSearchResponse
	if err := c.get(ctx, params, &parsed); err != nil {
		return "", err
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%w: %s", ports.ErrLookupService, parsed.Error.Info)
	}

	if s := parsed.Query.SearchInfo.Suggestion; s != "" {
		return s, nil
	}
	if len(parsed.Query.Search) == 0 {
		return "", fmt.Errorf("%w: %q", ports.ErrLookupNotFound, query)
	}
	return parsed.Query.Search[0].Title, nil
}

func (c *WikipediaClient) get(ctx context.Context, params url.Values, out any) error {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/w/api.php?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ports.ErrLookupService, err)
	}
	req.Header.Set("User-Agent", "companion/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ports.ErrLookupService, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ports.ErrLookupService, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: wikipedia http %d", ports.ErrLookupService, resp.StatusCode)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode: %v", ports.ErrLookupService, err)
	}
	return nil
}
