package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// isWebURL checks if the input string is an HTTP/HTTPS URL.
func isWebURL(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

// webPage is a fetched document and, for HTML, its parsed form.
type webPage struct {
	url  *url.URL
	text string
	html []byte
}

// fetchPage downloads rawURL. HTML is converted to Markdown so lines read
// like the rendered page; other text/* types are searched as served.
func fetchPage(client *http.Client, rawURL string) (*webPage, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %s: %w", rawURL, err)
	}
	parsedURL.Fragment = ""

	res, err := client.Get(parsedURL.String())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL %s: %w", parsedURL, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch URL %s: status code %d", parsedURL, res.StatusCode)
	}

	bodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from %s: %w", parsedURL, err)
	}

	page := &webPage{url: parsedURL}
	contentType := strings.ToLower(res.Header.Get("Content-Type"))
	switch {
	case strings.Contains(contentType, "text/html"):
		converter := md.NewConverter("", true, nil)
		markdown, err := converter.ConvertString(string(bodyBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to convert HTML to Markdown for %s: %w", parsedURL, err)
		}
		page.text = markdown
		page.html = bodyBytes
	case strings.HasPrefix(contentType, "text/"), contentType == "":
		page.text = string(bodyBytes)
	default:
		return nil, fmt.Errorf("unsupported content type %q for %s", contentType, parsedURL)
	}
	return page, nil
}

// processWebURL fetches a single page as a searchable input. Failures are
// carried on the FileInfo so they are reported like unreadable files.
func processWebURL(client *http.Client, rawURL string) FileInfo {
	page, err := fetchPage(client, rawURL)
	if err != nil {
		return FileInfo{Path: rawURL, Name: rawURL, Error: err}
	}
	name := page.url.String()
	return FileInfo{Path: name, Name: name, Content: []byte(page.text), Loaded: true}
}

// processWebURLRecursive fetches startURL and follows its links up to
// maxDepth, skipping URLs already in visited. The start page's failure is
// returned as a FileInfo error; failures on linked pages are warnings.
func processWebURLRecursive(client *http.Client, startURL string, currentDepth, maxDepth int, visited map[string]bool) []FileInfo {
	parsedURL, err := url.Parse(startURL)
	if err != nil {
		return []FileInfo{{Path: startURL, Name: startURL, Error: fmt.Errorf("invalid URL %s: %w", startURL, err)}}
	}
	parsedURL.Fragment = ""
	cleanURL := parsedURL.String()

	if currentDepth > maxDepth || visited[cleanURL] {
		return nil
	}
	visited[cleanURL] = true
	logger.Debugf("processing web URL (depth %d): %s", currentDepth, cleanURL)

	page, err := fetchPage(client, cleanURL)
	if err != nil {
		if currentDepth == 0 {
			return []FileInfo{{Path: cleanURL, Name: cleanURL, Error: err}}
		}
		logger.Warnf("%v", err)
		return nil
	}

	files := []FileInfo{{Path: cleanURL, Name: cleanURL, Content: []byte(page.text), Loaded: true}}
	if currentDepth >= maxDepth || page.html == nil {
		return files
	}

	for _, link := range extractLinks(page) {
		files = append(files, processWebURLRecursive(client, link, currentDepth+1, maxDepth, visited)...)
	}
	return files
}

// extractLinks resolves the page's anchors against its URL, keeping only
// http and https targets.
func extractLinks(page *webPage) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.html))
	if err != nil {
		logger.Warnf("failed to parse HTML for link extraction from %s: %v", page.url, err)
		return nil
	}

	var links []string
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		link, exists := s.Attr("href")
		lower := strings.ToLower(link)
		if !exists || link == "" || strings.HasPrefix(link, "#") || strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "javascript:") {
			return
		}

		resolvedURL, err := page.url.Parse(link)
		if err != nil {
			logger.Warnf("could not resolve relative link '%s' on page %s: %v", link, page.url, err)
			return
		}
		if resolvedURL.Scheme == "http" || resolvedURL.Scheme == "https" {
			resolvedURL.Fragment = ""
			links = append(links, resolvedURL.String())
		}
	})
	return links
}
