package sitesearch

import (
	"sort"
	"strings"
	"time"
)

// Index is an inverted index over the pages of one crawled site.
//
// Words maps each normalized word to the URLs of the pages it occurs on
// and the number of occurrences on each page. Counts are always >= 1; a
// URL absent from a word's entry means the word does not occur on that
// page. An Index is mutated only while a build is running; once loaded
// for querying it is treated as read-only.
type Index struct {
	// ID identifies the build session that produced the index.
	ID string `json:"id"`

	// SeedURL is the URL the crawl started from.
	SeedURL string `json:"seed_url"`

	// BuiltAt records when the build completed, in UTC.
	BuiltAt time.Time `json:"built_at"`

	// Words maps word -> page URL -> occurrence count.
	Words map[string]map[string]int `json:"words"`
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{Words: make(map[string]map[string]int)}
}

// Add records one occurrence of each word for the given URL. Repeated
// words increment the count. Words are expected to be normalized already
// (see Tokenize).
func (idx *Index) Add(url string, words []string) {
	for _, w := range words {
		if w == "" {
			continue
		}
		pages, ok := idx.Words[w]
		if !ok {
			pages = make(map[string]int)
			idx.Words[w] = pages
		}
		pages[url]++
	}
}

// AddPage tokenizes the page text and records every occurrence.
func (idx *Index) AddPage(page *Page) {
	idx.Add(page.URL, Tokenize(page.Text))
}

// Posting records how often a word occurs on one page.
type Posting struct {
	URL   string
	Count int
}

// Postings returns every page a word occurs on, ordered by occurrence
// count (highest first) with ties broken by URL. The word is normalized
// before lookup. The second return is false when the word has never been
// indexed, which is a negative result rather than an error.
func (idx *Index) Postings(word string) ([]Posting, bool) {
	terms := Tokenize(word)
	if len(terms) != 1 {
		return nil, false
	}

	pages, ok := idx.Words[terms[0]]
	if !ok {
		return nil, false
	}

	postings := make([]Posting, 0, len(pages))
	for url, count := range pages {
		postings = append(postings, Posting{URL: url, Count: count})
	}
	sort.Slice(postings, func(i, j int) bool {
		if postings[i].Count != postings[j].Count {
			return postings[i].Count > postings[j].Count
		}
		return postings[i].URL < postings[j].URL
	})
	return postings, true
}

// Search returns the URLs of pages that contain every one of the given
// words. The words are normalized the same way page text is, so an
// argument holding several words searches for all of them. A query that
// normalizes to nothing matches no pages. The result is sorted so output
// is deterministic.
func (idx *Index) Search(words ...string) []string {
	terms := Tokenize(strings.Join(words, " "))
	if len(terms) == 0 {
		return nil
	}

	matched := make(map[string]struct{}, len(idx.Words[terms[0]]))
	for url := range idx.Words[terms[0]] {
		matched[url] = struct{}{}
	}
	for _, term := range terms[1:] {
		if len(matched) == 0 {
			break
		}
		pages := idx.Words[term]
		for url := range matched {
			if _, ok := pages[url]; !ok {
				delete(matched, url)
			}
		}
	}
	if len(matched) == 0 {
		return nil
	}

	urls := make([]string, 0, len(matched))
	for url := range matched {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls
}

// WordCount returns the number of distinct words in the index.
func (idx *Index) WordCount() int {
	return len(idx.Words)
}

// PageCount returns the number of distinct pages with at least one indexed
// word.
func (idx *Index) PageCount() int {
	pages := make(map[string]struct{})
	for _, urls := range idx.Words {
		for url := range urls {
			pages[url] = struct{}{}
		}
	}
	return len(pages)
}
