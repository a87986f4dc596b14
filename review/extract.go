package review

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

const (
	// Class of the block listing other reviews by the same author.
	sameAuthorSelector = "div.soft-tbl-10"

	// Comment placed inside picture attachment blocks.
	attachmentMarker = "tiny_attach"

	// Alt text of the image that precedes the provider name.
	providerImageSelector = `img[alt="Telco party"]`
)

var (
	reviewAnchorPattern = regexp.MustCompile(`review\d`)
	postedPattern       = regexp.MustCompile(`updated|lodged`)
	leadingDigits       = regexp.MustCompile(`^\D*(\d*)`)
)

// Extractor pulls review records out of parsed review pages.
type Extractor struct {
	log zerolog.Logger
}

// NewExtractor creates an extractor that reports empty pages and field
// misses to log.
func NewExtractor(log zerolog.Logger) *Extractor {
	return &Extractor{log: log}
}

// Extract extracts reviews from doc with logging disabled.
func Extract(doc *goquery.Document) ([]Review, error) {
	return NewExtractor(zerolog.Nop()).Extract(doc)
}

// Extract returns one Review per review block in doc, in document order. It
// returns ErrNoReviews if the page has no review anchors. doc is not
// modified.
func (e *Extractor) Extract(doc *goquery.Document) ([]Review, error) {
	blocks := findBlocks(doc.Selection)
	if len(blocks) == 0 {
		e.log.Info().Msg("No reviews in this page")
		return nil, ErrNoReviews
	}

	reviews := make([]Review, 0, len(blocks))
	for i, block := range blocks {
		rv := extractReview(clean(block))
		for _, miss := range rv.Misses {
			e.log.Debug().
				Int("review", i).
				Str("field", miss.Field).
				Err(miss.Err).
				Msg("field not extracted")
		}
		reviews = append(reviews, rv)
	}

	return reviews, nil
}

// Records drops the miss details and returns only the records.
func Records(reviews []Review) []Record {
	records := make([]Record, len(reviews))
	for i, rv := range reviews {
		records[i] = rv.Record
	}
	return records
}

// findBlocks returns the parent of every anchor named like "review123".
func findBlocks(root *goquery.Selection) []*goquery.Selection {
	var blocks []*goquery.Selection
	root.Find("a[name]").Each(func(_ int, a *goquery.Selection) {
		if reviewAnchorPattern.MatchString(a.AttrOr("name", "")) {
			blocks = append(blocks, a.Parent())
		}
	})
	return blocks
}

// clean returns a copy of block without the same-author listing and picture
// attachments.
func clean(block *goquery.Selection) *goquery.Selection {
	c := block.Clone()
	c.Find(sameAuthorSelector).Remove()

	var attachments []*html.Node
	for _, root := range c.Nodes {
		eachNode(root, func(n *html.Node) bool {
			if (n.Type == html.TextNode || n.Type == html.CommentNode) &&
				strings.Contains(n.Data, attachmentMarker) && n.Parent != nil {
				attachments = append(attachments, n.Parent)
			}
			return true
		})
	}
	c.FindNodes(attachments...).Remove()

	return c
}

// eachNode walks n depth-first in document order until visit returns false.
func eachNode(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if !eachNode(child, visit) {
			return false
		}
	}
	return true
}

// firstText returns the first text node under sel that matches pattern.
func firstText(sel *goquery.Selection, pattern *regexp.Regexp) (string, bool) {
	var found string
	ok := false
	for _, root := range sel.Nodes {
		eachNode(root, func(n *html.Node) bool {
			if n.Type == html.TextNode && pattern.MatchString(n.Data) {
				found, ok = n.Data, true
				return false
			}
			return true
		})
		if ok {
			break
		}
	}
	return found, ok
}

type extraction struct {
	record Record
	misses []FieldError
}

func (x *extraction) add(field, value string, err error) {
	if err != nil {
		x.misses = append(x.misses, FieldError{Field: field, Err: err})
		return
	}
	if !x.record.set(field, value) {
		x.misses = append(x.misses, FieldError{Field: field, Err: ErrUnknownField})
	}
}

func extractReview(block *goquery.Selection) Review {
	x := &extraction{record: Record{}}

	age, err := postingAge(block)
	x.add(FieldSinceReview, age, err)

	cells := block.Find("table").First().Find("td")

	meta := cells.Eq(0)
	if meta.Length() == 0 {
		for _, field := range []string{
			FieldReviewBy, FieldReviewID, FieldLocation,
			FieldCost, FieldInstallationTime, FieldProvider,
		} {
			x.add(field, "", fmt.Errorf("%w: meta cell", ErrNotFound))
		}
	} else {
		by, err := reviewBy(meta)
		x.add(FieldReviewBy, by, err)

		id, err := reviewID(meta)
		x.add(FieldReviewID, id, err)

		listItems(meta, x)

		name, err := providerName(meta)
		x.add(FieldProvider, name, err)
	}

	ratingCell := cells.Eq(1)
	if ratingCell.Length() == 0 {
		x.add("ratings", "", fmt.Errorf("%w: rating cell", ErrNotFound))
	} else {
		ratings(ratingCell, x)
	}

	return Review{Record: x.record, Misses: x.misses}
}

// postingAge reads "3 days" out of text like "updated 3 days ago" in the
// block's second division.
func postingAge(block *goquery.Selection) (string, error) {
	div := block.Find("div").Eq(1)
	if div.Length() == 0 {
		return "", fmt.Errorf("%w: second division", ErrNotFound)
	}

	text, ok := firstText(div, postedPattern)
	if !ok {
		return "", fmt.Errorf("%w: updated/lodged text", ErrNotFound)
	}

	words := strings.Fields(text)
	for i, word := range words {
		if !postedPattern.MatchString(word) {
			continue
		}
		if len(words) < i+3 {
			break
		}
		return strings.Join(words[i+1:i+3], " "), nil
	}

	return "", fmt.Errorf("%w: %q", ErrMalformed, text)
}

func reviewBy(cell *goquery.Selection) (string, error) {
	div := cell.Find("div").First()
	if div.Length() == 0 {
		return "", fmt.Errorf("%w: author division", ErrNotFound)
	}

	tokens := strings.Fields(div.Text())
	if len(tokens) < 3 || strings.ToLower(tokens[0]) != "review" || tokens[1] != "by" {
		return "", fmt.Errorf("%w: %q", ErrMalformed, div.Text())
	}

	return strings.Join(tokens[2:], " "), nil
}

func reviewID(cell *goquery.Selection) (string, error) {
	a := cell.Find("a").Eq(1)
	if a.Length() == 0 {
		return "", fmt.Errorf("%w: second anchor", ErrNotFound)
	}

	name, ok := a.Attr("name")
	if !ok {
		return "", fmt.Errorf("%w: anchor name", ErrNotFound)
	}

	return name, nil
}

// listItems handles the "Location: ...", "Cost: $45" and "Install: ..." list
// entries of the meta cell. Other labels are ignored.
func listItems(cell *goquery.Selection, x *extraction) {
	seen := map[string]bool{}

	cell.Find("li").Each(func(_ int, li *goquery.Selection) {
		tokens := strings.Fields(li.Text())
		if len(tokens) == 0 {
			return
		}
		rest := tokens[1:]

		switch strings.ToLower(strings.Trim(tokens[0], ":")) {
		case "location":
			seen[FieldLocation] = true
			value, err := location(rest)
			x.add(FieldLocation, value, err)
		case "cost":
			seen[FieldCost] = true
			value, err := cost(rest)
			x.add(FieldCost, value, err)
		case "install":
			seen[FieldInstallationTime] = true
			value, err := installationTime(rest)
			x.add(FieldInstallationTime, value, err)
		}
	})

	for _, field := range []string{FieldLocation, FieldCost, FieldInstallationTime} {
		if !seen[field] {
			x.add(field, "", fmt.Errorf("%w: list item", ErrNotFound))
		}
	}
}

func location(rest []string) (string, error) {
	if len(rest) == 0 {
		return "", fmt.Errorf("%w: empty location", ErrMalformed)
	}
	return strings.Join(rest, " "), nil
}

func cost(rest []string) (string, error) {
	if len(rest) == 0 {
		return "", fmt.Errorf("%w: empty cost", ErrMalformed)
	}

	value := strings.TrimLeft(rest[0], "$")
	if !isDigits(value) {
		return "", fmt.Errorf("%w: cost %q", ErrMalformed, rest[0])
	}
	return value, nil
}

func installationTime(rest []string) (string, error) {
	text := strings.Join(rest, " ")
	digits := leadingDigits.FindStringSubmatch(text)
	if digits == nil || digits[1] == "" {
		return "", fmt.Errorf("%w: install %q", ErrMalformed, text)
	}
	return digits[1], nil
}

func providerName(cell *goquery.Selection) (string, error) {
	img := cell.Find(providerImageSelector).First()
	if img.Length() == 0 {
		return "", fmt.Errorf("%w: provider image", ErrNotFound)
	}

	b := img.NextAllFiltered("b").First()
	if b.Length() == 0 {
		return "", fmt.Errorf("%w: provider name", ErrNotFound)
	}

	name := strings.TrimSpace(b.Text())
	if name == "" {
		return "", fmt.Errorf("%w: empty provider name", ErrMalformed)
	}
	return name, nil
}

// ratings pairs the Nth bold label of the cell with the Nth image. When the
// counts differ the extra labels or images are ignored.
func ratings(cell *goquery.Selection, x *extraction) {
	labels := cell.Find("b")
	images := cell.Find("img")

	for i := range min(labels.Length(), images.Length()) {
		key := RatingKey(labels.Eq(i).Text())
		value, err := DecodeRating(images.Eq(i).AttrOr("src", ""))
		x.add(key, value, err)
	}
}

// RatingKey turns a rating label such as "Install Co-ordination" into its
// field name, "install_co-ordination".
func RatingKey(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), "_"))
}

// DecodeRating reads the score encoded in a rating bar image path, e.g.
// "//i.dslr.net/bars/50_sm.gif" is "50".
func DecodeRating(src string) (string, error) {
	digits := leadingDigits.FindStringSubmatch(src)
	if digits == nil || digits[1] == "" {
		return "", fmt.Errorf("%w: rating image %q", ErrMalformed, src)
	}
	return digits[1], nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
