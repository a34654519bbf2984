package notion

import (
	"encoding/json"
	"strings"
)

// PaginatedResponse is the common envelope for paginated Notion API
// responses.
type PaginatedResponse[T any] struct {
	Object     string  `json:"object"`
	Results    []T     `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// QueryResponse is the response from the database query endpoint.
type QueryResponse = PaginatedResponse[Page]

// SearchResponse is the response from the search endpoint.
type SearchResponse = PaginatedResponse[Page]

// BlocksResponse is the response from the block children endpoint.
type BlocksResponse = PaginatedResponse[Block]

// Page represents a Notion page, including database rows.
type Page struct {
	Object     string                   `json:"object"`
	ID         string                   `json:"id"`
	Archived   bool                     `json:"archived"`
	Properties map[string]PropertyValue `json:"properties"`
	URL        string                   `json:"url"`
}

// PropertyValue is a property value on a page. Only the field matching Type
// is populated; this tool only reads titles.
type PropertyValue struct {
	ID       string     `json:"id"`
	Type     string     `json:"type"`
	Title    []RichText `json:"title,omitempty"`
	RichText []RichText `json:"rich_text,omitempty"`
}

// Title returns the page title from its title-typed property, if any.
func (p Page) Title() string {
	for _, prop := range p.Properties {
		if prop.Type == "title" {
			return PlainText(prop.Title)
		}
	}
	return ""
}

// RichText is one styled text fragment. Styling is not retained; only the
// plain text matters downstream.
type RichText struct {
	Type      string `json:"type"`
	PlainText string `json:"plain_text"`
}

// PlainText concatenates a rich text array into a single string.
func PlainText(rts []RichText) string {
	var sb strings.Builder
	for _, rt := range rts {
		sb.WriteString(rt.PlainText)
	}
	return sb.String()
}

// RichTextContent holds the rich text array shared by all text-bearing
// block variants.
type RichTextContent struct {
	RichText []RichText `json:"rich_text"`
}

// Block represents a Notion block. Only the field matching Type is
// populated; variants this tool does not read stay nil and contribute an
// empty line.
type Block struct {
	Object      string `json:"object"`
	ID          string `json:"id"`
	Type        string `json:"type"`
	HasChildren bool   `json:"has_children"`

	Paragraph        *RichTextContent `json:"paragraph,omitempty"`
	Heading1         *RichTextContent `json:"heading_1,omitempty"`
	Heading2         *RichTextContent `json:"heading_2,omitempty"`
	Heading3         *RichTextContent `json:"heading_3,omitempty"`
	BulletedListItem *RichTextContent `json:"bulleted_list_item,omitempty"`
	NumberedListItem *RichTextContent `json:"numbered_list_item,omitempty"`
	ToDo             *RichTextContent `json:"to_do,omitempty"`
	Toggle           *RichTextContent `json:"toggle,omitempty"`
	Quote            *RichTextContent `json:"quote,omitempty"`
	Callout          *RichTextContent `json:"callout,omitempty"`
	Code             *RichTextContent `json:"code,omitempty"`
}

// richText returns the block's rich text array, or nil for variants without
// text content (dividers, images, ...).
func (b Block) richText() []RichText {
	for _, c := range []*RichTextContent{
		b.Paragraph, b.Heading1, b.Heading2, b.Heading3,
		b.BulletedListItem, b.NumberedListItem, b.ToDo, b.Toggle,
		b.Quote, b.Callout, b.Code,
	} {
		if c != nil {
			return c.RichText
		}
	}
	return nil
}

// queryRequest is the body for the database query endpoint.
type queryRequest struct {
	Filter      json.RawMessage `json:"filter,omitempty"`
	StartCursor string          `json:"start_cursor,omitempty"`
	PageSize    int             `json:"page_size,omitempty"`
}

// searchRequest is the body for the search endpoint.
type searchRequest struct {
	Query       string        `json:"query,omitempty"`
	Filter      *searchFilter `json:"filter,omitempty"`
	StartCursor string        `json:"start_cursor,omitempty"`
	PageSize    int           `json:"page_size,omitempty"`
}

type searchFilter struct {
	Value    string `json:"value"`
	Property string `json:"property"`
}
