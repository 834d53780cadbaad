package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/statement-ingest/internal/llm"
)

// Notion stores transactions as pages in a Notion database. Niche as a
// warehouse, but a cheap human-browsable backend for small volumes.
type Notion struct {
	token      string
	databaseID string
	client     *notionapi.Client
}

// NewNotion creates the strategy; the client is built in Initialize.
func NewNotion(token, databaseID string) *Notion {
	return &Notion{token: token, databaseID: databaseID}
}

// Initialize builds the client and verifies the database is reachable.
func (n *Notion) Initialize(ctx context.Context) error {
	if n.token == "" || n.databaseID == "" {
		return fmt.Errorf("notion: token and database ID are required")
	}

	client := notionapi.NewClient(notionapi.Token(n.token))
	if _, err := client.Database.Get(ctx, notionapi.DatabaseID(n.databaseID)); err != nil {
		return fmt.Errorf("notion: checking database %s: %w", n.databaseID, err)
	}

	n.client = client
	return nil
}

// AddTransaction creates one page with the entry's fields as properties.
func (n *Notion) AddTransaction(ctx context.Context, entry *llm.TransactionEntry) error {
	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(n.databaseID),
		},
		Properties: entryToProperties(entry),
	}

	if _, err := n.client.Page.Create(ctx, req); err != nil {
		return fmt.Errorf("notion: creating page: %w", err)
	}
	return nil
}

// GetTransactions queries pages sorted by Date descending.
func (n *Notion) GetTransactions(ctx context.Context, limit int) ([]llm.TransactionEntry, error) {
	var entries []llm.TransactionEntry
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
			Sorts: []notionapi.SortObject{
				{Property: "Date", Direction: notionapi.SortOrderDESC},
			},
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := n.client.Database.Query(ctx, notionapi.DatabaseID(n.databaseID), req)
		if err != nil {
			return nil, fmt.Errorf("notion: querying database: %w", err)
		}

		for _, page := range resp.Results {
			entry, err := propertiesToEntry(page)
			if err != nil {
				return nil, fmt.Errorf("notion: page %s: %w", page.ID, err)
			}
			entries = append(entries, entry)
			if limit > 0 && len(entries) >= limit {
				return entries, nil
			}
		}

		if !resp.HasMore {
			return entries, nil
		}
		cursor = resp.NextCursor
	}
}

// Close has nothing to release; the Notion client is plain HTTP.
func (n *Notion) Close(ctx context.Context) error {
	n.client = nil
	return nil
}

func entryToProperties(entry *llm.TransactionEntry) notionapi.Properties {
	date := notionapi.Date(entry.TransactionDate)

	props := notionapi.Properties{
		"Detail": notionapi.TitleProperty{
			Title: richText(entry.TransactionDetail),
		},
		"Date": notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &date},
		},
		"Amount": notionapi.RichTextProperty{
			RichText: richText(entry.Amount),
		},
		"Currency": notionapi.SelectProperty{
			Select: notionapi.Option{Name: entry.Currency},
		},
		"Category": notionapi.SelectProperty{
			Select: notionapi.Option{Name: entry.Category},
		},
	}

	if entry.ServiceSubscription != nil && *entry.ServiceSubscription != "" {
		props["Subscription"] = notionapi.RichTextProperty{
			RichText: richText(*entry.ServiceSubscription),
		}
	}
	if entry.ReceiverName != nil && *entry.ReceiverName != "" {
		props["Receiver"] = notionapi.RichTextProperty{
			RichText: richText(*entry.ReceiverName),
		}
	}

	return props
}

func propertiesToEntry(page notionapi.Page) (llm.TransactionEntry, error) {
	var entry llm.TransactionEntry

	if prop, ok := page.Properties["Detail"]; ok {
		if title, ok := prop.(*notionapi.TitleProperty); ok && len(title.Title) > 0 {
			entry.TransactionDetail = title.Title[0].PlainText
		}
	}
	if prop, ok := page.Properties["Date"]; ok {
		if d, ok := prop.(*notionapi.DateProperty); ok && d.Date != nil && d.Date.Start != nil {
			entry.TransactionDate = time.Time(*d.Date.Start)
		}
	}
	if prop, ok := page.Properties["Amount"]; ok {
		if rt, ok := prop.(*notionapi.RichTextProperty); ok && len(rt.RichText) > 0 {
			entry.Amount = rt.RichText[0].PlainText
		}
	}
	if prop, ok := page.Properties["Currency"]; ok {
		if sel, ok := prop.(*notionapi.SelectProperty); ok {
			entry.Currency = sel.Select.Name
		}
	}
	if prop, ok := page.Properties["Category"]; ok {
		if sel, ok := prop.(*notionapi.SelectProperty); ok {
			entry.Category = sel.Select.Name
		}
	}
	if prop, ok := page.Properties["Subscription"]; ok {
		if rt, ok := prop.(*notionapi.RichTextProperty); ok && len(rt.RichText) > 0 {
			v := rt.RichText[0].PlainText
			entry.ServiceSubscription = &v
		}
	}
	if prop, ok := page.Properties["Receiver"]; ok {
		if rt, ok := prop.(*notionapi.RichTextProperty); ok && len(rt.RichText) > 0 {
			v := rt.RichText[0].PlainText
			entry.ReceiverName = &v
		}
	}

	if entry.TransactionDetail == "" {
		return entry, fmt.Errorf("page has no Detail title")
	}
	return entry, nil
}

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: content},
		},
	}
}
