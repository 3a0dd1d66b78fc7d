package board

import (
	"sort"

	"ebadmin/internal/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ViewOptions selects sorting and paging for the table projection.
type ViewOptions struct {
	SortKey  string
	Desc     bool
	Page     int
	PageSize int
}

// Page is one rendered slice of the sorted booking list.
type Page struct {
	Bookings   []models.Booking
	Page       int
	TotalPages int
	Total      int
	SortKey    string
	Desc       bool
}

// sortableFields maps a column key to its string value. Only string-valued
// columns sort; anything else keeps the original relative order, matching
// the table contract.
var sortableFields = map[string]func(*models.Booking) string{
	"customer_name":  func(b *models.Booking) string { return b.CustomerName },
	"customer_phone": func(b *models.Booking) string { return b.CustomerPhone },
	"status":         func(b *models.Booking) string { return string(b.Status) },
	"notes":          func(b *models.Booking) string { return b.Notes },
	"created_at":     func(b *models.Booking) string { return b.CreatedAt },
}

// TableView is a pure projection: it sorts a copy of the booking list with
// locale-aware collation and slices it into fixed pages. The input is never
// mutated. A page beyond the end yields an empty slice, not an error; the
// caller decided to keep the page number across re-sorts.
func TableView(bookings []models.Booking, opts ViewOptions) Page {
	sorted := append([]models.Booking(nil), bookings...)

	if field := sortableFields[opts.SortKey]; field != nil {
		coll := collate.New(language.Und, collate.Loose)
		sort.SliceStable(sorted, func(i, j int) bool {
			cmp := coll.CompareString(field(&sorted[i]), field(&sorted[j]))
			if opts.Desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = models.TablePageSize
	}

	total := len(sorted)
	totalPages := (total + pageSize - 1) / pageSize

	page := opts.Page
	if page < 1 {
		page = 1
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Bookings:   sorted[start:end],
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
		SortKey:    opts.SortKey,
		Desc:       opts.Desc,
	}
}

// Columns groups bookings by status in board-column order for the kanban
// view. Every status gets a column even when empty.
func Columns(bookings []models.Booking) []Column {
	columns := make([]Column, 0, len(models.Statuses))
	for _, status := range models.Statuses {
		col := Column{Status: status}
		for _, b := range bookings {
			if b.Status == status {
				col.Bookings = append(col.Bookings, b)
			}
		}
		columns = append(columns, col)
	}
	return columns
}

// Column is one kanban lane.
type Column struct {
	Status   models.Status
	Bookings []models.Booking
}
