package board

import (
	"fmt"
	"testing"

	"ebadmin/internal/models"

	"github.com/stretchr/testify/assert"
)

func namedBookings(names ...string) []models.Booking {
	out := make([]models.Booking, len(names))
	for i, name := range names {
		out[i] = models.Booking{ID: int64(i + 1), CustomerName: name, Status: models.StatusScheduled}
	}
	return out
}

func names(bookings []models.Booking) []string {
	out := make([]string, len(bookings))
	for i, b := range bookings {
		out[i] = b.CustomerName
	}
	return out
}

func TestTableViewSortIsCaseInsensitive(t *testing.T) {
	bookings := namedBookings("Bob", "alice", "Carl")

	page := TableView(bookings, ViewOptions{SortKey: "customer_name"})
	assert.Equal(t, []string{"alice", "Bob", "Carl"}, names(page.Bookings))

	page = TableView(bookings, ViewOptions{SortKey: "customer_name", Desc: true})
	assert.Equal(t, []string{"Carl", "Bob", "alice"}, names(page.Bookings))
}

func TestTableViewDoesNotMutateInput(t *testing.T) {
	bookings := namedBookings("Zoe", "Amy")
	TableView(bookings, ViewOptions{SortKey: "customer_name"})
	assert.Equal(t, []string{"Zoe", "Amy"}, names(bookings))
}

func TestTableViewUnknownSortKeyKeepsOrder(t *testing.T) {
	bookings := namedBookings("Zoe", "Amy", "Mel")
	page := TableView(bookings, ViewOptions{SortKey: "shoe_size"})
	assert.Equal(t, []string{"Zoe", "Amy", "Mel"}, names(page.Bookings))
}

func TestTableViewPagination(t *testing.T) {
	bookings := make([]models.Booking, 15)
	for i := range bookings {
		bookings[i] = models.Booking{ID: int64(i + 1), CustomerName: fmt.Sprintf("c%02d", i)}
	}

	first := TableView(bookings, ViewOptions{Page: 1})
	assert.Len(t, first.Bookings, 10)
	assert.Equal(t, 2, first.TotalPages)
	assert.Equal(t, 15, first.Total)

	second := TableView(bookings, ViewOptions{Page: 2})
	assert.Len(t, second.Bookings, 5)
	assert.Equal(t, int64(11), second.Bookings[0].ID)

	// A page past the end renders empty rather than erroring; the page
	// number itself is preserved.
	third := TableView(bookings, ViewOptions{Page: 3})
	assert.Empty(t, third.Bookings)
	assert.Equal(t, 3, third.Page)

	zero := TableView(bookings, ViewOptions{Page: 0})
	assert.Equal(t, 1, zero.Page)
	assert.Len(t, zero.Bookings, 10)
}

func TestColumnsCoverEveryStatus(t *testing.T) {
	bookings := []models.Booking{
		{ID: 1, Status: models.StatusScheduled},
		{ID: 2, Status: models.StatusScheduled},
		{ID: 3, Status: models.StatusCancelled},
	}

	columns := Columns(bookings)
	assert.Len(t, columns, len(models.Statuses))

	byStatus := map[models.Status]int{}
	for _, col := range columns {
		byStatus[col.Status] = len(col.Bookings)
	}
	assert.Equal(t, 2, byStatus[models.StatusScheduled])
	assert.Equal(t, 0, byStatus[models.StatusServing])
	assert.Equal(t, 1, byStatus[models.StatusCancelled])

	// Column order is the board order.
	for i, col := range columns {
		assert.Equal(t, models.Statuses[i], col.Status)
	}
}
