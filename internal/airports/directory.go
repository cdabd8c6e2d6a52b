// Package airports holds the airport reference list of a page view.
// A Directory never changes after construction and can be shared between controllers.
package airports

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"flight_booker/internal/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Lister - источник справочника (api.Client).
type Lister interface {
	ListAirports(ctx context.Context) ([]models.Airport, error)
}

// Option - пункт селектора аэропорта.
type Option struct {
	ID    int
	Label string
}

type Directory struct {
	byID    map[int]models.Airport
	options []Option
}

func NewDirectory(list []models.Airport) *Directory {
	d := &Directory{
		byID:    make(map[int]models.Airport, len(list)),
		options: make([]Option, 0, len(list)),
	}

	sorted := make([]models.Airport, 0, len(list))
	for _, a := range list {
		if _, dup := d.byID[a.ID]; dup {
			continue
		}
		d.byID[a.ID] = a
		sorted = append(sorted, a)
	}

	c := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(sorted, func(i, j int) bool {
		return c.CompareString(sorted[i].Title, sorted[j].Title) < 0
	})
	for _, a := range sorted {
		d.options = append(d.options, Option{ID: a.ID, Label: label(a)})
	}

	return d
}

// Empty - справочник для страницы, где аэропорты не загрузились.
func Empty() *Directory { return NewDirectory(nil) }

// Load запрашивает справочник один раз на просмотр страницы.
func Load(ctx context.Context, l Lister) (*Directory, error) {
	list, err := l.ListAirports(ctx)
	if err != nil {
		return nil, fmt.Errorf("load airports: %w", err)
	}
	return NewDirectory(list), nil
}

func (d *Directory) Lookup(id int) (models.Airport, bool) {
	a, ok := d.byID[id]
	return a, ok
}

// Label - "Title (CODE)" или "Airport #id", если такого аэропорта нет.
func (d *Directory) Label(id int) string {
	if a, ok := d.byID[id]; ok {
		return label(a)
	}
	return "Airport #" + strconv.Itoa(id)
}

// ShortLabel - вариант для строки таблицы: неизвестный аэропорт показывается как "#id".
func (d *Directory) ShortLabel(id int) string {
	if a, ok := d.byID[id]; ok {
		return label(a)
	}
	return "#" + strconv.Itoa(id)
}

// Options возвращает копию, отсортированную по названию.
func (d *Directory) Options() []Option {
	out := make([]Option, len(d.options))
	copy(out, d.options)
	return out
}

func (d *Directory) Len() int { return len(d.byID) }

func label(a models.Airport) string {
	return fmt.Sprintf("%s (%s)", a.Title, a.Code)
}
