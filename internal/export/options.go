package export

import (
	"strings"

	"github.com/th2-export/backend/internal/models"
)

// Option is one "-<name> <value>" flag of a header line.
type Option struct {
	Name  string
	Value string
}

func (o Option) String() string {
	return "-" + o.Name + " " + o.Value
}

func bracketed(v string) string {
	return "[" + v + "]"
}

// ScrapOptions lists the scrap header flags. Free-form map entries come last
// in insertion order.
func ScrapOptions(s models.ScrapSettings) []Option {
	var opts []Option
	if s.Scale != "" {
		opts = append(opts, Option{"scale", bracketed(s.Scale)})
	}
	if s.Projection != "" {
		opts = append(opts, Option{"projection", bracketed(s.Projection)})
	}
	if s.Author != "" {
		opts = append(opts, Option{"author", s.Author})
	}
	if s.Copyright != "" {
		opts = append(opts, Option{"copyright", s.Copyright})
	}
	if s.StationNames != "" {
		opts = append(opts, Option{"station-names", s.StationNames})
	}
	for _, f := range s.Map {
		opts = append(opts, Option{f.Key, f.Value})
	}
	return opts
}

// PointOptions lists the point header flags following the positional type.
func PointOptions(s models.PointSettings) []Option {
	var opts []Option
	if s.Name != "" {
		opts = append(opts, Option{"name", s.Name})
	}
	return opts
}

// LineOptions lists the line header flags following the positional type.
func LineOptions(s models.LineSettings, closed bool) []Option {
	var opts []Option
	if closed {
		opts = append(opts, Option{"close", "on"})
	}
	if s.ID != "" {
		opts = append(opts, Option{"id", s.ID})
	}
	return opts
}

// AreaOptions lists the area header flags.
func AreaOptions(s models.AreaSettings) []Option {
	var opts []Option
	if s.Invisible {
		opts = append(opts, Option{"visibility", "off"})
	}
	return opts
}

func joinOptions(opts []Option) string {
	parts := make([]string, len(opts))
	for i, o := range opts {
		parts[i] = o.String()
	}
	return strings.Join(parts, " ")
}

// header builds "<keyword> <fields...> <flags...>" without trailing space.
func header(keyword string, fields []string, opts []Option) string {
	parts := append([]string{keyword}, fields...)
	for _, o := range opts {
		parts = append(parts, o.String())
	}
	return strings.Join(parts, " ")
}

// scrapHeader keeps the separator before the flags even when there are none.
func scrapHeader(name string, s models.ScrapSettings) string {
	return "scrap " + name + " " + joinOptions(ScrapOptions(s))
}
