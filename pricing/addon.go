package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
)

type Addon struct {
	ID    int             `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// AddonCatalog is the closed, versioned list of add-ons. One instance is shared by
// every component that prices or displays add-ons.
type AddonCatalog struct {
	version string
	byID    map[int]Addon
	list    []Addon
}

const DefaultAddonVersion = "2024-01"

var DefaultAddons = []Addon{
	{ID: 1, Name: "Extra Soap", Price: decimal.NewFromInt(10)},
	{ID: 2, Name: "Extra Fabric Conditioner", Price: decimal.NewFromInt(10)},
	{ID: 3, Name: "Bleach", Price: decimal.NewFromInt(10)},
	{ID: 4, Name: "Extra Wash", Price: decimal.NewFromInt(30)},
	{ID: 5, Name: "Extra Dry", Price: decimal.NewFromInt(10)},
}

func NewAddonCatalog(version string, addons []Addon) *AddonCatalog {
	c := &AddonCatalog{version: version, byID: make(map[int]Addon, len(addons))}
	for _, a := range addons {
		c.byID[a.ID] = a
	}
	for _, a := range c.byID {
		c.list = append(c.list, a)
	}
	sort.Slice(c.list, func(i, j int) bool { return c.list[i].ID < c.list[j].ID })
	return c
}

func DefaultCatalog() *AddonCatalog {
	return NewAddonCatalog(DefaultAddonVersion, DefaultAddons)
}

func (c *AddonCatalog) Version() string { return c.version }

func (c *AddonCatalog) List() []Addon {
	out := make([]Addon, len(c.list))
	copy(out, c.list)
	return out
}

func (c *AddonCatalog) Lookup(id int) (Addon, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// Price returns the add-on price, zero for ids outside the catalog.
func (c *AddonCatalog) Price(id int) decimal.Decimal {
	if a, ok := c.byID[id]; ok {
		return a.Price
	}
	return decimal.Zero
}

// Names resolves ids to display names, skipping unknown ids.
func (c *AddonCatalog) Names(ids []int) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if a, ok := c.byID[id]; ok {
			names = append(names, a.Name)
		}
	}
	return names
}
