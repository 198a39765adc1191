package game

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed data/*.json
var defaultData embed.FS

// UnitTemplate is the immutable definition a Unit is instantiated from.
type UnitTemplate struct {
	Name             string    `json:"-"`
	Description      string    `json:"description"`
	Movement         string    `json:"movement"`
	MaxSpeed         float64   `json:"maxSpeed"`
	MaxAcceleration  float64   `json:"maxAcceleration"`
	MaxAngularSpeed  float64   `json:"maxAngularSpeed"`
	Rotation         bool      `json:"rotation"`
	Health           float64   `json:"health"`
	Weapon           string    `json:"weapon"`
	PlayerOwned      bool      `json:"playerOwned"`
	Purchasable      bool      `json:"purchasable"`
	Price            int       `json:"price"`
	BodyType         string    `json:"bodyType"` // "circle" or "box"
	BodySize         float64   `json:"bodySize"`
	Mods             []ModSpec `json:"mods"`
	IncompatibleMods []ModType `json:"incompatibleMods"`
}

func (t UnitTemplate) clone() UnitTemplate {
	t.Mods = append([]ModSpec(nil), t.Mods...)
	t.IncompatibleMods = append([]ModType(nil), t.IncompatibleMods...)
	return t
}

// WeaponDef configures one weapon id.
type WeaponDef struct {
	Description      string    `json:"description"`
	Delay            float64   `json:"delay"` // ms between dispatches
	Damage           float64   `json:"damage"`
	ProjectileSpeed  float64   `json:"projectileSpeed"`
	LifetimeMs       float64   `json:"lifetimeMs"`
	IncompatibleMods []ModType `json:"incompatibleMods"`
}

// BuffDef is a shop item granting a player-global mod for the current room.
type BuffDef struct {
	Name    string  `json:"-"`
	Price   int     `json:"price"`
	Tooltip string  `json:"tooltip"`
	Mod     ModSpec `json:"mod"`
}

// ShipMod is a named entry of the ship mod pool. Global mods apply to every
// enemy unit rather than the ship alone.
type ShipMod struct {
	Name    string  `json:"-"`
	Global  bool    `json:"global"`
	Tooltip string  `json:"tooltip"`
	Mod     ModSpec `json:"mod"`
}

// RoomDef describes a room: its tiles, spawn points and reward.
type RoomDef struct {
	Name         string   `json:"name"`
	TileSize     int      `json:"tileSize"`
	Tiles        []string `json:"tiles"`
	ShipSpawn    Vec2     `json:"shipSpawn"`
	TargetSpawn  Vec2     `json:"targetSpawn"`
	Reward       int      `json:"reward"`
	CountdownMs  float64  `json:"countdownMs"`
	TimeLimitMs  float64  `json:"timeLimitMs"`
	ShipModCount int      `json:"shipModCount"`
}

// Catalog is the loaded content: unit templates, weapons, shop buffs, the
// ship loadout pools and the room list.
type Catalog struct {
	Units       map[string]UnitTemplate
	Weapons     map[string]WeaponDef
	Buffs       map[string]BuffDef
	ShipMods    map[string]ShipMod
	ShipWeapons []string
	Rooms       []RoomDef
}

// DefaultCatalog loads the catalogs embedded in the binary.
func DefaultCatalog() (*Catalog, error) {
	sub, err := fs.Sub(defaultData, "data")
	if err != nil {
		return nil, err
	}
	return LoadCatalog(sub)
}

// MustDefaultCatalog is DefaultCatalog for callers that cannot recover.
func MustDefaultCatalog() *Catalog {
	c, err := DefaultCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadCatalog reads units.json, weapons.json, buffs.json, shipMods.json,
// shipWeapons.json and rooms.json from fsys.
func LoadCatalog(fsys fs.FS) (*Catalog, error) {
	c := &Catalog{}
	files := []struct {
		name string
		dst  any
	}{
		{"units.json", &c.Units},
		{"weapons.json", &c.Weapons},
		{"buffs.json", &c.Buffs},
		{"shipMods.json", &c.ShipMods},
		{"shipWeapons.json", &c.ShipWeapons},
		{"rooms.json", &c.Rooms},
	}
	for _, f := range files {
		data, err := fs.ReadFile(fsys, f.name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.name, err)
		}
		if err := json.Unmarshal(data, f.dst); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", f.name, err)
		}
	}
	for name, t := range c.Units {
		t.Name = name
		c.Units[name] = t
	}
	for name, b := range c.Buffs {
		b.Name = name
		c.Buffs[name] = b
	}
	for name, m := range c.ShipMods {
		m.Name = name
		c.ShipMods[name] = m
	}
	if len(c.Rooms) == 0 {
		return nil, fmt.Errorf("rooms.json defines no rooms")
	}
	for _, w := range c.ShipWeapons {
		if _, ok := c.Weapons[w]; !ok {
			return nil, fmt.Errorf("ship weapon %q is not in weapons.json", w)
		}
	}
	return c, nil
}

// LoadUnitJSON replaces the unit templates with the ones in data.
func (c *Catalog) LoadUnitJSON(data []byte) error {
	units := map[string]UnitTemplate{}
	if err := json.Unmarshal(data, &units); err != nil {
		return fmt.Errorf("failed to unmarshal unit templates: %w", err)
	}
	for name, t := range units {
		t.Name = name
		units[name] = t
	}
	c.Units = units
	return nil
}

// UnitTemplate returns a deep copy of the named template.
func (c *Catalog) UnitTemplate(name string) (UnitTemplate, bool) {
	t, ok := c.Units[name]
	if !ok {
		return UnitTemplate{}, false
	}
	return t.clone(), true
}

// PurchasableUnits lists shop units ordered by price, then name.
func (c *Catalog) PurchasableUnits() []UnitTemplate {
	var out []UnitTemplate
	for _, t := range c.Units {
		if t.Purchasable {
			out = append(out, t.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Price != out[j].Price {
			return out[i].Price < out[j].Price
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// BuffNames lists shop buffs ordered by price, then name.
func (c *Catalog) BuffNames() []string {
	names := make([]string, 0, len(c.Buffs))
	for n := range c.Buffs {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		bi, bj := c.Buffs[names[i]], c.Buffs[names[j]]
		if bi.Price != bj.Price {
			return bi.Price < bj.Price
		}
		return names[i] < names[j]
	})
	return names
}

// ShipModNames lists the ship mod pool in a stable order.
func (c *Catalog) ShipModNames() []string {
	names := make([]string, 0, len(c.ShipMods))
	for n := range c.ShipMods {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) weapon(id string) WeaponDef {
	w, ok := c.Weapons[id]
	if !ok {
		return WeaponDef{}
	}
	return w
}
