package game

import "errors"

const startingResources = 200

// Placement and purchase rejections. Their text is shown to the player.
var (
	ErrUnknownUnit           = errors.New("unknown unit")
	ErrNotPurchasable        = errors.New("unit is not for sale")
	ErrNoSelection           = errors.New("nothing selected in the shop")
	ErrInsufficientResources = errors.New("not enough resources")
	ErrTileBlocked           = errors.New("that spot is blocked")
	ErrNotOnWall             = errors.New("crawlers must be placed against a wall")
	ErrRoomClosed            = errors.New("the room is not accepting purchases")
	ErrUnknownBuff           = errors.New("unknown buff")
	ErrBuffActive            = errors.New("buff already active this room")
)

// Economy is the player's resource balance plus the shop selection. Changes
// are broadcast to listeners; the simulation never waits on them.
type Economy struct {
	resources         int
	selection         string
	resourceListeners []func(int)
	selectListeners   []func(string)
}

// NewEconomy starts the balance at resources.
func NewEconomy(resources int) *Economy {
	return &Economy{resources: resources}
}

// Resources is the current balance.
func (e *Economy) Resources() int { return e.resources }

// Set replaces the balance, flooring at 0, and notifies on change.
func (e *Economy) Set(resources int) {
	if resources < 0 {
		resources = 0
	}
	if resources == e.resources {
		return
	}
	e.resources = resources
	for _, fn := range e.resourceListeners {
		fn(resources)
	}
}

// Add adjusts the balance by n.
func (e *Economy) Add(n int) { e.Set(e.resources + n) }

// Spend takes price from the balance if it can be afforded.
func (e *Economy) Spend(price int) bool {
	if price > e.resources {
		return false
	}
	e.Set(e.resources - price)
	return true
}

// OnResources registers a balance listener.
func (e *Economy) OnResources(fn func(int)) {
	e.resourceListeners = append(e.resourceListeners, fn)
}

// Selection is the unit name selected in the shop, "" for none.
func (e *Economy) Selection() string { return e.selection }

// Select sets the shop selection.
func (e *Economy) Select(name string) {
	if name == e.selection {
		return
	}
	e.selection = name
	for _, fn := range e.selectListeners {
		fn(name)
	}
}

// OnSelect registers a selection listener.
func (e *Economy) OnSelect(fn func(string)) {
	e.selectListeners = append(e.selectListeners, fn)
}
