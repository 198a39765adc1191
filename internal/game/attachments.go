package game

const (
	noModKey        = -1 // attachment key for objects not owned by a mod
	healthBarWidth  = 64
	healthBarHeight = 6
	healthBarYPos   = 24 // px above the unit center
	flashMs         = 200
)

// Attachment is a visual sub-object that rides with a unit: health bars,
// shield bubbles, mod icons, laser beams.
type Attachment struct {
	Sprite   string
	Pos      Vec2
	Offset   Vec2 // from the owner's center
	Rotation float64
	Width    float64 // 0 for sprite-sized attachments
	Height   float64
	// FlashMs counts down while the attachment is drawn highlighted.
	FlashMs   float64
	destroyed bool
}

func newAttachment(sprite string, at Vec2, width float64) *Attachment {
	return &Attachment{Sprite: sprite, Pos: at, Width: width}
}

// Destroy marks the attachment removed; renderers skip destroyed attachments.
func (a *Attachment) Destroy() { a.destroyed = true }

// Destroyed reports whether Destroy was called.
func (a *Attachment) Destroyed() bool { return a.destroyed }

// Flash starts a short highlight.
func (a *Attachment) Flash() { a.FlashMs = flashMs }

func (a *Attachment) follow(center Vec2, delta float64) {
	a.Pos = center.Add(a.Offset)
	if a.FlashMs > 0 {
		a.FlashMs -= delta
	}
}
