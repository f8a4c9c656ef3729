package scene

// Title is the opening screen: a column of buttons that can be driven by
// pointer or by keyboard selection.
type Title struct {
	Buttons  []*Button
	selected int
}

var titleActions = []Action{ActionTravelTrail, ActionIntroduction, ActionOptions, ActionQuit}

// NewTitle lays the buttons out in a column starting at (x, y).
func NewTitle(x, y, width, height, gap float64) *Title {
	t := &Title{}
	for i, action := range titleActions {
		top := y + float64(i)*(height+gap)
		t.Buttons = append(t.Buttons, NewButton(action, Rect{X: x, Y: top, W: width, H: height}))
	}
	return t
}

func (t *Title) Update(p Pointer) (Action, bool) {
	var (
		fired Action
		ok    bool
	)
	for i, b := range t.Buttons {
		if b.Bounds.Contains(p.X, p.Y) {
			t.selected = i
		}
		if action, hit := b.Update(p); hit && !ok {
			fired, ok = action, true
		}
	}
	return fired, ok
}

func (t *Title) Selected() int {
	return t.selected
}

// Move shifts the keyboard selection, wrapping at either end.
func (t *Title) Move(delta int) {
	n := len(t.Buttons)
	if n == 0 {
		return
	}
	t.selected = ((t.selected+delta)%n + n) % n
}

func (t *Title) Activate() (Action, bool) {
	if t.selected < 0 || t.selected >= len(t.Buttons) {
		return "", false
	}
	return t.Buttons[t.selected].Action, true
}

// Introduction is shown by the Introduction button.
const Introduction = `It is 1848. Your party of five sets out from Independence, Missouri
for the Willamette Valley, two thousand miles to the west.

Buy supplies at the store before you leave. Watch your food, keep the
pace reasonable, and treat the sick before it is too late.`
