package app

type OverlayKind int

const (
	OverlayNone OverlayKind = iota
	OverlaySearch
	OverlayAdd
	OverlayEdit
	OverlaySettings
)

func (k OverlayKind) String() string {
	switch k {
	case OverlaySearch:
		return "search"
	case OverlayAdd:
		return "add"
	case OverlayEdit:
		return "edit"
	case OverlaySettings:
		return "settings"
	}
	return "none"
}

// Overlay is the panel drawn over the main view. Only one can be open; the
// task id is carried only by the edit variant.
type Overlay struct {
	kind   OverlayKind
	taskID string
}

func NoOverlay() Overlay       { return Overlay{} }
func SearchOverlay() Overlay   { return Overlay{kind: OverlaySearch} }
func AddOverlay() Overlay      { return Overlay{kind: OverlayAdd} }
func SettingsOverlay() Overlay { return Overlay{kind: OverlaySettings} }

func EditOverlay(taskID string) Overlay {
	return Overlay{kind: OverlayEdit, taskID: taskID}
}

func (o Overlay) Kind() OverlayKind { return o.kind }

func (o Overlay) Open() bool { return o.kind != OverlayNone }

// TaskID returns the task being edited.
func (o Overlay) TaskID() (string, bool) {
	return o.taskID, o.kind == OverlayEdit
}
