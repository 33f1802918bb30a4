package minefield

import "strings"

type Preset struct {
	Name              string
	Rows, Cols, Mines int
}

var (
	Beginner     = Preset{Name: "beginner", Rows: 10, Cols: 10, Mines: 10}
	Intermediate = Preset{Name: "intermediate", Rows: 16, Cols: 16, Mines: 40}
	Expert       = Preset{Name: "expert", Rows: 16, Cols: 30, Mines: 99}
)

var Presets = []Preset{Beginner, Intermediate, Expert}

func PresetByName(name string) (Preset, bool) {
	for _, p := range Presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}

func (p Preset) New(opts ...Option) (*Minefield, error) {
	return New(p.Rows, p.Cols, p.Mines, opts...)
}
